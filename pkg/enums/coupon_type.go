package enums

import "fmt"

// CouponType is the discriminator for how a coupon discounts a cart.
type CouponType string

const (
	CouponTypePercent      CouponType = "percent"
	CouponTypeFlat         CouponType = "flat"
	CouponTypeFreeShipping CouponType = "free_shipping"
)

var validCouponTypes = []CouponType{
	CouponTypePercent,
	CouponTypeFlat,
	CouponTypeFreeShipping,
}

// String implements fmt.Stringer.
func (c CouponType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponType.
func (c CouponType) IsValid() bool {
	for _, candidate := range validCouponTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// RequiresValue reports whether the type needs a discount value.
func (c CouponType) RequiresValue() bool {
	return c != CouponTypeFreeShipping
}

// ParseCouponType converts raw input into a CouponType.
func ParseCouponType(value string) (CouponType, error) {
	for _, candidate := range validCouponTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon type %q", value)
}
