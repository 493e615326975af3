package coupons

import (
	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
)

// ComputeDiscount returns the merchandise discount in cents for a coupon
// applied to the given merchandise total. Percent discounts round up so the
// customer never loses a fraction of a cent; every discount is capped at the
// discountable amount. Free-shipping coupons discount nothing here, the
// checkout waives the shipping fee instead.
func ComputeDiscount(coupon *models.Coupon, merchandiseCents int) int {
	if coupon == nil || merchandiseCents <= 0 {
		return 0
	}

	var discount int
	switch coupon.Type {
	case enums.CouponTypePercent:
		discount = (merchandiseCents*coupon.Value + 99) / 100
	case enums.CouponTypeFlat:
		discount = coupon.Value
	case enums.CouponTypeFreeShipping:
		return 0
	}

	if discount > merchandiseCents {
		discount = merchandiseCents
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
