package enums

import "fmt"

// PaymentMode distinguishes cash-on-delivery from gateway payments.
type PaymentMode string

const (
	PaymentModeCOD    PaymentMode = "cod"
	PaymentModeOnline PaymentMode = "online"
)

var validPaymentModes = []PaymentMode{
	PaymentModeCOD,
	PaymentModeOnline,
}

// String implements fmt.Stringer.
func (p PaymentMode) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMode.
func (p PaymentMode) IsValid() bool {
	for _, candidate := range validPaymentModes {
		if candidate == p {
			return true
		}
	}
	return false
}

// InitialPaymentStatus returns the status a fresh payment record starts in.
func (p PaymentMode) InitialPaymentStatus() PaymentStatus {
	if p == PaymentModeCOD {
		return PaymentStatusUnpaid
	}
	return PaymentStatusPending
}

// ParsePaymentMode converts raw input into a PaymentMode.
func ParsePaymentMode(value string) (PaymentMode, error) {
	for _, candidate := range validPaymentModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment mode %q", value)
}
