package domain

import "errors"

var (
	ErrInvalidWeekday        = errors.New("domain: invalid weekday")
	ErrInvalidOperatingHours = errors.New("domain: invalid operating hours")
	ErrInvalidPaymentMethod  = errors.New("domain: invalid payment method")
	ErrInvalidBookingStatus  = errors.New("domain: invalid booking status")
)
