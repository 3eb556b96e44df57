package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CancellationType tells who initiated a cancellation
type CancellationType string

const (
	CancelledByCustomer CancellationType = "customer"
	CancelledByProvider CancellationType = "provider"
	CancelledBySystem   CancellationType = "system"
	CancelledAsNoShow   CancellationType = "no_show"
)

// ParseCancellationType validates an incoming cancellation type
func ParseCancellationType(s string) (CancellationType, error) {
	t := CancellationType(s)
	switch t {
	case CancelledByCustomer, CancelledByProvider, CancelledBySystem, CancelledAsNoShow:
		return t, nil
	default:
		return "", fmt.Errorf("domain: invalid cancellation type %q", s)
	}
}

// RefundStatus is the lifecycle of a refund.
// Cancellation itself only writes none or pending.
type RefundStatus string

const (
	RefundNone      RefundStatus = "none"
	RefundPartial   RefundStatus = "partial"
	RefundFull      RefundStatus = "full"
	RefundPending   RefundStatus = "pending"
	RefundProcessed RefundStatus = "processed"
	RefundFailed    RefundStatus = "failed"
)

// RefundStatuses lists every value booking_cancellations.refund_status accepts
var RefundStatuses = []RefundStatus{
	RefundNone,
	RefundPartial,
	RefundFull,
	RefundPending,
	RefundProcessed,
	RefundFailed,
}

// IsValid reports whether s is a known refund status
func (s RefundStatus) IsValid() bool {
	for _, known := range RefundStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// BookingCancellation records one cancellation and the refund owed
type BookingCancellation struct {
	ID                  int64
	BookingID           int64
	CancellationType    CancellationType
	CancelledBy         *int64
	Reason              string
	RefundAmount        decimal.Decimal
	RefundPercentage    int
	RefundStatus        RefundStatus
	RefundProcessedAt   *time.Time
	RefundTransactionID *string

	CreatedAt time.Time
}
