package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the channel a booking is paid through
type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "card"
	PaymentPayHere      PaymentMethod = "payhere"
	PaymentFrimi        PaymentMethod = "frimi"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCash         PaymentMethod = "cash"
	PaymentWallet       PaymentMethod = "wallet"
)

// ParsePaymentMethod validates an incoming payment method
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	switch m {
	case PaymentCard, PaymentPayHere, PaymentFrimi, PaymentBankTransfer, PaymentCash, PaymentWallet:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, s)
	}
}

// PaymentState is the status of a payment attempt
type PaymentState string

const (
	PaymentStatePending    PaymentState = "pending"
	PaymentStateProcessing PaymentState = "processing"
	PaymentStateCompleted  PaymentState = "completed"
	PaymentStateFailed     PaymentState = "failed"
	PaymentStateCancelled  PaymentState = "cancelled"
	PaymentStateRefunded   PaymentState = "refunded"
)

// IsOpen reports whether the attempt still holds the booking: it is being
// charged, waits for cash collection or has already taken the money.
// A booking has at most one open attempt.
func (s PaymentState) IsOpen() bool {
	switch s {
	case PaymentStatePending, PaymentStateProcessing, PaymentStateCompleted:
		return true
	default:
		return false
	}
}

// BookingPayment is one settlement attempt for a booking
type BookingPayment struct {
	ID                   int64
	BookingID            int64
	Method               PaymentMethod
	Amount               decimal.Decimal
	Currency             string
	Status               PaymentState
	GatewayTransactionID *string
	GatewayResponse      map[string]interface{}
	GatewayFee           decimal.Decimal
	PlatformCommission   decimal.Decimal
	ProviderAmount       decimal.Decimal
	ProcessedAt          *time.Time
	FailedReason         *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPayment creates a pending payment. The commission split is fixed here
// and never recomputed.
func NewPayment(bookingID int64, method PaymentMethod, amount decimal.Decimal, currency string, commissionRate decimal.Decimal) *BookingPayment {
	commission := amount.Mul(commissionRate).Round(2)
	return &BookingPayment{
		BookingID:          bookingID,
		Method:             method,
		Amount:             amount,
		Currency:           currency,
		Status:             PaymentStatePending,
		GatewayFee:         decimal.Zero,
		PlatformCommission: commission,
		ProviderAmount:     amount.Sub(commission),
	}
}
