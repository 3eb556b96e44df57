package process_payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// DefaultMethod способ оплаты, если клиент его не указал
const DefaultMethod = domain.PaymentPayHere

// UnsupportedMethodReason причина отказа для способа оплаты без шлюза
const UnsupportedMethodReason = "Unsupported payment method"

// Request модель запроса на оплату
type Request struct {
	PublicID uuid.UUID
	UserID   int64
	Method   string
	Data     map[string]interface{} // Данные конкретного шлюза
}

// Response результат оплаты. Success=false означает отказ шлюза,
// причина записана в FailedReason, бронирование не изменилось.
type Response struct {
	Success bool

	PaymentID            int64
	BookingPublicID      uuid.UUID
	Method               string
	Amount               decimal.Decimal
	Currency             string
	Status               string
	GatewayTransactionID *string
	PlatformCommission   decimal.Decimal
	ProviderAmount       decimal.Decimal
	ProcessedAt          *time.Time
	FailedReason         *string

	BookingStatus        string
	BookingPaymentStatus string
}
