package process_payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	processPayment "github.com/m04kA/SMC-WellnessBooking/internal/usecase/process_payment"
)

// methodField ключ способа оплаты, остальные поля тела уходят шлюзу
const methodField = "paymentMethod"

// PaymentRequest тело запроса: {"paymentMethod": "card", ...поля шлюза}
type PaymentRequest map[string]interface{}

// PaymentResponse HTTP response model
type PaymentResponse struct {
	PaymentID            int64     `json:"paymentId"`
	BookingID            uuid.UUID `json:"bookingId"`
	PaymentMethod        string    `json:"paymentMethod"`
	Amount               string    `json:"amount"`
	Currency             string    `json:"currency"`
	Status               string    `json:"status"`
	TransactionID        *string   `json:"transactionId,omitempty"`
	PlatformCommission   string    `json:"platformCommission"`
	ProviderAmount       string    `json:"providerAmount"`
	ProcessedAt          *string   `json:"processedAt,omitempty"`
	BookingStatus        string    `json:"bookingStatus"`
	BookingPaymentStatus string    `json:"bookingPaymentStatus"`
}

// ToUseCaseRequest отделяет способ оплаты от данных шлюза
func (r PaymentRequest) ToUseCaseRequest(publicID uuid.UUID, userID int64) (*processPayment.Request, error) {
	method := ""
	data := make(map[string]interface{}, len(r))
	for k, v := range r {
		if k == methodField {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be a string", methodField)
			}
			method = s
			continue
		}
		data[k] = v
	}

	return &processPayment.Request{
		PublicID: publicID,
		UserID:   userID,
		Method:   method,
		Data:     data,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *processPayment.Response) *PaymentResponse {
	var processedAt *string
	if resp.ProcessedAt != nil {
		s := resp.ProcessedAt.Format(time.RFC3339)
		processedAt = &s
	}

	return &PaymentResponse{
		PaymentID:            resp.PaymentID,
		BookingID:            resp.BookingPublicID,
		PaymentMethod:        resp.Method,
		Amount:               resp.Amount.StringFixed(2),
		Currency:             resp.Currency,
		Status:               resp.Status,
		TransactionID:        resp.GatewayTransactionID,
		PlatformCommission:   resp.PlatformCommission.StringFixed(2),
		ProviderAmount:       resp.ProviderAmount.StringFixed(2),
		ProcessedAt:          processedAt,
		BookingStatus:        resp.BookingStatus,
		BookingPaymentStatus: resp.BookingPaymentStatus,
	}
}
