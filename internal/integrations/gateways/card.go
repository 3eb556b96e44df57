package gateways

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/ptr"
)

const paymentMethodKey = "payment_method_id"

var minorUnits = decimal.NewFromInt(100)

// Card оплата картой через Stripe PaymentIntents (подтверждение сразу при создании)
type Card struct {
	api *client.API
}

// NewCard создает шлюз с секретным ключом Stripe
func NewCard(secretKey string) *Card {
	return NewCardWithBackends(secretKey, nil)
}

// NewCardWithBackends позволяет подменить backend Stripe (тесты, прокси)
func NewCardWithBackends(secretKey string, backends *stripe.Backends) *Card {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &Card{api: api}
}

func (c *Card) Charge(ctx context.Context, p *domain.BookingPayment, data map[string]interface{}) (*Result, error) {
	methodID, _ := data[paymentMethodKey].(string)
	if methodID == "" {
		return nil, fmt.Errorf("%w: %s is required for card payments", ErrInvalidData, paymentMethodKey)
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(p.Amount.Mul(minorUnits).Round(0).IntPart()),
		Currency:           stripe.String(strings.ToLower(p.Currency)),
		PaymentMethod:      stripe.String(methodID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
	}
	params.Context = ctx
	params.AddMetadata("booking_id", fmt.Sprintf("%d", p.BookingID))
	params.AddMetadata("payment_id", fmt.Sprintf("%d", p.ID))

	intent, err := c.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return nil, fmt.Errorf("%w: %s", ErrDeclined, stripeErr.Msg)
		}
		return nil, err
	}

	response := map[string]interface{}{
		"gateway":        "stripe",
		"payment_intent": intent.ID,
		"status":         string(intent.Status),
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment intent %s is %s", ErrNotCompleted, intent.ID, intent.Status)
	}

	return &Result{
		Status:        domain.PaymentStateCompleted,
		TransactionID: ptr.Ptr(intent.ID),
		Response:      response,
	}, nil
}
