package refund

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

func TestPolicy_Calculate(t *testing.T) {
	policy := DefaultPolicy()
	now := time.Date(2025, 6, 6, 10, 0, 0, 0, time.UTC)
	total := decimal.NewFromInt(1000)

	tests := []struct {
		name       string
		until      time.Duration
		amount     string
		percentage int
		status     domain.RefundStatus
	}{
		{name: "30 hours out", until: 30 * time.Hour, amount: "1000", percentage: 100, status: domain.RefundPending},
		{name: "exactly 24 hours", until: 24 * time.Hour, amount: "1000", percentage: 100, status: domain.RefundPending},
		{name: "just under 24 hours", until: 24*time.Hour - time.Minute, amount: "500", percentage: 50, status: domain.RefundPending},
		{name: "10 hours out", until: 10 * time.Hour, amount: "500", percentage: 50, status: domain.RefundPending},
		{name: "exactly 2 hours", until: 2 * time.Hour, amount: "500", percentage: 50, status: domain.RefundPending},
		{name: "just under 2 hours", until: 2*time.Hour - time.Minute, amount: "0", percentage: 0, status: domain.RefundNone},
		{name: "1 hour out", until: time.Hour, amount: "0", percentage: 0, status: domain.RefundNone},
		{name: "already started", until: -time.Hour, amount: "0", percentage: 0, status: domain.RefundNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Calculate(total, now.Add(tt.until), now)
			assert.True(t, got.Amount.Equal(decimal.RequireFromString(tt.amount)), "amount %s", got.Amount)
			assert.Equal(t, tt.percentage, got.Percentage)
			assert.Equal(t, tt.status, got.Status)
		})
	}
}

func TestPolicy_Monotonic(t *testing.T) {
	policy := DefaultPolicy()

	prev := policy.Percentage(72 * time.Hour)
	for until := 72 * time.Hour; until >= -time.Hour; until -= 5 * time.Minute {
		pct := policy.Percentage(until)
		assert.LessOrEqual(t, pct, prev, "refund grew at %s", until)
		prev = pct
	}
}

func TestPolicy_RoundsToCents(t *testing.T) {
	policy := DefaultPolicy()
	now := time.Date(2025, 6, 6, 10, 0, 0, 0, time.UTC)

	got := policy.Calculate(decimal.RequireFromString("333.33"), now.Add(5*time.Hour), now)
	assert.Equal(t, "166.67", got.Amount.StringFixed(2))
}
