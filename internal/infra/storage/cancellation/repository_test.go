package cancellation

import (
	"context"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

var refundStatusCheck = regexp.MustCompile(`CHECK \(refund_status IN \(([^)]*)\)\)`)

func TestSchema_RefundStatusCheckMatchesDomain(t *testing.T) {
	schema, err := os.ReadFile("../../../../migrations/001_init.up.sql")
	require.NoError(t, err)

	match := refundStatusCheck.FindSubmatch(schema)
	require.NotNil(t, match, "refund_status CHECK not found")

	var allowed []domain.RefundStatus
	for _, v := range strings.Split(string(match[1]), ",") {
		allowed = append(allowed, domain.RefundStatus(strings.Trim(strings.TrimSpace(v), "'")))
	}

	assert.ElementsMatch(t, domain.RefundStatuses, allowed)
}

func TestRepository_CreateRejectsUnknownRefundStatus(t *testing.T) {
	repo := NewRepository(nil)

	_, err := repo.Create(context.Background(), &domain.BookingCancellation{
		BookingID:        1,
		CancellationType: domain.CancelledByCustomer,
		RefundAmount:     decimal.Zero,
		RefundStatus:     "refunded",
	})
	assert.ErrorIs(t, err, ErrUnknownRefundStatus)
}
