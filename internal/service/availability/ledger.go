package availability

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// Ledger считает занятость слота по активным бронированиям.
// Отдельного счетчика нет, занятость всегда выводится из строк bookings.
type Ledger struct {
	reader ParticipantsReader
}

func NewLedger(reader ParticipantsReader) *Ledger {
	return &Ledger{reader: reader}
}

// Occupied сумма участников активных бронирований ключа, кроме excludeID
func (l *Ledger) Occupied(ctx context.Context, key domain.SlotKey, excludeID *int64) (int, error) {
	occupied, err := l.reader.ActiveParticipants(ctx, key, excludeID)
	if err != nil {
		return 0, fmt.Errorf("%w: Occupied - provider=%d service=%d date=%s time=%s: %w",
			ErrCapacityLookup, key.ProviderID, key.ServiceID, key.Date.Format(domain.DateFormat), key.Time, err)
	}
	return occupied, nil
}
