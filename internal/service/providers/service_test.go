package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/providers/models"
	"github.com/m04kA/SMC-WellnessBooking/internal/testutil/memstore"
	"github.com/m04kA/SMC-WellnessBooking/pkg/logger"
)

const ownerID = int64(100)

func newService(t *testing.T) (*Service, *memstore.Store, *domain.Provider) {
	t.Helper()
	store := memstore.New()
	provider := store.AddProvider(domain.Provider{
		OwnerUserID:           ownerID,
		BusinessName:          "Lotus Spa",
		Status:                domain.ProviderApproved,
		AcceptsOnlineBookings: true,
		OperatingHours: domain.OperatingHours{
			domain.Monday: {Open: "09:00", Close: "17:00"},
		},
	})
	return NewService(store.Providers, logger.NewNop()), store, provider
}

func TestService_GetOperatingHours(t *testing.T) {
	svc, _, provider := newService(t)
	ctx := context.Background()

	resp, err := svc.GetOperatingHours(ctx, provider.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, provider.ID, resp.ProviderID)
	assert.Equal(t, "Lotus Spa", resp.BusinessName)
	require.Contains(t, resp.OperatingHours, domain.Monday)
	assert.Equal(t, "09:00", resp.OperatingHours[domain.Monday].Open.String())

	_, err = svc.GetOperatingHours(ctx, provider.ID, 1)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetOperatingHours(ctx, 999, ownerID)
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestService_UpdateOperatingHours(t *testing.T) {
	svc, store, provider := newService(t)

	hours := domain.OperatingHours{
		domain.Tuesday:  {Open: "08:30", Close: "12:00"},
		domain.Saturday: {Open: "10:00", Close: "14:00"},
	}
	resp, err := svc.UpdateOperatingHours(context.Background(), &models.UpdateOperatingHoursRequest{
		UserID: ownerID, ProviderID: provider.ID, OperatingHours: hours,
	})
	require.NoError(t, err)
	assert.Len(t, resp.OperatingHours, 2)

	// расписание заменяется целиком
	stored := store.Provider(provider.ID)
	assert.Equal(t, hours, stored.OperatingHours)
	_, open := stored.OperatingHours.For(domain.Monday)
	assert.False(t, open)
}

func TestService_UpdateOperatingHoursRejects(t *testing.T) {
	tests := []struct {
		name    string
		userID  int64
		hours   domain.OperatingHours
		wantErr error
	}{
		{
			name:    "open after close",
			userID:  ownerID,
			hours:   domain.OperatingHours{domain.Monday: {Open: "18:00", Close: "09:00"}},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "malformed time",
			userID:  ownerID,
			hours:   domain.OperatingHours{domain.Monday: {Open: "9am", Close: "17:00"}},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown weekday",
			userID:  ownerID,
			hours:   domain.OperatingHours{domain.Weekday(9): {Open: "09:00", Close: "17:00"}},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "not the owner",
			userID:  1,
			hours:   domain.OperatingHours{domain.Friday: {Open: "09:00", Close: "17:00"}},
			wantErr: ErrAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, provider := newService(t)

			_, err := svc.UpdateOperatingHours(context.Background(), &models.UpdateOperatingHoursRequest{
				UserID: tt.userID, ProviderID: provider.ID, OperatingHours: tt.hours,
			})
			assert.ErrorIs(t, err, tt.wantErr)

			stored := store.Provider(provider.ID)
			assert.Equal(t, provider.OperatingHours, stored.OperatingHours)
		})
	}
}
