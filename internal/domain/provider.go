package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// ProviderStatus is the moderation state of a provider
type ProviderStatus string

const (
	ProviderPending   ProviderStatus = "pending"
	ProviderApproved  ProviderStatus = "approved"
	ProviderRejected  ProviderStatus = "rejected"
	ProviderSuspended ProviderStatus = "suspended"
	ProviderInactive  ProviderStatus = "inactive"
)

// OpeningWindow is the open-close interval of one day
type OpeningWindow struct {
	Open  types.TimeString `json:"open"`
	Close types.TimeString `json:"close"`
}

// Contains reports open <= t <= close
func (w OpeningWindow) Contains(t types.TimeString) bool {
	return !t.IsBefore(w.Open) && !t.IsAfter(w.Close)
}

func (w OpeningWindow) validate() error {
	if err := w.Open.Validate(); err != nil {
		return err
	}
	if err := w.Close.Validate(); err != nil {
		return err
	}
	if !w.Open.IsBefore(w.Close) {
		return fmt.Errorf("open %s must be before close %s", w.Open, w.Close)
	}
	return nil
}

// OperatingHours maps a weekday to its opening window.
// A day without an entry is closed.
type OperatingHours map[Weekday]OpeningWindow

// For returns the window of day
func (h OperatingHours) For(day Weekday) (OpeningWindow, bool) {
	w, ok := h[day]
	return w, ok
}

// Validate checks every window
func (h OperatingHours) Validate() error {
	for day, w := range h {
		if !day.Valid() {
			return fmt.Errorf("%w: %s", ErrInvalidOperatingHours, day)
		}
		if err := w.validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidOperatingHours, day, err)
		}
	}
	return nil
}

func (h OperatingHours) MarshalJSON() ([]byte, error) {
	raw := make(map[string]OpeningWindow, len(h))
	for day, w := range h {
		raw[day.String()] = w
	}
	return json.Marshal(raw)
}

func (h *OperatingHours) UnmarshalJSON(data []byte) error {
	var raw map[string]OpeningWindow
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOperatingHours, err)
	}

	hours := make(OperatingHours, len(raw))
	for name, w := range raw {
		day, err := ParseWeekday(name)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidOperatingHours, err)
		}
		hours[day] = w
	}
	if err := hours.Validate(); err != nil {
		return err
	}
	*h = hours
	return nil
}

// Scan reads the jsonb column
func (h *OperatingHours) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*h = OperatingHours{}
		return nil
	case []byte:
		return h.UnmarshalJSON(v)
	case string:
		return h.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("%w: unsupported scan type %T", ErrInvalidOperatingHours, src)
	}
}

// Value validates before writing, so malformed hours never reach storage
func (h OperatingHours) Value() (driver.Value, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	data, err := h.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Provider is a wellness business offering bookable services
type Provider struct {
	ID                    int64
	OwnerUserID           int64
	BusinessName          string
	Category              string
	Status                ProviderStatus
	OperatingHours        OperatingHours
	AcceptsOnlineBookings bool
	IsVerified            bool
	TotalBookings         int
	AverageRating         decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBookable returns true if customers may book this provider online
func (p *Provider) IsBookable() bool {
	return p.Status == ProviderApproved && p.AcceptsOnlineBookings
}

// IsOwnedBy returns true if userID manages the provider
func (p *Provider) IsOwnedBy(userID int64) bool {
	return p.OwnerUserID == userID
}

// Service is a bookable offering of a provider
type Service struct {
	ID                 int64
	ProviderID         int64
	Name               string
	Price              decimal.Decimal
	Currency           string
	DurationMinutes    int
	MaxParticipants    int
	MinimumNoticeHours int
	IsActive           bool
	IsBookable         bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AcceptsBookings returns true if the service is active and bookable
func (s *Service) AcceptsBookings() bool {
	return s.IsActive && s.IsBookable
}

// MinimumNotice returns the advance notice as a duration
func (s *Service) MinimumNotice() time.Duration {
	return time.Duration(s.MinimumNoticeHours) * time.Hour
}
