package domain

import (
	"time"

	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// SlotKey identifies the capacity bucket shared by bookings
type SlotKey struct {
	ProviderID int64
	ServiceID  int64
	Date       time.Time
	Time       types.TimeString
}

// AvailableSlot is a bookable step returned by slot listing
type AvailableSlot struct {
	Date           time.Time
	StartTime      types.TimeString
	AvailableSpots int
	TotalSpots     int
}

// IsFullyAvailable returns true if nobody has booked the slot yet
func (s *AvailableSlot) IsFullyAvailable() bool {
	return s.AvailableSpots == s.TotalSpots
}

// OccupancyRate returns the occupancy rate as a percentage (0-100)
func (s *AvailableSlot) OccupancyRate() float64 {
	if s.TotalSpots == 0 {
		return 0
	}
	occupied := s.TotalSpots - s.AvailableSpots
	return float64(occupied) / float64(s.TotalSpots) * 100
}
