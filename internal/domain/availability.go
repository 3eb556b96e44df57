package domain

import (
	"time"

	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// RuleScope tells which services an availability rule applies to.
// It is either ServiceSpecific or General.
type RuleScope interface {
	isRuleScope()
}

// ServiceSpecific scopes a rule to one service
type ServiceSpecific struct {
	ServiceID int64
}

// General scopes a rule to every service of the provider
type General struct{}

func (ServiceSpecific) isRuleScope() {}
func (General) isRuleScope()         {}

// AvailabilityRule is a recurring weekly window with a booking ceiling
type AvailabilityRule struct {
	ID          int64
	ProviderID  int64
	Scope       RuleScope
	Weekday     Weekday
	StartTime   types.TimeString
	EndTime     types.TimeString
	MaxBookings int
	IsActive    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Covers reports start <= t < end
func (r *AvailabilityRule) Covers(t types.TimeString) bool {
	return !t.IsBefore(r.StartTime) && t.IsBefore(r.EndTime)
}

// IsServiceSpecificFor returns true if the rule is scoped to serviceID
func (r *AvailabilityRule) IsServiceSpecificFor(serviceID int64) bool {
	s, ok := r.Scope.(ServiceSpecific)
	return ok && s.ServiceID == serviceID
}

// IsGeneral returns true if the rule applies to all services
func (r *AvailabilityRule) IsGeneral() bool {
	_, ok := r.Scope.(General)
	return ok
}

// AppliesTo returns true if the rule can serve serviceID
func (r *AvailabilityRule) AppliesTo(serviceID int64) bool {
	switch s := r.Scope.(type) {
	case ServiceSpecific:
		return s.ServiceID == serviceID
	case General:
		return true
	default:
		return false
	}
}
