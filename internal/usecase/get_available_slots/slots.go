package get_available_slots

import (
	"sort"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// ruleSteps шаги правила с фиксированным шагом внутри [start, end)
func ruleSteps(rule *domain.AvailabilityRule, stepMinutes int) []types.TimeString {
	steps := make([]types.TimeString, 0)

	current := rule.StartTime
	for current.IsBefore(rule.EndTime) {
		steps = append(steps, current)

		next, err := current.AddMinutes(stepMinutes)
		if err != nil {
			// шаг перешел через полночь
			break
		}
		current = next
	}

	return steps
}

// candidateSteps объединяет шаги всех правил, применимых к услуге, без повторов
func candidateSteps(rules []*domain.AvailabilityRule, serviceID int64, stepMinutes int) []types.TimeString {
	seen := make(map[types.TimeString]struct{})
	steps := make([]types.TimeString, 0)

	for _, rule := range rules {
		if !rule.IsActive || !rule.AppliesTo(serviceID) {
			continue
		}
		for _, step := range ruleSteps(rule, stepMinutes) {
			if _, ok := seen[step]; ok {
				continue
			}
			seen[step] = struct{}{}
			steps = append(steps, step)
		}
	}

	sort.Slice(steps, func(i, j int) bool {
		return steps[i].IsBefore(steps[j])
	})

	return steps
}
