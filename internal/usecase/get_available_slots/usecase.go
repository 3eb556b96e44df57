package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	providerRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/provider"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/availability"
)

// UseCase use case для получения доступных слотов для бронирования.
// Каждый шаг проверяется тем же резолвером, что и бронирование.
type UseCase struct {
	providerRepo ProviderRepository
	ruleRepo     RuleRepository
	availability AvailabilityChecker
	stepMinutes  int
	maxRangeDays int
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	providerRepo ProviderRepository,
	ruleRepo RuleRepository,
	availability AvailabilityChecker,
	stepMinutes int,
	maxRangeDays int,
	logger Logger,
) *UseCase {
	if stepMinutes <= 0 {
		stepMinutes = domain.DefaultSlotStepMinutes
	}
	return &UseCase{
		providerRepo: providerRepo,
		ruleRepo:     ruleRepo,
		availability: availability,
		stepMinutes:  stepMinutes,
		maxRangeDays: maxRangeDays,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: provider=%d, service=%d, from=%s, to=%s",
		req.ProviderID, req.ServiceID, req.From.Format(domain.DateFormat), req.To.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.maxRangeDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем провайдера и услугу
	provider, err := uc.providerRepo.GetByID(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, providerRepo.ErrProviderNotFound) {
			uc.logger.Warn("GetAvailableSlots: provider id=%d not found", req.ProviderID)
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get provider id=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	service, err := uc.providerRepo.GetService(ctx, req.ProviderID, req.ServiceID)
	if err != nil {
		if errors.Is(err, providerRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	now := uc.timeProvider.Now()
	slots := make([]domain.AvailableSlot, 0)

	// 3. Перебираем дни диапазона
	for _, day := range domain.DaysBetween(req.From, req.To) {
		weekday := domain.WeekdayOf(day)

		// 3.1. Выходной день пропускаем
		if _, ok := provider.OperatingHours.For(weekday); !ok {
			continue
		}

		// 3.2. Шаги всех правил дня
		rules, err := uc.ruleRepo.FindActiveRules(ctx, provider.ID, weekday)
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to get rules for %s: %v", weekday, err)
			return nil, fmt.Errorf("%w: failed to get rules: %v", ErrInternal, err)
		}

		// 3.3. Каждый шаг проверяется резолвером на одного участника
		for _, step := range candidateSteps(rules, service.ID, uc.stepMinutes) {
			result, err := uc.availability.Check(ctx, availability.Request{
				Provider:     provider,
				Service:      service,
				Date:         day,
				Time:         step,
				Participants: domain.MinParticipants,
			}, now)
			if err != nil {
				uc.logger.Error("GetAvailableSlots: check %s %s failed: %v", day.Format(domain.DateFormat), step, err)
				return nil, fmt.Errorf("%w: %v", ErrInternal, err)
			}
			if !result.Available {
				continue
			}

			slots = append(slots, domain.AvailableSlot{
				Date:           day,
				StartTime:      step,
				AvailableSpots: result.RemainingSpots(),
				TotalSpots:     result.Capacity,
			})
		}
	}

	uc.logger.Info("GetAvailableSlots: found %d available slots for provider=%d, service=%d",
		len(slots), provider.ID, service.ID)

	return &Response{
		ProviderID: provider.ID,
		ServiceID:  service.ID,
		From:       req.From,
		To:         req.To,
		Slots:      slots,
	}, nil
}
