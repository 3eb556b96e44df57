package check_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	providerRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/provider"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/availability"
)

// UseCase проверка слота без бронирования. Ничего не пишет в БД.
type UseCase struct {
	providerRepo ProviderRepository
	availability AvailabilityChecker
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	providerRepo ProviderRepository,
	availability AvailabilityChecker,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		providerRepo: providerRepo,
		availability: availability,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет проверку
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CheckAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем провайдера и услугу
	provider, err := uc.providerRepo.GetByID(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, providerRepo.ErrProviderNotFound) {
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("CheckAvailability: failed to get provider id=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	service, err := uc.providerRepo.GetService(ctx, req.ProviderID, req.ServiceID)
	if err != nil {
		if errors.Is(err, providerRepo.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CheckAvailability: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 3. Вердикт резолвера
	result, err := uc.availability.Check(ctx, availability.Request{
		Provider:     provider,
		Service:      service,
		Date:         req.Date,
		Time:         req.Time,
		Participants: req.Participants,
	}, uc.timeProvider.Now())
	if err != nil {
		uc.logger.Error("CheckAvailability: provider=%d, service=%d: %v", req.ProviderID, req.ServiceID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if !result.Available {
		uc.metrics.IncRejection(string(result.Kind))
	}

	uc.logger.Info("CheckAvailability: provider=%d, service=%d, date=%s, time=%s: %s",
		req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat), req.Time, result.Reason)

	return &Response{
		Available:      result.Available,
		Message:        result.Reason,
		RemainingSpots: result.RemainingSpots(),
	}, nil
}
