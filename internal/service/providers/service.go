package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	providerRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/provider"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/providers/models"
)

// Service сервис часов работы провайдера
type Service struct {
	providerRepo ProviderRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса
func NewService(providerRepo ProviderRepository, logger Logger) *Service {
	return &Service{
		providerRepo: providerRepo,
		logger:       logger,
	}
}

// GetOperatingHours получает часы работы провайдера.
// Доступно только владельцу провайдера
func (s *Service) GetOperatingHours(ctx context.Context, providerID, userID int64) (*models.OperatingHoursResponse, error) {
	s.logger.Info("GetOperatingHours: fetching operating hours of provider=%d for user=%d", providerID, userID)

	provider, err := s.getProvider(ctx, "GetOperatingHours", providerID)
	if err != nil {
		return nil, err
	}
	if !provider.IsOwnedBy(userID) {
		s.logger.Warn("GetOperatingHours: user=%d is not the owner of provider=%d", userID, providerID)
		return nil, ErrAccessDenied
	}

	return models.FromDomainProvider(provider), nil
}

// UpdateOperatingHours заменяет расписание целиком.
// Доступно только владельцу провайдера, некорректное расписание не сохраняется.
func (s *Service) UpdateOperatingHours(ctx context.Context, req *models.UpdateOperatingHoursRequest) (*models.OperatingHoursResponse, error) {
	s.logger.Info("UpdateOperatingHours: provider=%d, user=%d, days=%d", req.ProviderID, req.UserID, len(req.OperatingHours))

	// 1. Валидируем расписание
	if err := req.OperatingHours.Validate(); err != nil {
		s.logger.Warn("UpdateOperatingHours: validation failed for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 2. Проверяем права доступа
	provider, err := s.getProvider(ctx, "UpdateOperatingHours", req.ProviderID)
	if err != nil {
		return nil, err
	}
	if !provider.IsOwnedBy(req.UserID) {
		s.logger.Warn("UpdateOperatingHours: user=%d is not the owner of provider=%d", req.UserID, req.ProviderID)
		return nil, ErrAccessDenied
	}

	// 3. Сохраняем
	hours := req.OperatingHours
	if hours == nil {
		hours = domain.OperatingHours{}
	}
	if err := s.providerRepo.UpdateOperatingHours(ctx, provider.ID, hours); err != nil {
		if errors.Is(err, domain.ErrInvalidOperatingHours) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		s.logger.Error("UpdateOperatingHours: repository error for provider=%d: %v", provider.ID, err)
		return nil, fmt.Errorf("%w: UpdateOperatingHours - repository error: %v", ErrInternal, err)
	}

	provider.OperatingHours = hours
	s.logger.Info("UpdateOperatingHours: successfully updated provider=%d", provider.ID)
	return models.FromDomainProvider(provider), nil
}

func (s *Service) getProvider(ctx context.Context, op string, providerID int64) (*domain.Provider, error) {
	provider, err := s.providerRepo.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, providerRepo.ErrProviderNotFound) {
			s.logger.Warn("%s: provider id=%d not found", op, providerID)
			return nil, ErrProviderNotFound
		}
		s.logger.Error("%s: repository error for provider id=%d: %v", op, providerID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return provider, nil
}
