package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/booking"
	providerRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/provider"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/bookings/models"
)

// Статусы, которые провайдер может выставить вручную
var providerStatuses = map[domain.BookingStatus]bool{
	domain.StatusConfirmed: true,
	domain.StatusCompleted: true,
	domain.StatusNoShow:    true,
}

// Service сервис для чтения бронирований и смены статуса провайдером
type Service struct {
	bookingRepo  BookingRepository
	providerRepo ProviderRepository
	reminders    ReminderCanceller
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	providerRepo ProviderRepository,
	reminders ReminderCanceller,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		providerRepo: providerRepo,
		reminders:    reminders,
		txManager:    txManager,
		timeProvider: realTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByPublicID получает бронирование по публичному ID.
// Видеть бронирование может клиент или владелец провайдера.
func (s *Service) GetByPublicID(ctx context.Context, publicID uuid.UUID, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByPublicID: fetching booking %s for user=%d", publicID, userID)

	booking, err := s.getBooking(ctx, "GetByPublicID", publicID)
	if err != nil {
		return nil, err
	}

	if !booking.IsOwnedBy(userID) {
		if err := s.checkProviderOwner(ctx, booking.ProviderID, userID); err != nil {
			s.logger.Warn("GetByPublicID: access denied for user=%d to booking %s", userID, publicID)
			if errors.Is(err, ErrProviderNotFound) {
				return nil, ErrAccessDenied
			}
			return nil, err
		}
	}

	s.logger.Info("GetByPublicID: successfully fetched booking id=%d", booking.ID)
	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя.
// Пользователь видит только свои бронирования.
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, status=%v", req.UserID, req.Status)

	if req.RequesterID != req.UserID {
		s.logger.Warn("GetUserBookings: user=%d requested bookings of user=%d", req.RequesterID, req.UserID)
		return nil, ErrAccessDenied
	}

	filter := domain.UserBookingsFilter{UserID: req.UserID}
	if req.Status != nil {
		status, err := domain.ParseBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetProviderBookings получает бронирования провайдера с фильтром по дате и статусу.
// Доступно только владельцу провайдера.
func (s *Service) GetProviderBookings(ctx context.Context, req *models.GetProviderBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := fmt.Sprintf("GetProviderBookings: fetching bookings for provider=%d, user=%d", req.ProviderID, req.UserID)
	if req.Date != nil {
		logMsg += fmt.Sprintf(", date=%s", req.Date.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	s.logger.Info(logMsg)

	if err := s.checkProviderOwner(ctx, req.ProviderID, req.UserID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetProviderBookings: invalid filter for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.GetByProviderWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetProviderBookings: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: GetProviderBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetProviderBookings: successfully fetched %d bookings for provider=%d", len(bookings), req.ProviderID)
	return models.FromDomainBookingList(bookings), nil
}

// UpdateStatus выставляет confirmed, completed или no_show.
// Доступно только владельцу провайдера, переход разрешен только из активных статусов.
func (s *Service) UpdateStatus(ctx context.Context, publicID uuid.UUID, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateStatus: updating booking %s to status=%s by user=%d", publicID, req.Status, req.UserID)

	newStatus, err := domain.ParseBookingStatus(req.Status)
	if err != nil || !providerStatuses[newStatus] {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking %s", req.Status, publicID)
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	var updated *domain.Booking

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.getBooking(txCtx, "UpdateStatus", publicID)
		if err != nil {
			return err
		}

		if err := s.checkProviderOwner(txCtx, booking.ProviderID, req.UserID); err != nil {
			return err
		}

		now := s.timeProvider.Now()
		if err := s.bookingRepo.UpdateStatus(txCtx, booking.ID, newStatus, now); err != nil {
			if errors.Is(err, bookingRepo.ErrIllegalTransition) {
				s.logger.Warn("UpdateStatus: booking id=%d is %s, cannot become %s", booking.ID, booking.Status, newStatus)
				return ErrIllegalTransition
			}
			return fmt.Errorf("%w: UpdateStatus - repository error: %w", ErrInternal, err)
		}

		// Напоминания о визите, который уже состоялся или сорвался, не нужны
		if newStatus != domain.StatusConfirmed {
			if err := s.reminders.CancelPending(txCtx, booking.ID); err != nil {
				return fmt.Errorf("%w: UpdateStatus - %w", ErrInternal, err)
			}
		}

		booking.Status = newStatus
		if newStatus == domain.StatusConfirmed && booking.ConfirmedAt == nil {
			booking.ConfirmedAt = &now
		}
		updated = booking
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			s.logger.Error("UpdateStatus: booking %s: %v", publicID, err)
		}
		return nil, err
	}

	s.logger.Info("UpdateStatus: successfully updated booking id=%d to status=%s", updated.ID, newStatus)
	return models.FromDomainBooking(updated), nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, op string, publicID uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking %s not found", op, publicID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking %s: %v", op, publicID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// checkProviderOwner проверяет, что пользователь владелец провайдера
func (s *Service) checkProviderOwner(ctx context.Context, providerID, userID int64) error {
	provider, err := s.providerRepo.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, providerRepo.ErrProviderNotFound) {
			s.logger.Warn("checkProviderOwner: provider id=%d not found", providerID)
			return ErrProviderNotFound
		}
		s.logger.Error("checkProviderOwner: failed to get provider id=%d: %v", providerID, err)
		return fmt.Errorf("%w: checkProviderOwner - failed to get provider: %v", ErrInternal, err)
	}

	if !provider.IsOwnedBy(userID) {
		s.logger.Warn("checkProviderOwner: user=%d is not the owner of provider=%d", userID, providerID)
		return ErrAccessDenied
	}
	return nil
}
