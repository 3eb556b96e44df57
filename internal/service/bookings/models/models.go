package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// Request модели

// UpdateStatusRequest запрос провайдера на смену статуса бронирования
type UpdateStatusRequest struct {
	UserID int64  `json:"-"`
	Status string `json:"status"`
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	RequesterID int64   `json:"-"`
	UserID      int64   `json:"userId"`
	Status      *string `json:"status,omitempty"`
}

// GetProviderBookingsRequest запрос на получение бронирований провайдера
type GetProviderBookingsRequest struct {
	UserID     int64      `json:"-"`
	ProviderID int64      `json:"providerId"`
	Date       *time.Time `json:"date,omitempty"`   // Фильтр по дате (опционально)
	Status     *string    `json:"status,omitempty"` // Фильтр по статусу (опционально)
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetProviderBookingsRequest) ToDomainFilter() (domain.ProviderBookingsFilter, error) {
	filter := domain.ProviderBookingsFilter{
		ProviderID: r.ProviderID,
		Date:       r.Date,
	}

	if r.Status != nil {
		status, err := domain.ParseBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	BookingID       uuid.UUID `json:"bookingId"`
	UserID          int64     `json:"userId"`
	ProviderID      int64     `json:"providerId"`
	ServiceID       int64     `json:"serviceId"`
	BookingDate     string    `json:"bookingDate"` // "2025-10-15"
	BookingTime     string    `json:"bookingTime"` // "10:00"
	DurationMinutes int       `json:"durationMinutes"`
	Participants    int       `json:"participants"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"paymentStatus"`

	// Снимок цены
	ServicePrice string `json:"servicePrice"`
	TotalAmount  string `json:"totalAmount"`
	Currency     string `json:"currency"`

	// Снимок контактов
	CustomerName    string  `json:"customerName"`
	CustomerPhone   string  `json:"customerPhone,omitempty"`
	CustomerEmail   string  `json:"customerEmail,omitempty"`
	SpecialRequests *string `json:"specialRequests,omitempty"`
	ProviderNotes   *string `json:"providerNotes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format
	ConfirmedAt        *string `json:"confirmedAt,omitempty"`
	RescheduleCount    int     `json:"rescheduleCount"`
	IsRescheduled      bool    `json:"isRescheduled"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		BookingID:          b.PublicID,
		UserID:             b.UserID,
		ProviderID:         b.ProviderID,
		ServiceID:          b.ServiceID,
		BookingDate:        b.BookingDate.Format(domain.DateFormat),
		BookingTime:        b.BookingTime.String(),
		DurationMinutes:    b.DurationMinutes,
		Participants:       b.Participants,
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		ServicePrice:       b.ServicePrice.StringFixed(2),
		TotalAmount:        b.TotalAmount.StringFixed(2),
		Currency:           b.Currency,
		CustomerName:       b.CustomerName,
		CustomerPhone:      b.CustomerPhone,
		CustomerEmail:      b.CustomerEmail,
		SpecialRequests:    b.SpecialRequests,
		ProviderNotes:      b.ProviderNotes,
		CancellationReason: b.CancellationReason,
		CancelledAt:        formatTime(b.CancelledAt),
		ConfirmedAt:        formatTime(b.ConfirmedAt),
		RescheduleCount:    b.RescheduleCount,
		IsRescheduled:      b.OriginalBookingID != nil,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
