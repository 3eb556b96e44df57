package create_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/integrations/userservice"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if err := req.Time.Validate(); err != nil {
		return fmt.Errorf("%w: invalid time: %v", ErrInvalidInput, err)
	}

	if req.Participants < domain.MinParticipants {
		return fmt.Errorf("%w: participants must be at least %d", ErrInvalidInput, domain.MinParticipants)
	}

	if len(req.CustomerName) > domain.MaxCustomerNameLength {
		return fmt.Errorf("%w: customer name exceeds %d characters", ErrInvalidInput, domain.MaxCustomerNameLength)
	}

	if len(req.CustomerPhone) > domain.MaxCustomerPhoneLength {
		return fmt.Errorf("%w: customer phone exceeds %d characters", ErrInvalidInput, domain.MaxCustomerPhoneLength)
	}

	if req.SpecialRequests != nil && len(*req.SpecialRequests) > domain.MaxSpecialRequestsLength {
		return fmt.Errorf("%w: special requests exceed %d characters", ErrInvalidInput, domain.MaxSpecialRequestsLength)
	}

	return nil
}

// validateBookable проверяет, что провайдер и услуга открыты для бронирования
func validateBookable(provider *domain.Provider, service *domain.Service, participants int) error {
	if !provider.IsBookable() {
		return ErrProviderNotBookable
	}

	if !service.AcceptsBookings() {
		return ErrServiceNotBookable
	}

	if service.MaxParticipants > 0 && participants > service.MaxParticipants {
		return fmt.Errorf("%w: maximum %d participants allowed", ErrTooManyParticipants, service.MaxParticipants)
	}

	return nil
}

type contact struct {
	name  string
	phone string
	email string
}

// resolveContact берет поля из запроса, пустые дополняет из профиля
func resolveContact(req *Request, profile *userservice.Profile) (contact, error) {
	c := contact{
		name:  strings.TrimSpace(req.CustomerName),
		phone: strings.TrimSpace(req.CustomerPhone),
		email: strings.TrimSpace(req.CustomerEmail),
	}

	if profile != nil {
		if c.name == "" {
			c.name = profile.FullName()
		}
		if c.phone == "" {
			c.phone = profile.Phone
		}
		if c.email == "" {
			c.email = profile.Email
		}
	}

	if c.name == "" {
		return c, fmt.Errorf("%w: customer name", ErrContactRequired)
	}
	if c.phone == "" && c.email == "" {
		return c, fmt.Errorf("%w: customer phone or email", ErrContactRequired)
	}

	return c, nil
}

// needsProfile true, если в запросе не хватает контактных данных
func needsProfile(req *Request) bool {
	return strings.TrimSpace(req.CustomerName) == "" ||
		strings.TrimSpace(req.CustomerPhone) == "" ||
		strings.TrimSpace(req.CustomerEmail) == ""
}
