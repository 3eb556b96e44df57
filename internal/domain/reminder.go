package domain

import "time"

type ReminderType string

const (
	ReminderConfirmation ReminderType = "confirmation"
	Reminder24h          ReminderType = "reminder_24h"
	Reminder2h           ReminderType = "reminder_2h"
	ReminderFollowUp     ReminderType = "follow_up"
	ReminderCancellation ReminderType = "cancellation"
	ReminderReschedule   ReminderType = "reschedule"
)

type DeliveryMethod string

const (
	DeliveryEmail    DeliveryMethod = "email"
	DeliverySMS      DeliveryMethod = "sms"
	DeliveryWhatsApp DeliveryMethod = "whatsapp"
	DeliveryPush     DeliveryMethod = "push"
)

type ReminderStatus string

const (
	ReminderStatusPending   ReminderStatus = "pending"
	ReminderStatusSent      ReminderStatus = "sent"
	ReminderStatusFailed    ReminderStatus = "failed"
	ReminderStatusCancelled ReminderStatus = "cancelled"
)

// BookingReminder is a notification scheduled for a booking
type BookingReminder struct {
	ID             int64
	BookingID      int64
	Type           ReminderType
	DeliveryMethod DeliveryMethod
	ScheduledFor   time.Time
	Subject        string
	Message        string
	Status         ReminderStatus
	SentAt         *time.Time
	ErrorMessage   *string

	CreatedAt time.Time
}

// IsDue returns true if the reminder should be sent at now
func (r *BookingReminder) IsDue(now time.Time) bool {
	return r.Status == ReminderStatusPending && !r.ScheduledFor.After(now)
}
