package eventbus

import (
	"time"

	"github.com/thesilo/reservations/internal/domain"
)

// EventMessage тело сообщения о событии бронирования
type EventMessage struct {
	Event            string    `json:"event"`
	ReservationID    string    `json:"reservation_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	Status           string    `json:"status"`
	GuestEmail       string    `json:"guest_email"`
	PartySize        int       `json:"party_size"`
	ReservationDate  string    `json:"reservation_date"`
	ReservationTime  string    `json:"reservation_time"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// NewEventMessage собирает сообщение из бронирования
func NewEventMessage(event domain.ReservationEvent, r *domain.Reservation, occurredAt time.Time) EventMessage {
	return EventMessage{
		Event:            string(event),
		ReservationID:    r.ID,
		ConfirmationCode: r.ConfirmationCode,
		Status:           string(r.Status),
		GuestEmail:       r.GuestEmail,
		PartySize:        r.PartySize,
		ReservationDate:  r.ReservationDate.Format(domain.DateFormat),
		ReservationTime:  r.ReservationTime.String(),
		OccurredAt:       occurredAt.UTC(),
	}
}
