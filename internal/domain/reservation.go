package domain

import (
	"time"

	"github.com/thesilo/reservations/pkg/types"
)

// ReservationStatus represents the status of a reservation
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusSeated    ReservationStatus = "seated"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusNoShow    ReservationStatus = "no_show"
)

// ParseReservationStatus конвертирует строку в статус с валидацией
func ParseReservationStatus(s string) (ReservationStatus, bool) {
	status := ReservationStatus(s)
	for _, known := range AllStatuses {
		if status == known {
			return status, true
		}
	}
	return "", false
}

// IsTerminal returns true if no further transitions are allowed from the status
func (s ReservationStatus) IsTerminal() bool {
	for _, terminal := range TerminalStatuses {
		if s == terminal {
			return true
		}
	}
	return false
}

// CanTransitionTo проверяет допустимость перехода.
// Из терминального статуса переходов нет (кроме повторного применения того же статуса,
// который обрабатывается вызывающей стороной как no-op).
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	if s.IsTerminal() {
		return s == next
	}
	_, known := ParseReservationStatus(string(next))
	return known
}

// Reservation represents a table reservation
type Reservation struct {
	ID               string
	ConfirmationCode string

	GuestName  string
	GuestEmail string
	GuestPhone string

	PartySize       int
	ReservationDate time.Time // только дата, время суток нулевое
	ReservationTime types.TimeString

	DietaryNotes    *string
	SpecialRequests *string
	Occasion        *string

	Status             ReservationStatus
	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the reservation still expects the guest
func (r *Reservation) IsActive() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed || r.Status == StatusSeated
}

// IsCancelled returns true if the reservation has been cancelled
func (r *Reservation) IsCancelled() bool {
	return r.Status == StatusCancelled
}

// StartsAt возвращает момент начала бронирования в часовом поясе ресторана
func (r *Reservation) StartsAt(loc *time.Location) time.Time {
	return r.ReservationTime.On(r.ReservationDate, loc)
}

// ReservationFilter фильтр для выборки бронирований персоналом.
// Все поля опциональны; пустой фильтр означает "все бронирования".
type ReservationFilter struct {
	Email    *string
	Code     *string
	Status   *ReservationStatus
	FromDate *time.Time // включительно
	ToDate   *time.Time // включительно
	Search   *string    // подстрока имени гостя или кода подтверждения
}

// ReservationUpdate набор изменяемых после создания полей.
// Код подтверждения, email, дата/время и количество гостей не изменяются.
type ReservationUpdate struct {
	Status             *ReservationStatus
	CancelledAt        *time.Time
	CancellationReason *string
	DietaryNotes       *string
	SpecialRequests    *string
	Occasion           *string
}

// IsEmpty returns true if the update changes nothing
func (u ReservationUpdate) IsEmpty() bool {
	return u.Status == nil && u.CancelledAt == nil && u.CancellationReason == nil &&
		u.DietaryNotes == nil && u.SpecialRequests == nil && u.Occasion == nil
}
