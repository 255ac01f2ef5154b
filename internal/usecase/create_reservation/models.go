package create_reservation

import (
	"time"

	"github.com/thesilo/reservations/internal/domain"
	"github.com/thesilo/reservations/pkg/types"
)

// Request сырые данные формы бронирования
type Request struct {
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	PartySize       *int   // nil - поле не передано
	ReservationDate string // YYYY-MM-DD
	ReservationTime string // HH:MM
	DietaryNotes    *string
	SpecialRequests *string
	Occasion        *string
}

// ValidatedReservation нормализованные данные, готовые к сохранению
type ValidatedReservation struct {
	GuestName       string
	GuestEmail      string // lower-case, без пробелов по краям
	GuestPhone      string
	PartySize       int
	ReservationDate time.Time // полночь в часовом поясе ресторана
	ReservationTime types.TimeString
	DietaryNotes    *string
	SpecialRequests *string
	Occasion        *string
}

// Response модель ответа с созданным бронированием
type Response struct {
	ConfirmationCode string
	Reservation      *domain.Reservation
}
