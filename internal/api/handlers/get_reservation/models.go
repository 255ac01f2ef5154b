package get_reservation

import "github.com/thesilo/reservations/internal/service/reservations/models"

// GetReservationResponse HTTP response model
type GetReservationResponse struct {
	Reservation *models.ReservationResponse `json:"reservation"`
}
