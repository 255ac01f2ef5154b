package update_status

import "github.com/thesilo/reservations/internal/service/reservations/models"

// UpdateStatusResponse HTTP response model
type UpdateStatusResponse struct {
	Success     bool                        `json:"success"`
	Reservation *models.ReservationResponse `json:"reservation"`
}
