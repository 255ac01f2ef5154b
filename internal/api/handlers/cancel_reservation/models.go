package cancel_reservation

import (
	"github.com/thesilo/reservations/internal/service/reservations/models"
)

const msgCancelled = "Reservation cancelled successfully"

// CancelReservationRequest необязательное тело запроса.
// Email и код можно передать и в query параметрах, query имеет приоритет.
type CancelReservationRequest struct {
	Email  *string `json:"email,omitempty"`
	Code   *string `json:"code,omitempty"`
	Reason *string `json:"reason,omitempty"`
}

// CancelReservationResponse HTTP response model
type CancelReservationResponse struct {
	Success     bool                        `json:"success"`
	Message     string                      `json:"message"`
	Reservation *models.ReservationResponse `json:"reservation"`
}

// ToServiceRequest объединяет query параметры и тело запроса
func (r *CancelReservationRequest) ToServiceRequest(queryEmail, queryCode *string) *models.CancelRequest {
	email, code := r.Email, r.Code
	if queryEmail != nil {
		email = queryEmail
	}
	if queryCode != nil {
		code = queryCode
	}

	return &models.CancelRequest{
		Identity: models.Identity{Email: email, Code: code},
		Reason:   r.Reason,
	}
}
