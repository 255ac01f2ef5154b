package create_reservation

import (
	"github.com/thesilo/reservations/internal/service/reservations/models"
	createReservation "github.com/thesilo/reservations/internal/usecase/create_reservation"
)

const msgCreated = "Reservation created successfully!"

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	GuestName       string  `json:"guest_name"`
	GuestEmail      string  `json:"guest_email"`
	GuestPhone      string  `json:"guest_phone"`
	PartySize       *int    `json:"party_size"`
	ReservationDate string  `json:"reservation_date"` // "2026-10-20"
	ReservationTime string  `json:"reservation_time"` // "19:00"
	DietaryNotes    *string `json:"dietary_notes,omitempty"`
	SpecialRequests *string `json:"special_requests,omitempty"`
	Occasion        *string `json:"occasion,omitempty"`
}

// CreateReservationResponse HTTP response model
type CreateReservationResponse struct {
	Success          bool                        `json:"success"`
	ConfirmationCode string                      `json:"confirmationCode"`
	Reservation      *models.ReservationResponse `json:"reservation"`
	Message          string                      `json:"message"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest() *createReservation.Request {
	return &createReservation.Request{
		GuestName:       r.GuestName,
		GuestEmail:      r.GuestEmail,
		GuestPhone:      r.GuestPhone,
		PartySize:       r.PartySize,
		ReservationDate: r.ReservationDate,
		ReservationTime: r.ReservationTime,
		DietaryNotes:    r.DietaryNotes,
		SpecialRequests: r.SpecialRequests,
		Occasion:        r.Occasion,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response) *CreateReservationResponse {
	return &CreateReservationResponse{
		Success:          true,
		ConfirmationCode: resp.ConfirmationCode,
		Reservation:      models.FromDomainReservation(resp.Reservation),
		Message:          msgCreated,
	}
}
