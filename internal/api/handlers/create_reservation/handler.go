package create_reservation

import (
	"errors"
	"net/http"

	"github.com/thesilo/reservations/internal/api/handlers"
	createReservation "github.com/thesilo/reservations/internal/usecase/create_reservation"
)

const (
	msgInvalidRequestBody = "Invalid request body"
	msgMissingFields      = "Missing required fields"
	msgInvalidEmail       = "Invalid email format"
	msgInvalidPartySize   = "Party size must be between 1 and 20"
	msgInvalidDateTime    = "Reservation must be in the future and have a valid date/time"
	msgInvalidTimeSlot    = "Please choose one of the available time slots"
	msgFieldTooLong       = "Name must be at most 120 characters and phone at most 32 characters"
	msgNotesTooLong       = "Notes must be at most 500 characters"
	msgCreateFailed       = "Failed to create reservation. Please try again."
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		switch {
		case errors.Is(err, createReservation.ErrMissingField):
			h.logger.Warn("POST /reservations - Missing fields: %v", err)
			handlers.RespondBadRequest(w, msgMissingFields)

		case errors.Is(err, createReservation.ErrInvalidEmail):
			h.logger.Warn("POST /reservations - Invalid email")
			handlers.RespondBadRequest(w, msgInvalidEmail)

		case errors.Is(err, createReservation.ErrInvalidPartySize):
			h.logger.Warn("POST /reservations - Invalid party size: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPartySize)

		case errors.Is(err, createReservation.ErrInvalidOrPastDateTime):
			h.logger.Warn("POST /reservations - Invalid date/time: date=%s, time=%s", req.ReservationDate, req.ReservationTime)
			handlers.RespondBadRequest(w, msgInvalidDateTime)

		case errors.Is(err, createReservation.ErrInvalidTimeSlot):
			h.logger.Warn("POST /reservations - Not a service slot: date=%s, time=%s", req.ReservationDate, req.ReservationTime)
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, createReservation.ErrFieldTooLong):
			h.logger.Warn("POST /reservations - Field too long: %v", err)
			handlers.RespondBadRequest(w, msgFieldTooLong)

		case errors.Is(err, createReservation.ErrNotesTooLong):
			h.logger.Warn("POST /reservations - Notes too long: %v", err)
			handlers.RespondBadRequest(w, msgNotesTooLong)

		default:
			h.logger.Error("POST /reservations - Failed to create reservation: date=%s, time=%s, error=%v",
				req.ReservationDate, req.ReservationTime, err)
			handlers.RespondError(w, http.StatusInternalServerError, msgCreateFailed)
		}
		return
	}

	h.logger.Info("POST /reservations - Reservation created successfully: id=%s, code=%s",
		result.Reservation.ID, result.ConfirmationCode)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
