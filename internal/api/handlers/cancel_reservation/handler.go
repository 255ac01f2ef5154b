package cancel_reservation

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/thesilo/reservations/internal/access"
	"github.com/thesilo/reservations/internal/api/handlers"
	reservationsService "github.com/thesilo/reservations/internal/service/reservations"
)

const (
	msgInvalidRequestBody = "Invalid request body"
	msgMissingQuery       = "Email or confirmation code required"
	msgInvalidReason      = "Cancellation reason must be at most 500 characters"
	msgNotFound           = "Reservation not found"
	msgAccessDenied       = "Email or confirmation code does not match this reservation"
	msgTerminalStatus     = "Reservation can no longer be cancelled"
	msgCancelFailed       = "Failed to cancel reservation"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/reservations/{id}
// Query params: email или code (обязательны для гостя). Тело {email, code, reason} необязательно.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	caller := access.FromContext(r.Context())

	var body CancelReservationRequest
	if err := handlers.DecodeOptionalJSON(r, &body); err != nil {
		h.logger.Warn("DELETE /reservations/{id} - Invalid request body: id=%s, error=%v", id, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	req := body.ToServiceRequest(handlers.QueryParam(r, "email"), handlers.QueryParam(r, "code"))

	result, err := h.service.Cancel(r.Context(), caller, id, req)
	if err != nil {
		switch {
		case errors.Is(err, reservationsService.ErrMissingQuery):
			h.logger.Warn("DELETE /reservations/{id} - Missing email or code: id=%s", id)
			handlers.RespondBadRequest(w, msgMissingQuery)

		case errors.Is(err, reservationsService.ErrInvalidInput):
			h.logger.Warn("DELETE /reservations/{id} - Invalid reason: id=%s", id)
			handlers.RespondBadRequest(w, msgInvalidReason)

		case errors.Is(err, reservationsService.ErrReservationNotFound):
			h.logger.Warn("DELETE /reservations/{id} - Reservation not found: id=%s", id)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservationsService.ErrAccessDenied):
			h.logger.Warn("DELETE /reservations/{id} - Access denied: id=%s", id)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, reservationsService.ErrTerminalStatus):
			h.logger.Warn("DELETE /reservations/{id} - Terminal status: id=%s, error=%v", id, err)
			handlers.RespondConflict(w, msgTerminalStatus)

		default:
			h.logger.Error("DELETE /reservations/{id} - Failed to cancel reservation: id=%s, error=%v", id, err)
			handlers.RespondError(w, http.StatusInternalServerError, msgCancelFailed)
		}
		return
	}

	h.logger.Info("DELETE /reservations/{id} - Reservation cancelled successfully: id=%s, staff=%t", id, caller.IsStaff())
	handlers.RespondJSON(w, http.StatusOK, &CancelReservationResponse{
		Success:     true,
		Message:     msgCancelled,
		Reservation: result,
	})
}
