package update_status

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/thesilo/reservations/internal/access"
	"github.com/thesilo/reservations/internal/api/handlers"
	reservationsService "github.com/thesilo/reservations/internal/service/reservations"
	"github.com/thesilo/reservations/internal/service/reservations/models"
)

const (
	msgUnauthorized       = "Unauthorized"
	msgInvalidRequestBody = "Invalid request body"
	msgInvalidStatus      = "Invalid status"
	msgNotFound           = "Reservation not found"
	msgTerminalStatus     = "Reservation is already closed and cannot change status"
	msgUpdateFailed       = "Failed to update status"
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

// Handle PATCH /api/v1/reservations/{id}
// Только персонал (X-Admin-Secret)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	caller := access.FromContext(r.Context())

	if !caller.IsStaff() {
		h.logger.Warn("PATCH /reservations/{id} - Unauthorized: id=%s", id)
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req models.UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /reservations/{id} - Invalid request body: id=%s, error=%v", id, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.SetStatus(r.Context(), caller, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, reservationsService.ErrUnauthorized):
			h.logger.Warn("PATCH /reservations/{id} - Unauthorized: id=%s", id)
			handlers.RespondUnauthorized(w, msgUnauthorized)

		case errors.Is(err, reservationsService.ErrInvalidStatus):
			h.logger.Warn("PATCH /reservations/{id} - Invalid status: id=%s, status=%q", id, req.Status)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, reservationsService.ErrReservationNotFound):
			h.logger.Warn("PATCH /reservations/{id} - Reservation not found: id=%s", id)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservationsService.ErrTerminalStatus):
			h.logger.Warn("PATCH /reservations/{id} - Terminal status: id=%s, error=%v", id, err)
			handlers.RespondConflict(w, msgTerminalStatus)

		default:
			h.logger.Error("PATCH /reservations/{id} - Failed to update status: id=%s, error=%v", id, err)
			handlers.RespondError(w, http.StatusInternalServerError, msgUpdateFailed)
		}
		return
	}

	h.logger.Info("PATCH /reservations/{id} - Status updated successfully: id=%s, status=%s", id, result.Status)
	handlers.RespondJSON(w, http.StatusOK, &UpdateStatusResponse{Success: true, Reservation: result})
}
