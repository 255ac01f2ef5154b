package get_reservation

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
	msgMissingQuery = "Email or confirmation code required"
	msgNotFound     = "Reservation not found"
	msgAccessDenied = "Email or confirmation code does not match this reservation"
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

// Handle GET /api/v1/reservations/{id}
// Query params: email или code (обязательны для гостя)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	caller := access.FromContext(r.Context())

	identity := models.Identity{
		Email: handlers.QueryParam(r, "email"),
		Code:  handlers.QueryParam(r, "code"),
	}

	result, err := h.service.GetByID(r.Context(), caller, id, identity)
	if err != nil {
		switch {
		case errors.Is(err, reservationsService.ErrMissingQuery):
			h.logger.Warn("GET /reservations/{id} - Missing email or code: id=%s", id)
			handlers.RespondBadRequest(w, msgMissingQuery)

		case errors.Is(err, reservationsService.ErrReservationNotFound):
			h.logger.Warn("GET /reservations/{id} - Reservation not found: id=%s", id)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservationsService.ErrAccessDenied):
			h.logger.Warn("GET /reservations/{id} - Access denied: id=%s", id)
			handlers.RespondForbidden(w, msgAccessDenied)

		default:
			h.logger.Error("GET /reservations/{id} - Failed to get reservation: id=%s, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /reservations/{id} - Reservation retrieved successfully: id=%s", id)
	handlers.RespondJSON(w, http.StatusOK, &GetReservationResponse{Reservation: result})
}
