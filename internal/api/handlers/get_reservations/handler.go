package get_reservations

import (
	"errors"
	"net/http"

	"github.com/thesilo/reservations/internal/access"
	"github.com/thesilo/reservations/internal/api/handlers"
	reservationsService "github.com/thesilo/reservations/internal/service/reservations"
	"github.com/thesilo/reservations/internal/service/reservations/models"
)

const (
	msgMissingQuery  = "Email or confirmation code required"
	msgInvalidFilter = "Invalid filter: status must be a known value and dates YYYY-MM-DD"
	msgFetchFailed   = "Failed to fetch reservations"
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

// Handle GET /api/v1/reservations
// Query params: email, code (гость: одно из них обязательно); status, from, to, search (только персонал)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	caller := access.FromContext(r.Context())

	req := &models.LookupRequest{
		Email:  handlers.QueryParam(r, "email"),
		Code:   handlers.QueryParam(r, "code"),
		Status: handlers.QueryParam(r, "status"),
		From:   handlers.QueryParam(r, "from"),
		To:     handlers.QueryParam(r, "to"),
		Search: handlers.QueryParam(r, "search"),
	}

	result, err := h.service.Lookup(r.Context(), caller, req)
	if err != nil {
		switch {
		case errors.Is(err, reservationsService.ErrMissingQuery):
			h.logger.Warn("GET /reservations - Missing email or code")
			handlers.RespondBadRequest(w, msgMissingQuery)

		case errors.Is(err, reservationsService.ErrInvalidInput):
			h.logger.Warn("GET /reservations - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidFilter)

		default:
			h.logger.Error("GET /reservations - Failed to fetch reservations: staff=%t, error=%v", caller.IsStaff(), err)
			handlers.RespondError(w, http.StatusInternalServerError, msgFetchFailed)
		}
		return
	}

	h.logger.Info("GET /reservations - Reservations retrieved successfully: staff=%t, count=%d",
		caller.IsStaff(), len(result.Reservations))
	handlers.RespondJSON(w, http.StatusOK, result)
}
