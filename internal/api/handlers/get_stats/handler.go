package get_stats

import (
	"errors"
	"net/http"

	"github.com/thesilo/reservations/internal/access"
	"github.com/thesilo/reservations/internal/api/handlers"
	reservationsService "github.com/thesilo/reservations/internal/service/reservations"
)

const msgUnauthorized = "Unauthorized"

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

// Handle GET /api/v1/stats
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Stats(r.Context(), access.FromContext(r.Context()))
	if err != nil {
		if errors.Is(err, reservationsService.ErrUnauthorized) {
			h.logger.Warn("GET /stats - Unauthorized")
			handlers.RespondUnauthorized(w, msgUnauthorized)
			return
		}
		h.logger.Error("GET /stats - Failed to compute stats: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /stats - Stats computed: total=%d", result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
