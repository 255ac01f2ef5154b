package get_time_slots

import (
	"errors"
	"net/http"

	"github.com/thesilo/reservations/internal/api/handlers"
	getTimeSlots "github.com/thesilo/reservations/internal/usecase/get_time_slots"
)

const (
	msgInvalidDate = "Date is required in YYYY-MM-DD format"
	msgDateInPast  = "Date must be today or later"
)

type Handler struct {
	useCase GetTimeSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetTimeSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/time-slots
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	result, err := h.useCase.Execute(r.Context(), &getTimeSlots.Request{Date: date})
	if err != nil {
		switch {
		case errors.Is(err, getTimeSlots.ErrInvalidInput):
			h.logger.Warn("GET /time-slots - Invalid date: %q", date)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, getTimeSlots.ErrDateInPast):
			h.logger.Warn("GET /time-slots - Date in past: %s", date)
			handlers.RespondBadRequest(w, msgDateInPast)

		default:
			h.logger.Error("GET /time-slots - Failed to get slots: date=%s, error=%v", date, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /time-slots - Slots retrieved successfully: date=%s, slots_count=%d", date, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
