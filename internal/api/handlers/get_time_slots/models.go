package get_time_slots

import (
	"github.com/thesilo/reservations/internal/domain"
	getTimeSlots "github.com/thesilo/reservations/internal/usecase/get_time_slots"
)

// TimeSlotsResponse HTTP response model
type TimeSlotsResponse struct {
	Date     string   `json:"date"`
	Slots    []string `json:"slots"`
	Enforced bool     `json:"enforced"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getTimeSlots.Response) *TimeSlotsResponse {
	slots := make([]string, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = slot.String()
	}

	return &TimeSlotsResponse{
		Date:     resp.Date.Format(domain.DateFormat),
		Slots:    slots,
		Enforced: resp.Enforced,
	}
}
