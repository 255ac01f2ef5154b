package get_time_slots

import (
	"time"

	"github.com/thesilo/reservations/pkg/types"
)

// Request модель запроса на получение слотов
type Request struct {
	Date string // YYYY-MM-DD
}

// Response модель ответа со списком слотов
type Response struct {
	Date     time.Time          // полночь в часовом поясе ресторана
	Slots    []types.TimeString // слоты, которые еще не начались
	Enforced bool               // бронирование вне слотов отклоняется
}
