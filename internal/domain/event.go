package domain

// ReservationEvent событие жизненного цикла бронирования, на которое отправляются уведомления
type ReservationEvent string

const (
	EventCreated   ReservationEvent = "created"
	EventConfirmed ReservationEvent = "confirmed"
	EventCancelled ReservationEvent = "cancelled"
)

// EventForStatus возвращает событие для перехода в статус.
// Только confirmed и cancelled порождают уведомления.
func EventForStatus(status ReservationStatus) (ReservationEvent, bool) {
	switch status {
	case StatusConfirmed:
		return EventConfirmed, true
	case StatusCancelled:
		return EventCancelled, true
	default:
		return "", false
	}
}
