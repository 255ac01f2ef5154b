package notification

import (
	"context"
	"errors"

	"github.com/thesilo/reservations/internal/domain"
)

// Sender интерфейс отправки email.
// Повторяются только ошибки с методом Temporary() bool, вернувшим true.
type Sender interface {
	Send(ctx context.Context, to []string, subject, html string) error
}

type temporary interface {
	Temporary() bool
}

func isTemporary(err error) bool {
	var t temporary
	return errors.As(err, &t) && t.Temporary()
}

// Publisher интерфейс публикации событий бронирований во внешнюю шину
type Publisher interface {
	Publish(ctx context.Context, event domain.ReservationEvent, reservation *domain.Reservation) error
}

// Metrics интерфейс метрик уведомлений
type Metrics interface {
	IncNotification(event, recipient, result string)
	IncNotificationDropped()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
