package create_reservation

import (
	"context"
	"time"

	"github.com/thesilo/reservations/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Insert(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error)
}

// Notifier интерфейс неблокирующей постановки уведомления в очередь
type Notifier interface {
	Notify(event domain.ReservationEvent, reservation *domain.Reservation)
}

// Metrics интерфейс метрик создания бронирований
type Metrics interface {
	IncReservationCreated(result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
