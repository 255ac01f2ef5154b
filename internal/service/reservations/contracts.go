package reservations

import (
	"context"
	"time"

	"github.com/thesilo/reservations/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	FindByCode(ctx context.Context, code string) (*domain.Reservation, error)
	FindByEmail(ctx context.Context, email string) ([]*domain.Reservation, error)
	List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error)
	Update(ctx context.Context, id string, update domain.ReservationUpdate) (*domain.Reservation, error)
}

// Notifier интерфейс неблокирующей постановки уведомления в очередь
type Notifier interface {
	Notify(event domain.ReservationEvent, reservation *domain.Reservation)
}

// Metrics интерфейс метрик переходов статусов
type Metrics interface {
	IncStatusTransition(from, to string)
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

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time {
	return time.Now()
}
