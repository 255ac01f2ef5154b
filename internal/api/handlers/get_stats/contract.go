package get_stats

import (
	"context"

	"github.com/thesilo/reservations/internal/access"
	"github.com/thesilo/reservations/internal/service/reservations/models"
)

type ReservationService interface {
	Stats(ctx context.Context, caller access.Caller) (*models.StatsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
