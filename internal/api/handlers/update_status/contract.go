package update_status

import (
	"context"

	"github.com/thesilo/reservations/internal/access"
	"github.com/thesilo/reservations/internal/service/reservations/models"
)

type ReservationService interface {
	SetStatus(ctx context.Context, caller access.Caller, id string, req *models.UpdateStatusRequest) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
