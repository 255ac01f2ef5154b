package get_reservation

import (
	"context"

	"github.com/thesilo/reservations/internal/access"
	"github.com/thesilo/reservations/internal/service/reservations/models"
)

type ReservationService interface {
	GetByID(ctx context.Context, caller access.Caller, id string, identity models.Identity) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
