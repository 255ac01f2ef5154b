package get_reservations

import (
	"context"

	"github.com/thesilo/reservations/internal/access"
	"github.com/thesilo/reservations/internal/service/reservations/models"
)

type ReservationService interface {
	Lookup(ctx context.Context, caller access.Caller, req *models.LookupRequest) (*models.ReservationListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
