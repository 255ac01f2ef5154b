package get_time_slots

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thesilo/reservations/internal/domain"
)

// UseCase use case получения слотов обслуживания на дату.
// Вместимость не учитывается: слот показывает только время, когда ресторан принимает гостей.
type UseCase struct {
	schedule     domain.ServiceSchedule
	enforced     bool
	location     *time.Location
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case.
// enforced сообщает клиенту, что время вне слотов будет отклонено при создании бронирования.
func NewUseCase(schedule domain.ServiceSchedule, enforced bool, location *time.Location, logger Logger) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		schedule:     schedule,
		enforced:     enforced,
		location:     location,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute возвращает слоты на дату, которые строго позже текущего момента
func (uc *UseCase) Execute(_ context.Context, req *Request) (*Response, error) {
	date, err := uc.parseDate(req.Date)
	if err != nil {
		uc.logger.Warn("GetTimeSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now().In(uc.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.location)
	if date.Before(today) {
		uc.logger.Warn("GetTimeSlots: date=%s is in the past", req.Date)
		return nil, fmt.Errorf("%w: %s", ErrDateInPast, req.Date)
	}

	slots := uc.schedule.UpcomingSlots(date, now, uc.location)

	uc.logger.Info("GetTimeSlots: date=%s, slots=%d", date.Format(domain.DateFormat), len(slots))
	return &Response{
		Date:     date,
		Slots:    slots,
		Enforced: uc.enforced,
	}, nil
}

func (uc *UseCase) parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	date, err := time.ParseInLocation(domain.DateFormat, value, uc.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return date, nil
}
