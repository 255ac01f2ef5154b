package create_reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/thesilo/reservations/internal/domain"
	reservationRepo "github.com/thesilo/reservations/internal/infra/storage/reservation"
)

const (
	resultCreated   = "created"
	resultInvalid   = "invalid"
	resultDuplicate = "duplicate"
	resultError     = "error"
)

// UseCase use case для создания бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	validator       *Validator
	notifier        Notifier
	metrics         Metrics
	timeProvider    TimeProvider
	generateCode    func() string
	logger          Logger
}

// NewUseCase создает новый экземпляр use case.
// metrics может быть nil.
func NewUseCase(
	reservationRepo ReservationRepository,
	validator *Validator,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
) *UseCase {
	uc := &UseCase{
		reservationRepo: reservationRepo,
		validator:       validator,
		notifier:        notifier,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
	uc.generateCode = func() string {
		return GenerateConfirmationCode(uc.timeProvider.Now())
	}
	return uc
}

// Execute выполняет use case создания бронирования.
// Уведомление "created" ставится в очередь после успешной записи и не влияет на результат.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	validated, err := uc.validator.Validate(req)
	if err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		uc.observe(resultInvalid)
		return nil, err
	}

	uc.logger.Info("CreateReservation: email=%s, party=%d, date=%s, time=%s",
		validated.GuestEmail, validated.PartySize, validated.ReservationDate.Format(domain.DateFormat), validated.ReservationTime)

	created, err := uc.insertWithRetry(ctx, validated)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateReservation: successfully created reservation id=%s, code=%s", created.ID, created.ConfirmationCode)
	uc.observe(resultCreated)

	uc.notifier.Notify(domain.EventCreated, created)

	return &Response{
		ConfirmationCode: created.ConfirmationCode,
		Reservation:      created,
	}, nil
}

// insertWithRetry сохраняет бронирование; при коллизии кода генерирует новый и повторяет один раз
func (uc *UseCase) insertWithRetry(ctx context.Context, validated *ValidatedReservation) (*domain.Reservation, error) {
	const maxAttempts = 2

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		reservation := newReservation(validated, uc.generateCode())

		created, err := uc.reservationRepo.Insert(ctx, reservation)
		if err == nil {
			return created, nil
		}

		if !errors.Is(err, reservationRepo.ErrDuplicateCode) {
			uc.logger.Error("CreateReservation: failed to insert reservation: %v", err)
			uc.observe(resultError)
			return nil, fmt.Errorf("%w: failed to insert reservation: %v", ErrInternal, err)
		}

		uc.logger.Warn("CreateReservation: confirmation code collision code=%s, attempt=%d", reservation.ConfirmationCode, attempt)
		lastErr = err
	}

	uc.observe(resultDuplicate)
	return nil, fmt.Errorf("%w: confirmation code collision after %d attempts: %v", ErrInternal, maxAttempts, lastErr)
}

func (uc *UseCase) observe(result string) {
	if uc.metrics != nil {
		uc.metrics.IncReservationCreated(result)
	}
}

// newReservation собирает запись со статусом pending
func newReservation(validated *ValidatedReservation, code string) *domain.Reservation {
	return &domain.Reservation{
		ConfirmationCode: code,
		GuestName:        validated.GuestName,
		GuestEmail:       validated.GuestEmail,
		GuestPhone:       validated.GuestPhone,
		PartySize:        validated.PartySize,
		ReservationDate:  validated.ReservationDate,
		ReservationTime:  validated.ReservationTime,
		DietaryNotes:     validated.DietaryNotes,
		SpecialRequests:  validated.SpecialRequests,
		Occasion:         validated.Occasion,
		Status:           domain.StatusPending,
	}
}
