package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/thesilo/reservations/internal/access"
	"github.com/thesilo/reservations/internal/domain"
	reservationRepo "github.com/thesilo/reservations/internal/infra/storage/reservation"
	"github.com/thesilo/reservations/internal/service/reservations/models"
	"github.com/thesilo/reservations/pkg/ptr"
)

// Service сервис жизненного цикла бронирований: поиск, смена статуса, отмена.
// Блокировок и версий нет, при параллельных изменениях побеждает последняя запись.
type Service struct {
	reservationRepo ReservationRepository
	notifier        Notifier
	metrics         Metrics
	location        *time.Location
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований.
// metrics может быть nil.
func NewService(
	reservationRepo ReservationRepository,
	notifier Notifier,
	metrics Metrics,
	location *time.Location,
	logger Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		reservationRepo: reservationRepo,
		notifier:        notifier,
		metrics:         metrics,
		location:        location,
		timeProvider:    realTimeProvider{},
		logger:          logger,
	}
}

// Lookup ищет бронирования.
// Персонал может не указывать фильтры и получить все записи по возрастанию даты.
// Гость обязан указать email или код; код имеет приоритет, остальные фильтры игнорируются.
func (s *Service) Lookup(ctx context.Context, caller access.Caller, req *models.LookupRequest) (*models.ReservationListResponse, error) {
	if !caller.IsStaff() {
		return s.lookupAsGuest(ctx, models.Identity{Email: req.Email, Code: req.Code})
	}

	filter, err := toDomainFilter(req)
	if err != nil {
		s.logger.Warn("Lookup: invalid filter: %v", err)
		return nil, err
	}

	reservations, err := s.reservationRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Lookup: repository error: %v", err)
		return nil, fmt.Errorf("%w: Lookup - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Lookup: staff fetched %d reservations", len(reservations))
	return models.FromDomainReservationList(reservations), nil
}

func (s *Service) lookupAsGuest(ctx context.Context, identity models.Identity) (*models.ReservationListResponse, error) {
	if identity.IsEmpty() {
		s.logger.Warn("Lookup: guest request without email or code")
		return nil, ErrMissingQuery
	}

	if code := identity.NormalizedCode(); code != "" {
		reservation, err := s.reservationRepo.FindByCode(ctx, code)
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Info("Lookup: no reservation for code=%s", code)
			return models.FromDomainReservationList(nil), nil
		}
		if err != nil {
			s.logger.Error("Lookup: repository error for code=%s: %v", code, err)
			return nil, fmt.Errorf("%w: Lookup - repository error: %v", ErrInternal, err)
		}
		return models.FromDomainReservationList([]*domain.Reservation{reservation}), nil
	}

	email := identity.NormalizedEmail()
	reservations, err := s.reservationRepo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Lookup: repository error for email=%s: %v", email, err)
		return nil, fmt.Errorf("%w: Lookup - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Lookup: guest fetched %d reservations for email=%s", len(reservations), email)
	return models.FromDomainReservationList(reservations), nil
}

// GetByID получает бронирование по ID.
// Гость должен подтвердить владение email или кодом.
func (s *Service) GetByID(ctx context.Context, caller access.Caller, id string, identity models.Identity) (*models.ReservationResponse, error) {
	if !caller.IsStaff() && identity.IsEmpty() {
		s.logger.Warn("GetByID: guest request without email or code for id=%s", id)
		return nil, ErrMissingQuery
	}

	reservation, err := s.getReservation(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !caller.IsStaff() && !identity.Matches(reservation) {
		s.logger.Warn("GetByID: identity mismatch for reservation id=%s", id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainReservation(reservation), nil
}

// SetStatus меняет статус бронирования. Доступно только персоналу.
// Из терминального статуса переходов нет; повторная установка текущего статуса ничего не меняет.
// Переход в cancelled выполняется как отмена (проставляется cancelled_at).
func (s *Service) SetStatus(ctx context.Context, caller access.Caller, id string, req *models.UpdateStatusRequest) (*models.ReservationResponse, error) {
	if !caller.IsStaff() {
		s.logger.Warn("SetStatus: non-staff caller for reservation id=%s", id)
		return nil, ErrUnauthorized
	}

	newStatus, ok := domain.ParseReservationStatus(strings.TrimSpace(req.Status))
	if !ok {
		s.logger.Warn("SetStatus: invalid status=%q for reservation id=%s", req.Status, id)
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	s.logger.Info("SetStatus: updating reservation id=%s to status=%s", id, newStatus)

	current, err := s.getReservation(ctx, "SetStatus", id)
	if err != nil {
		return nil, err
	}

	if current.Status == newStatus {
		s.logger.Info("SetStatus: reservation id=%s already has status=%s", id, newStatus)
		return models.FromDomainReservation(current), nil
	}

	if !current.Status.CanTransitionTo(newStatus) {
		s.logger.Warn("SetStatus: reservation id=%s is %s, cannot move to %s", id, current.Status, newStatus)
		return nil, fmt.Errorf("%w: %s", ErrTerminalStatus, current.Status)
	}

	if newStatus == domain.StatusCancelled {
		updated, err := s.cancel(ctx, "SetStatus", current, nil)
		if err != nil {
			return nil, err
		}
		return models.FromDomainReservation(updated), nil
	}

	updated, err := s.update(ctx, "SetStatus", id, domain.ReservationUpdate{Status: &newStatus})
	if err != nil {
		return nil, err
	}

	s.observeTransition(current.Status, newStatus)
	if event, ok := domain.EventForStatus(newStatus); ok {
		s.notifier.Notify(event, updated)
	}

	s.logger.Info("SetStatus: successfully updated reservation id=%s from %s to %s", id, current.Status, newStatus)
	return models.FromDomainReservation(updated), nil
}

// Cancel отменяет бронирование.
// Гость подтверждает владение email или кодом, персонал проверку пропускает.
// Повторная отмена уже отмененного бронирования успешна и ничего не меняет.
func (s *Service) Cancel(ctx context.Context, caller access.Caller, id string, req *models.CancelRequest) (*models.ReservationResponse, error) {
	if !caller.IsStaff() && req.Identity.IsEmpty() {
		s.logger.Warn("Cancel: guest request without email or code for id=%s", id)
		return nil, ErrMissingQuery
	}

	reason, err := normalizeReason(req.Reason)
	if err != nil {
		s.logger.Warn("Cancel: invalid reason for reservation id=%s: %v", id, err)
		return nil, err
	}

	s.logger.Info("Cancel: cancelling reservation id=%s, staff=%t", id, caller.IsStaff())

	current, err := s.getReservation(ctx, "Cancel", id)
	if err != nil {
		return nil, err
	}

	if !caller.IsStaff() && !req.Identity.Matches(current) {
		s.logger.Warn("Cancel: identity mismatch for reservation id=%s", id)
		return nil, ErrAccessDenied
	}

	if current.IsCancelled() {
		s.logger.Info("Cancel: reservation id=%s already cancelled", id)
		return models.FromDomainReservation(current), nil
	}

	if current.Status.IsTerminal() {
		s.logger.Warn("Cancel: reservation id=%s is %s, cannot be cancelled", id, current.Status)
		return nil, fmt.Errorf("%w: %s", ErrTerminalStatus, current.Status)
	}

	updated, err := s.cancel(ctx, "Cancel", current, reason)
	if err != nil {
		return nil, err
	}

	return models.FromDomainReservation(updated), nil
}

// Stats считает счетчики панели персонала
func (s *Service) Stats(ctx context.Context, caller access.Caller) (*models.StatsResponse, error) {
	if !caller.IsStaff() {
		s.logger.Warn("Stats: non-staff caller")
		return nil, ErrUnauthorized
	}

	reservations, err := s.reservationRepo.List(ctx, domain.ReservationFilter{})
	if err != nil {
		s.logger.Error("Stats: repository error: %v", err)
		return nil, fmt.Errorf("%w: Stats - repository error: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now().In(s.location)
	today := now.Format(domain.DateFormat)

	stats := &models.StatsResponse{Total: len(reservations)}
	for _, r := range reservations {
		if r.ReservationDate.Format(domain.DateFormat) == today {
			stats.Today++
		}
		if r.IsActive() && !r.StartsAt(s.location).Before(now) {
			stats.Upcoming++
		}
		switch r.Status {
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusConfirmed:
			stats.Confirmed++
		case domain.StatusCancelled:
			stats.Cancelled++
		}
	}

	return stats, nil
}

// Вспомогательные методы

func (s *Service) getReservation(ctx context.Context, op string, id string) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%s not found", op, id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return reservation, nil
}

func (s *Service) update(ctx context.Context, op string, id string, update domain.ReservationUpdate) (*domain.Reservation, error) {
	updated, err := s.reservationRepo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%s not found during update", op, id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return updated, nil
}

// cancel переводит бронирование в cancelled, проставляет cancelled_at и ставит уведомление в очередь
func (s *Service) cancel(ctx context.Context, op string, current *domain.Reservation, reason *string) (*domain.Reservation, error) {
	now := s.timeProvider.Now()

	updated, err := s.update(ctx, op, current.ID, domain.ReservationUpdate{
		Status:             ptr.Ptr(domain.StatusCancelled),
		CancelledAt:        &now,
		CancellationReason: reason,
	})
	if err != nil {
		return nil, err
	}

	s.observeTransition(current.Status, domain.StatusCancelled)
	s.notifier.Notify(domain.EventCancelled, updated)

	s.logger.Info("%s: successfully cancelled reservation id=%s", op, current.ID)
	return updated, nil
}

func (s *Service) observeTransition(from, to domain.ReservationStatus) {
	if s.metrics != nil {
		s.metrics.IncStatusTransition(string(from), string(to))
	}
}

// toDomainFilter конвертирует параметры поиска персонала в domain фильтр
func toDomainFilter(req *models.LookupRequest) (domain.ReservationFilter, error) {
	var filter domain.ReservationFilter

	if email := (models.Identity{Email: req.Email}).NormalizedEmail(); email != "" {
		filter.Email = &email
	}
	if code := (models.Identity{Code: req.Code}).NormalizedCode(); code != "" {
		filter.Code = &code
	}

	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		status, ok := domain.ParseReservationStatus(strings.TrimSpace(*req.Status))
		if !ok {
			return filter, fmt.Errorf("%w: status %q", ErrInvalidInput, *req.Status)
		}
		filter.Status = &status
	}

	from, err := parseDate("from", req.From)
	if err != nil {
		return filter, err
	}
	to, err := parseDate("to", req.To)
	if err != nil {
		return filter, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return filter, fmt.Errorf("%w: to is before from", ErrInvalidInput)
	}
	filter.FromDate = from
	filter.ToDate = to

	if req.Search != nil && strings.TrimSpace(*req.Search) != "" {
		filter.Search = ptr.Ptr(strings.TrimSpace(*req.Search))
	}

	return filter, nil
}

func parseDate(name string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	date, err := time.Parse(domain.DateFormat, strings.TrimSpace(*value))
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidInput, name)
	}
	return &date, nil
}

// normalizeReason обрезает пробелы; пустая причина превращается в nil
func normalizeReason(reason *string) (*string, error) {
	if reason == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*reason)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > domain.MaxReasonLength {
		return nil, fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}
	return &trimmed, nil
}
