package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/thesilo/reservations/internal/domain"
	"github.com/thesilo/reservations/pkg/psqlbuilder"
)

const (
	tableName = "reservations"

	// confirmationCodeConstraint имя UNIQUE ограничения из миграции 00001
	confirmationCodeConstraint = "reservations_confirmation_code_key"

	// pgUniqueViolation код ошибки PostgreSQL unique_violation
	pgUniqueViolation = "23505"
)

// columns порядок колонок должен совпадать с scanReservation
var columns = []string{
	"id",
	"confirmation_code",
	"guest_name",
	"guest_email",
	"guest_phone",
	"party_size",
	"reservation_date",
	"reservation_time",
	"dietary_notes",
	"special_requests",
	"occasion",
	"status",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Insert сохраняет новое бронирование.
// ID генерируется здесь, если не задан; created_at и updated_at проставляет БД.
// При совпадении кода подтверждения возвращает ErrDuplicateCode.
func (r *Repository) Insert(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"id",
			"confirmation_code",
			"guest_name",
			"guest_email",
			"guest_phone",
			"party_size",
			"reservation_date",
			"reservation_time",
			"dietary_notes",
			"special_requests",
			"occasion",
			"status",
		).
		Values(
			reservation.ID,
			reservation.ConfirmationCode,
			reservation.GuestName,
			reservation.GuestEmail,
			reservation.GuestPhone,
			reservation.PartySize,
			reservation.ReservationDate.Format(domain.DateFormat),
			reservation.ReservationTime,
			reservation.DietaryNotes,
			reservation.SpecialRequests,
			reservation.Occasion,
			reservation.Status,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Insert - build insert query: %v", ErrBuildQuery, err)
	}

	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		if isDuplicateCode(err) {
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("%w: Insert - execute insert: %v", ErrExecQuery, err)
	}

	return reservation, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	// Некорректный UUID в PostgreSQL дает ошибку приведения типа, а не пустой результат
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrReservationNotFound
	}

	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// FindByCode получает бронирование по коду подтверждения
func (r *Repository) FindByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	return r.getOne(ctx, "FindByCode", squirrel.Eq{"confirmation_code": code})
}

// FindByEmail получает все бронирования гостя (в любом статусе)
func (r *Repository) FindByEmail(ctx context.Context, email string) ([]*domain.Reservation, error) {
	query, args, err := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"guest_email": email}).
		OrderBy("reservation_date ASC", "reservation_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindByEmail - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindByEmail - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// List получает бронирования для персонала с опциональной фильтрацией.
// Сортировка по дате и времени бронирования по возрастанию.
//
// Примеры:
//
//  1. Все бронирования:
//     filter := domain.ReservationFilter{}
//
//  2. Бронирования на сегодня:
//     filter := domain.ReservationFilter{FromDate: &today, ToDate: &today}
//
//  3. Поиск по имени или коду:
//     filter := domain.ReservationFilter{Search: ptr.Ptr("jane")}
func (r *Repository) List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	query, args, err := listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// Update обновляет изменяемые поля бронирования и всегда проставляет updated_at.
// Возвращает обновленную запись.
func (r *Repository) Update(ctx context.Context, id string, update domain.ReservationUpdate) (*domain.Reservation, error) {
	if update.IsEmpty() {
		return nil, ErrEmptyUpdate
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrReservationNotFound
	}

	query, args, err := updateQuery(id, update).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	reservation, err := scanReservation(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - scan reservation: %v", ErrScanRow, err)
	}

	return reservation, nil
}

// Ping проверяет доступность хранилища
func (r *Repository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("%w: Ping: %v", ErrExecQuery, err)
	}
	return nil
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (*domain.Reservation, error) {
	query, args, err := psqlbuilder.Select(columns...).
		From(tableName).
		Where(where).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	reservation, err := scanReservation(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan reservation: %v", ErrScanRow, op, err)
	}

	return reservation, nil
}

// listQuery строит запрос выборки по фильтру
func listQuery(filter domain.ReservationFilter) squirrel.SelectBuilder {
	selectBuilder := psqlbuilder.Select(columns...).From(tableName)

	if filter.Email != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"guest_email": *filter.Email})
	}
	if filter.Code != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"confirmation_code": *filter.Code})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.FromDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"reservation_date": filter.FromDate.Format(domain.DateFormat)})
	}
	if filter.ToDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"reservation_date": filter.ToDate.Format(domain.DateFormat)})
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		pattern := "%" + escapeLike(strings.TrimSpace(*filter.Search)) + "%"
		selectBuilder = selectBuilder.Where(squirrel.Or{
			squirrel.ILike{"guest_name": pattern},
			squirrel.ILike{"confirmation_code": pattern},
		})
	}

	return selectBuilder.OrderBy("reservation_date ASC", "reservation_time ASC", "created_at ASC")
}

// updateQuery строит UPDATE только по изменяемым полям
func updateQuery(id string, update domain.ReservationUpdate) squirrel.UpdateBuilder {
	updateBuilder := psqlbuilder.Update(tableName)

	if update.Status != nil {
		updateBuilder = updateBuilder.Set("status", *update.Status)
	}
	if update.CancelledAt != nil {
		updateBuilder = updateBuilder.Set("cancelled_at", *update.CancelledAt)
	}
	if update.CancellationReason != nil {
		updateBuilder = updateBuilder.Set("cancellation_reason", *update.CancellationReason)
	}
	if update.DietaryNotes != nil {
		updateBuilder = updateBuilder.Set("dietary_notes", *update.DietaryNotes)
	}
	if update.SpecialRequests != nil {
		updateBuilder = updateBuilder.Set("special_requests", *update.SpecialRequests)
	}
	if update.Occasion != nil {
		updateBuilder = updateBuilder.Set("occasion", *update.Occasion)
	}

	return updateBuilder.
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(columns, ", "))
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanReservation сканирует одну строку в бронирование
func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var reservation domain.Reservation

	err := row.Scan(
		&reservation.ID,
		&reservation.ConfirmationCode,
		&reservation.GuestName,
		&reservation.GuestEmail,
		&reservation.GuestPhone,
		&reservation.PartySize,
		&reservation.ReservationDate,
		&reservation.ReservationTime,
		&reservation.DietaryNotes,
		&reservation.SpecialRequests,
		&reservation.Occasion,
		&reservation.Status,
		&reservation.CancellationReason,
		&reservation.CancelledAt,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &reservation, nil
}

// scanReservations сканирует результаты запроса в слайс бронирований
func scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %v", ErrScanRow, err)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %v", ErrScanRow, err)
	}

	return reservations, nil
}

// isDuplicateCode проверяет, что ошибка - нарушение уникальности кода подтверждения
func isDuplicateCode(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pgUniqueViolation && pqErr.Constraint == confirmationCodeConstraint
}

// escapeLike экранирует спецсимволы шаблона LIKE
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
