package reservation

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation.repository: reservation not found")

	// ErrDuplicateCode возвращается при нарушении уникальности кода подтверждения
	ErrDuplicateCode = errors.New("reservation.repository: duplicate confirmation code")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")

	// ErrEmptyUpdate возвращается при попытке обновления без изменяемых полей
	ErrEmptyUpdate = errors.New("reservation.repository: nothing to update")
)
