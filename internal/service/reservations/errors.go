package reservations

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservations: reservation not found")

	// ErrMissingQuery возвращается, когда гость не указал email или код подтверждения
	ErrMissingQuery = errors.New("reservations: email or confirmation code required")

	// ErrUnauthorized возвращается, когда операция доступна только персоналу
	ErrUnauthorized = errors.New("reservations: staff access required")

	// ErrAccessDenied возвращается, когда гость не подтвердил владение бронированием
	ErrAccessDenied = errors.New("reservations: access denied")

	// ErrInvalidStatus возвращается при неизвестном статусе
	ErrInvalidStatus = errors.New("reservations: invalid reservation status")

	// ErrTerminalStatus возвращается при попытке изменить терминальный статус
	ErrTerminalStatus = errors.New("reservations: reservation is in a terminal status")

	// ErrInvalidInput возвращается при некорректных параметрах фильтра или запроса
	ErrInvalidInput = errors.New("reservations: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("reservations: internal error")
)
