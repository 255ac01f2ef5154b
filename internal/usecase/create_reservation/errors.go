package create_reservation

import "errors"

var (
	// ErrMissingField возвращается, когда обязательное поле отсутствует или пустое
	ErrMissingField = errors.New("create_reservation: missing required field")

	// ErrInvalidEmail возвращается при некорректном email гостя
	ErrInvalidEmail = errors.New("create_reservation: invalid email address")

	// ErrInvalidPartySize возвращается, когда количество гостей вне диапазона 1..20
	ErrInvalidPartySize = errors.New("create_reservation: invalid party size")

	// ErrInvalidOrPastDateTime возвращается, когда дата и время некорректны или не в будущем
	ErrInvalidOrPastDateTime = errors.New("create_reservation: invalid or past date and time")

	// ErrInvalidTimeSlot возвращается, когда время не совпадает ни с одним слотом расписания
	ErrInvalidTimeSlot = errors.New("create_reservation: time is not a service slot")

	// ErrFieldTooLong возвращается, когда имя или телефон длиннее колонки
	ErrFieldTooLong = errors.New("create_reservation: guest field is too long")

	// ErrNotesTooLong возвращается, когда текстовое поле превышает допустимую длину
	ErrNotesTooLong = errors.New("create_reservation: text field is too long")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)
