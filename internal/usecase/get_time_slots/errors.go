package get_time_slots

import "errors"

var (
	// ErrInvalidInput возвращается при отсутствующей или некорректной дате
	ErrInvalidInput = errors.New("get_time_slots: invalid input data")

	// ErrDateInPast возвращается, когда дата раньше сегодняшней в часовом поясе ресторана
	ErrDateInPast = errors.New("get_time_slots: date is in the past")
)
