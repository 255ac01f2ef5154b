package domain

// Business validation constants
const (
	MinPartySize           = 1
	MaxPartySize           = 20
	MaxNotesLength         = 500
	MaxNameLength          = 120
	MaxEmailLength         = 254
	MaxPhoneLength         = 32
	MaxReasonLength        = 500
	ConfirmationCodePrefix = "SILO"
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// DefaultTimezone часовой пояс ресторана по умолчанию
const DefaultTimezone = "Asia/Karachi"

// AllStatuses все известные статусы бронирования
var AllStatuses = []ReservationStatus{
	StatusPending,
	StatusConfirmed,
	StatusSeated,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

// TerminalStatuses статусы, из которых переходы запрещены
var TerminalStatuses = []ReservationStatus{
	StatusCancelled,
	StatusCompleted,
	StatusNoShow,
}
