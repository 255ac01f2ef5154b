package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

const timeLayout = "15:04"

var (
	// ErrInvalidTimeString возвращается, когда строка не соответствует формату HH:MM
	ErrInvalidTimeString = errors.New("invalid time string format")

	// ErrTimeOverflow возвращается, когда результат выходит за пределы суток
	ErrTimeOverflow = errors.New("time string overflows the day")
)

// TimeString время суток в формате HH:MM
// Хранится как количество минут от полуночи, чтобы сравнение и арифметика были тривиальными
type TimeString struct {
	minutes int
	valid   bool
}

// NewTimeString создает TimeString из часов и минут переданного времени
func NewTimeString(t time.Time) TimeString {
	return TimeString{minutes: t.Hour()*60 + t.Minute(), valid: true}
}

// NewTimeStringFromString парсит строку формата HH:MM
func NewTimeStringFromString(s string) (TimeString, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return TimeString{}, ErrInvalidTimeString
	}
	return NewTimeString(t), nil
}

// MustTimeString парсит строку и паникует при ошибке (для констант)
func MustTimeString(s string) TimeString {
	ts, err := NewTimeStringFromString(s)
	if err != nil {
		panic(fmt.Sprintf("types: invalid time string %q", s))
	}
	return ts
}

// IsZero возвращает true, если время не задано
func (t TimeString) IsZero() bool {
	return !t.valid
}

// Validate проверяет корректность значения
func (t TimeString) Validate() error {
	if !t.valid || t.minutes < 0 || t.minutes >= 24*60 {
		return ErrInvalidTimeString
	}
	return nil
}

// Hour возвращает часы
func (t TimeString) Hour() int {
	return t.minutes / 60
}

// Minute возвращает минуты
func (t TimeString) Minute() int {
	return t.minutes % 60
}

// AddMinutes возвращает новое время, сдвинутое на n минут
func (t TimeString) AddMinutes(n int) (TimeString, error) {
	m := t.minutes + n
	if m < 0 || m >= 24*60 {
		return TimeString{}, ErrTimeOverflow
	}
	return TimeString{minutes: m, valid: true}, nil
}

// IsBefore возвращает true, если t раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	return t.minutes < other.minutes
}

// IsAfter возвращает true, если t позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return t.minutes > other.minutes
}

// Equal возвращает true, если времена совпадают
func (t TimeString) Equal(other TimeString) bool {
	return t.valid == other.valid && t.minutes == other.minutes
}

// On возвращает момент времени: дата date (год, месяц, день) + время t в локации loc
func (t TimeString) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}

// String возвращает время в формате HH:MM
func (t TimeString) String() string {
	if !t.valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MarshalText реализует encoding.TextMarshaler
func (t TimeString) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText реализует encoding.TextUnmarshaler
func (t *TimeString) UnmarshalText(data []byte) error {
	parsed, err := NewTimeStringFromString(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value реализует driver.Valuer (колонка TIME в PostgreSQL)
func (t TimeString) Value() (driver.Value, error) {
	if !t.valid {
		return nil, nil
	}
	return t.String() + ":00", nil
}

// Scan реализует sql.Scanner
// lib/pq отдает TIME как строку "HH:MM:SS" или []byte, TIMESTAMP как time.Time
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = TimeString{}
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidTimeString, src)
	}
}

func (t *TimeString) scanString(s string) error {
	if len(s) >= 5 {
		s = s[:5]
	}
	parsed, err := NewTimeStringFromString(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
