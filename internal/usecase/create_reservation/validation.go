package create_reservation

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/thesilo/reservations/internal/domain"
	"github.com/thesilo/reservations/pkg/ptr"
	"github.com/thesilo/reservations/pkg/types"
)

const (
	codeAlphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeRandomLength = 4
)

// emailPattern форма local@domain.tld без пробелов
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validator проверяет и нормализует запрос на бронирование.
// schedule == nil отключает проверку слотов расписания.
type Validator struct {
	location     *time.Location
	schedule     *domain.ServiceSchedule
	timeProvider TimeProvider
}

// NewValidator создает валидатор для часового пояса ресторана
func NewValidator(location *time.Location, schedule *domain.ServiceSchedule, timeProvider TimeProvider) *Validator {
	if location == nil {
		location = time.UTC
	}
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	return &Validator{
		location:     location,
		schedule:     schedule,
		timeProvider: timeProvider,
	}
}

// Validate проверяет запрос; дата и время должны быть строго позже текущего момента
func (v *Validator) Validate(req *Request) (*ValidatedReservation, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is empty", ErrMissingField)
	}

	name := strings.TrimSpace(req.GuestName)
	email := strings.ToLower(strings.TrimSpace(req.GuestEmail))
	phone := strings.TrimSpace(req.GuestPhone)
	dateRaw := strings.TrimSpace(req.ReservationDate)
	timeRaw := strings.TrimSpace(req.ReservationTime)

	missing := make([]string, 0)
	if name == "" {
		missing = append(missing, "guest_name")
	}
	if email == "" {
		missing = append(missing, "guest_email")
	}
	if phone == "" {
		missing = append(missing, "guest_phone")
	}
	if req.PartySize == nil {
		missing = append(missing, "party_size")
	}
	if dateRaw == "" {
		missing = append(missing, "reservation_date")
	}
	if timeRaw == "" {
		missing = append(missing, "reservation_time")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	if utf8.RuneCountInString(name) > domain.MaxNameLength {
		return nil, fmt.Errorf("%w: guest_name exceeds %d characters", ErrFieldTooLong, domain.MaxNameLength)
	}
	if utf8.RuneCountInString(phone) > domain.MaxPhoneLength {
		return nil, fmt.Errorf("%w: guest_phone exceeds %d characters", ErrFieldTooLong, domain.MaxPhoneLength)
	}

	if len(email) > domain.MaxEmailLength || !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	partySize := *req.PartySize
	if partySize < domain.MinPartySize || partySize > domain.MaxPartySize {
		return nil, fmt.Errorf("%w: must be between %d and %d, got %d",
			ErrInvalidPartySize, domain.MinPartySize, domain.MaxPartySize, partySize)
	}

	date, err := time.ParseInLocation(domain.DateFormat, dateRaw, v.location)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrInvalidOrPastDateTime, dateRaw)
	}

	startTime, err := parseTime(timeRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid time %q", ErrInvalidOrPastDateTime, timeRaw)
	}

	now := v.timeProvider.Now()
	if !startTime.On(date, v.location).After(now) {
		return nil, fmt.Errorf("%w: %s %s is not in the future", ErrInvalidOrPastDateTime, dateRaw, startTime)
	}

	if v.schedule != nil && !v.schedule.IsServiceSlot(date, startTime) {
		return nil, fmt.Errorf("%w: %s on %s", ErrInvalidTimeSlot, startTime, date.Weekday())
	}

	dietaryNotes, err := normalizeText("dietary_notes", req.DietaryNotes)
	if err != nil {
		return nil, err
	}
	specialRequests, err := normalizeText("special_requests", req.SpecialRequests)
	if err != nil {
		return nil, err
	}
	occasion, err := normalizeText("occasion", req.Occasion)
	if err != nil {
		return nil, err
	}

	return &ValidatedReservation{
		GuestName:       name,
		GuestEmail:      email,
		GuestPhone:      phone,
		PartySize:       partySize,
		ReservationDate: date,
		ReservationTime: startTime,
		DietaryNotes:    dietaryNotes,
		SpecialRequests: specialRequests,
		Occasion:        occasion,
	}, nil
}

// GenerateConfirmationCode генерирует код вида SILO + base36(unix ms) + 4 случайных символа.
// Уникальность не гарантируется, дубликат обрабатывается при вставке.
func GenerateConfirmationCode(now time.Time) string {
	var sb strings.Builder
	sb.WriteString(domain.ConfirmationCodePrefix)
	sb.WriteString(strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))

	alphabetSize := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeRandomLength; i++ {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			// crypto/rand не возвращает ошибок на поддерживаемых платформах
			n = big.NewInt(now.UnixNano() % int64(len(codeAlphabet)))
		}
		sb.WriteByte(codeAlphabet[n.Int64()])
	}

	return sb.String()
}

// parseTime принимает HH:MM и HH:MM:SS (секунды отбрасываются)
func parseTime(s string) (types.TimeString, error) {
	if len(s) == len("15:04:05") {
		if _, err := time.Parse("15:04:05", s); err != nil {
			return types.TimeString{}, err
		}
		s = s[:len("15:04")]
	}
	return types.NewTimeStringFromString(s)
}

// normalizeText обрезает пробелы; пустая строка превращается в nil
func normalizeText(field string, value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}

	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil, nil
	}

	if utf8.RuneCountInString(trimmed) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: %s exceeds %d characters", ErrNotesTooLong, field, domain.MaxNotesLength)
	}

	return ptr.Ptr(trimmed), nil
}
