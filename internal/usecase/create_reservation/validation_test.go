package create_reservation

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesilo/reservations/internal/domain"
	"github.com/thesilo/reservations/pkg/ptr"
)

var karachi = time.FixedZone("PKT", 5*60*60)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

// 2026-10-19 (понедельник) 12:00 по времени ресторана
func testNow() time.Time {
	return time.Date(2026, time.October, 19, 12, 0, 0, 0, karachi)
}

func validRequest() *Request {
	return &Request{
		GuestName:       "Jane Doe",
		GuestEmail:      "jane@x.com",
		GuestPhone:      "03001234567",
		PartySize:       ptr.Ptr(4),
		ReservationDate: "2026-10-20",
		ReservationTime: "19:00",
	}
}

func newTestValidator(schedule *domain.ServiceSchedule) *Validator {
	return NewValidator(karachi, schedule, fixedClock{now: testNow()})
}

func TestValidator_Valid(t *testing.T) {
	req := validRequest()
	req.GuestName = "  Jane Doe "
	req.GuestEmail = "  Jane@X.COM "
	req.DietaryNotes = ptr.Ptr("  no nuts  ")
	req.SpecialRequests = ptr.Ptr("   ")

	got, err := newTestValidator(nil).Validate(req)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", got.GuestName)
	assert.Equal(t, "jane@x.com", got.GuestEmail)
	assert.Equal(t, 4, got.PartySize)
	assert.Equal(t, "2026-10-20", got.ReservationDate.Format(domain.DateFormat))
	assert.Equal(t, "19:00", got.ReservationTime.String())
	assert.Equal(t, "no nuts", *got.DietaryNotes)
	assert.Nil(t, got.SpecialRequests)
	assert.Nil(t, got.Occasion)
}

func TestValidator_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
		field  string
	}{
		{"name", func(r *Request) { r.GuestName = "   " }, "guest_name"},
		{"email", func(r *Request) { r.GuestEmail = "" }, "guest_email"},
		{"phone", func(r *Request) { r.GuestPhone = " " }, "guest_phone"},
		{"party size", func(r *Request) { r.PartySize = nil }, "party_size"},
		{"date", func(r *Request) { r.ReservationDate = "" }, "reservation_date"},
		{"time", func(r *Request) { r.ReservationTime = "" }, "reservation_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := newTestValidator(nil).Validate(req)
			assert.ErrorIs(t, err, ErrMissingField)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidator_InvalidEmail(t *testing.T) {
	longEmail := strings.Repeat("a", domain.MaxEmailLength) + "@x.com"
	for _, email := range []string{"jane", "jane@x", "@x.com", "jane doe@x.com", "jane@@x.com", longEmail} {
		req := validRequest()
		req.GuestEmail = email

		_, err := newTestValidator(nil).Validate(req)
		assert.ErrorIs(t, err, ErrInvalidEmail, email)
	}
}

func TestValidator_PartySize(t *testing.T) {
	tests := []struct {
		size    int
		wantErr bool
	}{
		{size: 0, wantErr: true},
		{size: 21, wantErr: true},
		{size: -3, wantErr: true},
		{size: 1, wantErr: false},
		{size: 20, wantErr: false},
	}

	for _, tt := range tests {
		req := validRequest()
		req.PartySize = ptr.Ptr(tt.size)

		_, err := newTestValidator(nil).Validate(req)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidPartySize, "size=%d", tt.size)
		} else {
			assert.NoError(t, err, "size=%d", tt.size)
		}
	}
}

func TestValidator_DateTimeMustBeStrictlyInFuture(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		time    string
		wantErr bool
	}{
		{name: "one minute ahead", date: "2026-10-19", time: "12:01", wantErr: false},
		{name: "same instant", date: "2026-10-19", time: "12:00", wantErr: true},
		{name: "one minute ago", date: "2026-10-19", time: "11:59", wantErr: true},
		{name: "yesterday", date: "2026-10-18", time: "19:00", wantErr: true},
		{name: "impossible date", date: "2026-02-30", time: "19:00", wantErr: true},
		{name: "bad date format", date: "20/10/2026", time: "19:00", wantErr: true},
		{name: "bad time", date: "2026-10-20", time: "25:00", wantErr: true},
		{name: "seconds are accepted", date: "2026-10-20", time: "19:00:00", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.ReservationDate = tt.date
			req.ReservationTime = tt.time

			_, err := newTestValidator(nil).Validate(req)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOrPastDateTime)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_ServiceSlots(t *testing.T) {
	schedule := domain.DefaultServiceSchedule()
	validator := newTestValidator(&schedule)

	req := validRequest()
	req.ReservationTime = "12:30" // вторник, обеда нет
	_, err := validator.Validate(req)
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)

	req = validRequest()
	req.ReservationDate = "2026-10-24" // суббота
	req.ReservationTime = "12:30"
	_, err = validator.Validate(req)
	assert.NoError(t, err)

	req = validRequest()
	req.ReservationTime = "19:15"
	_, err = validator.Validate(req)
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)
}

func TestValidator_EmailAtColumnLimit(t *testing.T) {
	req := validRequest()
	req.GuestEmail = strings.Repeat("a", domain.MaxEmailLength-len("@x.com")) + "@x.com"

	got, err := newTestValidator(nil).Validate(req)
	require.NoError(t, err)
	assert.Len(t, got.GuestEmail, domain.MaxEmailLength)
}

func TestValidator_GuestFieldsTooLong(t *testing.T) {
	req := validRequest()
	req.GuestName = strings.Repeat("a", domain.MaxNameLength+1)

	_, err := newTestValidator(nil).Validate(req)
	assert.ErrorIs(t, err, ErrFieldTooLong)
	assert.NotErrorIs(t, err, ErrNotesTooLong)

	req = validRequest()
	req.GuestPhone = strings.Repeat("1", domain.MaxPhoneLength+1)

	_, err = newTestValidator(nil).Validate(req)
	assert.ErrorIs(t, err, ErrFieldTooLong)
}

func TestValidator_NotesTooLong(t *testing.T) {
	req := validRequest()
	req.Occasion = ptr.Ptr(strings.Repeat("a", domain.MaxNotesLength+1))

	_, err := newTestValidator(nil).Validate(req)
	assert.ErrorIs(t, err, ErrNotesTooLong)

	req.Occasion = ptr.Ptr(strings.Repeat("a", domain.MaxNotesLength))
	_, err = newTestValidator(nil).Validate(req)
	assert.NoError(t, err)
}

func TestGenerateConfirmationCode(t *testing.T) {
	pattern := regexp.MustCompile(`^SILO[A-Z0-9]+$`)
	now := testNow()

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code := GenerateConfirmationCode(now)
		assert.Regexp(t, pattern, code)
		seen[code] = struct{}{}
	}

	// одинаковый момент времени, различие только в случайной части
	assert.Greater(t, len(seen), 150)

	timePart := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	code := GenerateConfirmationCode(now)
	assert.True(t, strings.HasPrefix(code, "SILO"+timePart))
	assert.Len(t, code, len("SILO")+len(timePart)+codeRandomLength)
}
