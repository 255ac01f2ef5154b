package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesilo/reservations/internal/domain"
)

func TestRenderer_ManageURL(t *testing.T) {
	r := NewRenderer("http://localhost:3000/", "The Silo", "")

	assert.Equal(t, "http://localhost:3000/dashboard?code=SILOABC", r.ManageURL("SILOABC"))
}

func TestRenderer_GuestEscapesInput(t *testing.T) {
	r := NewRenderer("http://localhost:3000", "The Silo", "")
	reservation := testReservation()
	reservation.GuestName = `<script>alert("x")</script>`

	msg, err := r.Guest(domain.EventCreated, reservation)
	require.NoError(t, err)

	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Contains(t, msg.HTML, "has been received")
	assert.NotContains(t, msg.HTML, "<hr")
}

func TestRenderer_SubjectsPerEvent(t *testing.T) {
	r := NewRenderer("http://localhost:3000", "The Silo", "footer")

	tests := []struct {
		event   domain.ReservationEvent
		subject string
		action  string
	}{
		{domain.EventCreated, "Reservation Received - SILOMGWX1ABCD", "NEW RESERVATION"},
		{domain.EventConfirmed, "Reservation Confirmed - SILOMGWX1ABCD", "CONFIRMATION"},
		{domain.EventCancelled, "Reservation Cancelled - SILOMGWX1ABCD", "CANCELLATION"},
	}

	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			guest, err := r.Guest(tt.event, testReservation())
			require.NoError(t, err)
			assert.Equal(t, tt.subject, guest.Subject)
			assert.Contains(t, guest.HTML, "footer")

			operator, err := r.Operator(tt.event, testReservation())
			require.NoError(t, err)
			assert.Contains(t, operator.HTML, tt.action)
			assert.Contains(t, operator.HTML, "jane@x.com")
		})
	}
}
