package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_CountersAndHandler(t *testing.T) {
	m := New("silo-reservations")

	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/reservations", http.StatusCreated, 15*time.Millisecond)
	m.IncReservationCreated("success")
	m.IncStatusTransition("pending", "confirmed")
	m.IncNotification("confirmed", "guest", "sent")
	m.IncNotificationDropped()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.reservationsCreated.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusTransitions.WithLabelValues("pending", "confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationsDropped))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "silo_reservations_http_requests_total")
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.IncReservationCreated("success")
		m.IncStatusTransition("pending", "cancelled")
		m.IncNotification("created", "operator", "failed")
		m.IncNotificationDropped()
		m.ObserveDBQuery("insert", time.Millisecond)
		m.SetDBConnections(1, 1, 0)
		m.IncRateLimited("/api/v1/reservations")
	})
}
