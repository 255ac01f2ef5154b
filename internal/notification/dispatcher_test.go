package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesilo/reservations/internal/domain"
	"github.com/thesilo/reservations/pkg/logger"
	"github.com/thesilo/reservations/pkg/ptr"
	"github.com/thesilo/reservations/pkg/types"
)

type sentMessage struct {
	to      []string
	subject string
	html    string
}

type fakeSendError struct {
	temporary bool
}

func (e *fakeSendError) Error() string {
	if e.temporary {
		return "resend: 503"
	}
	return "resend: 422 invalid recipient"
}

func (e *fakeSendError) Temporary() bool {
	return e.temporary
}

// fakeSender отклоняет первые failFirst отправок на адрес failFor (или на любой, если он пуст).
// permanent делает ошибку неповторяемой.
type fakeSender struct {
	mu        sync.Mutex
	sent      []sentMessage
	calls     int
	failFor   string
	failFirst int
	permanent bool
}

func (s *fakeSender) Send(_ context.Context, to []string, subject, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.failFirst > 0 && (s.failFor == "" || s.failFor == to[0]) {
		s.failFirst--
		return fmt.Errorf("send: %w", &fakeSendError{temporary: !s.permanent})
	}
	s.sent = append(s.sent, sentMessage{to: to, subject: subject, html: html})
	return nil
}

func (s *fakeSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.ReservationEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, event domain.ReservationEvent, _ *domain.Reservation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type fakeMetrics struct {
	mu      sync.Mutex
	results map[string]int
	dropped int
}

func (m *fakeMetrics) IncNotification(event, recipient, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.results == nil {
		m.results = make(map[string]int)
	}
	m.results[event+"/"+recipient+"/"+result]++
}

func (m *fakeMetrics) IncNotificationDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped++
}

func testReservation() *domain.Reservation {
	return &domain.Reservation{
		ID:               "7d8f0f5e-8a4b-4c9e-9f0d-2b1f5c1e2a3b",
		ConfirmationCode: "SILOMGWX1ABCD",
		GuestName:        "Jane Doe",
		GuestEmail:       "jane@x.com",
		GuestPhone:       "03001234567",
		PartySize:        4,
		ReservationDate:  time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC),
		ReservationTime:  types.MustTimeString("19:00"),
		DietaryNotes:     ptr.Ptr("no nuts"),
		Status:           domain.StatusPending,
	}
}

func testConfig() Config {
	return Config{
		Workers:       2,
		QueueSize:     10,
		MaxAttempts:   3,
		RetryBackoff:  time.Millisecond,
		SendTimeout:   time.Second,
		OperatorEmail: "ops@thesilo.pk",
	}
}

func newTestDispatcher(cfg Config, sender Sender, publisher Publisher, metrics Metrics) *Dispatcher {
	renderer := NewRenderer("https://thesilo.pk/", "The Silo", "The Silo Restaurant, Clifton, Karachi.")
	return NewDispatcher(cfg, renderer, sender, publisher, metrics, logger.NewNop())
}

func TestDispatcher_Deliver_GuestAndOperator(t *testing.T) {
	sender := &fakeSender{}
	metrics := &fakeMetrics{}
	d := newTestDispatcher(testConfig(), sender, nil, metrics)

	outcome := d.Deliver(context.Background(), domain.EventConfirmed, testReservation())
	require.True(t, outcome.OK())

	messages := sender.messages()
	require.Len(t, messages, 2)

	guest := messages[0]
	assert.Equal(t, []string{"jane@x.com"}, guest.to)
	assert.Equal(t, "Reservation Confirmed - SILOMGWX1ABCD", guest.subject)
	assert.Contains(t, guest.html, "SILOMGWX1ABCD")
	assert.Contains(t, guest.html, "2026-10-20")
	assert.Contains(t, guest.html, "19:00")
	assert.Contains(t, guest.html, "<strong>Guests:</strong> 4")
	assert.Contains(t, guest.html, "https://thesilo.pk/dashboard?code=SILOMGWX1ABCD")

	operator := messages[1]
	assert.Equal(t, []string{"ops@thesilo.pk"}, operator.to)
	assert.Equal(t, "[ADMIN] Reservation Confirmed - SILOMGWX1ABCD - Jane Doe", operator.subject)
	assert.Contains(t, operator.html, "CONFIRMATION")
	assert.Contains(t, operator.html, "no nuts")

	assert.Equal(t, 1, metrics.results["confirmed/guest/sent"])
	assert.Equal(t, 1, metrics.results["confirmed/operator/sent"])
}

func TestDispatcher_Deliver_RecipientsAreIndependent(t *testing.T) {
	sender := &fakeSender{failFor: "jane@x.com", failFirst: 100}
	metrics := &fakeMetrics{}
	d := newTestDispatcher(testConfig(), sender, nil, metrics)

	outcome := d.Deliver(context.Background(), domain.EventCreated, testReservation())

	assert.Error(t, outcome.GuestErr)
	assert.NoError(t, outcome.OperatorErr)
	assert.False(t, outcome.OK())

	messages := sender.messages()
	require.Len(t, messages, 1)
	assert.Equal(t, []string{"ops@thesilo.pk"}, messages[0].to)

	assert.Equal(t, 4, sender.calls) // 3 попытки гостю и 1 оператору
	assert.Equal(t, 1, metrics.results["created/guest/failed"])
}

func TestDispatcher_Deliver_RetriesUntilSuccess(t *testing.T) {
	sender := &fakeSender{failFor: "jane@x.com", failFirst: 2}
	d := newTestDispatcher(testConfig(), sender, nil, nil)

	outcome := d.Deliver(context.Background(), domain.EventCancelled, testReservation())

	assert.True(t, outcome.OK())
	assert.Equal(t, 4, sender.calls)
	assert.Len(t, sender.messages(), 2)
}

func TestDispatcher_Deliver_PermanentErrorIsNotRetried(t *testing.T) {
	sender := &fakeSender{failFor: "jane@x.com", failFirst: 100, permanent: true}
	metrics := &fakeMetrics{}
	d := newTestDispatcher(testConfig(), sender, nil, metrics)

	outcome := d.Deliver(context.Background(), domain.EventConfirmed, testReservation())

	assert.Error(t, outcome.GuestErr)
	assert.NoError(t, outcome.OperatorErr)
	assert.Equal(t, 2, sender.calls) // 1 попытка гостю и 1 оператору
	assert.Equal(t, 1, metrics.results["confirmed/guest/failed"])
}

func TestIsTemporary(t *testing.T) {
	assert.True(t, isTemporary(fmt.Errorf("wrapped: %w", &fakeSendError{temporary: true})))
	assert.False(t, isTemporary(&fakeSendError{temporary: false}))
	assert.False(t, isTemporary(errors.New("plain")))
	assert.False(t, isTemporary(nil))
}

func TestDispatcher_Deliver_NoOperatorConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.OperatorEmail = ""
	sender := &fakeSender{}
	d := newTestDispatcher(cfg, sender, nil, nil)

	outcome := d.Deliver(context.Background(), domain.EventCreated, testReservation())

	assert.True(t, outcome.OK())
	assert.Len(t, sender.messages(), 1)
}

func TestDispatcher_Deliver_PublishesEvent(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("channel closed")}
	d := newTestDispatcher(testConfig(), &fakeSender{}, publisher, nil)

	outcome := d.Deliver(context.Background(), domain.EventCreated, testReservation())

	assert.NoError(t, outcome.GuestErr)
	assert.Error(t, outcome.PublishErr)
	assert.Equal(t, []domain.ReservationEvent{domain.EventCreated}, publisher.events)
}

func TestDispatcher_Deliver_UnknownEvent(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(testConfig(), sender, nil, nil)

	outcome := d.Deliver(context.Background(), domain.ReservationEvent("seated"), testReservation())

	assert.ErrorIs(t, outcome.GuestErr, ErrUnknownEvent)
	assert.ErrorIs(t, outcome.OperatorErr, ErrUnknownEvent)
	assert.Empty(t, sender.messages())
}

func TestDispatcher_NotifyDropsWhenQueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.QueueSize = 1
	metrics := &fakeMetrics{}
	d := newTestDispatcher(cfg, &fakeSender{}, nil, metrics)

	// воркеры не запущены, очередь вмещает одно событие
	d.Notify(domain.EventCreated, testReservation())
	d.Notify(domain.EventCreated, testReservation())
	d.Notify(domain.EventCreated, testReservation())

	assert.Equal(t, 2, metrics.dropped)
}

func TestDispatcher_StartStopDrainsQueue(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(testConfig(), sender, nil, nil)

	d.Start(context.Background())
	for i := 0; i < 3; i++ {
		d.Notify(domain.EventCreated, testReservation())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	assert.Len(t, sender.messages(), 6)

	// после остановки события отбрасываются
	metrics := &fakeMetrics{}
	d.metrics = metrics
	d.Notify(domain.EventCreated, testReservation())
	assert.Equal(t, 1, metrics.dropped)
	assert.NoError(t, d.Stop(ctx))
}

func TestDispatcher_NotifyCopiesReservation(t *testing.T) {
	sender := &fakeSender{}
	cfg := testConfig()
	cfg.OperatorEmail = ""
	d := newTestDispatcher(cfg, sender, nil, nil)

	reservation := testReservation()
	d.Notify(domain.EventCreated, reservation)
	reservation.GuestEmail = "changed@x.com"

	d.Start(context.Background())
	require.NoError(t, d.Stop(context.Background()))

	messages := sender.messages()
	require.Len(t, messages, 1)
	assert.Equal(t, []string{"jane@x.com"}, messages[0].to)
}
