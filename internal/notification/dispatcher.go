// Package notification отправляет письма гостю и оператору о событиях бронирований.
// Доставка идет в фоне через очередь и никогда не влияет на результат операции.
package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/thesilo/reservations/internal/domain"
)

const (
	recipientGuest    = "guest"
	recipientOperator = "operator"

	resultSent    = "sent"
	resultFailed  = "failed"
	resultSkipped = "skipped"
)

// Config параметры диспетчера
type Config struct {
	Workers       int
	QueueSize     int
	MaxAttempts   int
	RetryBackoff  time.Duration
	SendTimeout   time.Duration
	OperatorEmail string
}

// Outcome результат доставки одного события
type Outcome struct {
	Event       domain.ReservationEvent
	GuestErr    error
	OperatorErr error
	PublishErr  error
}

// OK returns true if every attempted delivery succeeded
func (o Outcome) OK() bool {
	return o.GuestErr == nil && o.OperatorErr == nil && o.PublishErr == nil
}

type job struct {
	event       domain.ReservationEvent
	reservation domain.Reservation
}

// Dispatcher очередь уведомлений с пулом воркеров
type Dispatcher struct {
	cfg       Config
	renderer  *Renderer
	sender    Sender
	publisher Publisher
	metrics   Metrics
	logger    Logger

	mu      sync.RWMutex
	jobs    chan job
	closed  bool
	started bool
	group   *errgroup.Group
}

// NewDispatcher создает диспетчер. publisher и metrics могут быть nil.
func NewDispatcher(cfg Config, renderer *Renderer, sender Sender, publisher Publisher, metrics Metrics, logger Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}

	return &Dispatcher{
		cfg:       cfg,
		renderer:  renderer,
		sender:    sender,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		jobs:      make(chan job, cfg.QueueSize),
	}
}

// Start запускает воркеров. Воркеры работают до Stop.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started || d.closed {
		return
	}
	d.started = true

	// Доставка не должна прерываться отменой контекста запуска, только Stop
	workerCtx := context.WithoutCancel(ctx)

	d.group = &errgroup.Group{}
	for i := 0; i < d.cfg.Workers; i++ {
		d.group.Go(func() error {
			for j := range d.jobs {
				d.Deliver(workerCtx, j.event, &j.reservation)
			}
			return nil
		})
	}

	d.logger.Info("Dispatcher: started %d workers, queue size=%d", d.cfg.Workers, d.cfg.QueueSize)
}

// Notify ставит событие в очередь без блокировки.
// При переполненной очереди или остановленном диспетчере событие отбрасывается.
func (d *Dispatcher) Notify(event domain.ReservationEvent, reservation *domain.Reservation) {
	if reservation == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("Dispatcher: stopped, dropping event=%s code=%s", event, reservation.ConfirmationCode)
		d.observeDropped()
		return
	}

	select {
	case d.jobs <- job{event: event, reservation: *reservation}:
	default:
		d.logger.Warn("Dispatcher: queue is full, dropping event=%s code=%s", event, reservation.ConfirmationCode)
		d.observeDropped()
	}
}

// Stop закрывает очередь и ждет, пока воркеры доставят оставшиеся события или истечет ctx
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	group := d.group
	d.mu.Unlock()

	if group == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		_ = group.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Dispatcher: stopped")
		return nil
	case <-ctx.Done():
		d.logger.Warn("Dispatcher: stop timed out with %d queued events", len(d.jobs))
		return ctx.Err()
	}
}

// Deliver синхронно рендерит и отправляет письма гостю и оператору.
// Получатели обрабатываются независимо, ошибки только логируются и возвращаются в Outcome.
func (d *Dispatcher) Deliver(ctx context.Context, event domain.ReservationEvent, reservation *domain.Reservation) Outcome {
	outcome := Outcome{Event: event}

	outcome.GuestErr = d.deliverGuest(ctx, event, reservation)
	outcome.OperatorErr = d.deliverOperator(ctx, event, reservation)

	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, event, reservation); err != nil {
			d.logger.Error("Deliver: failed to publish event=%s code=%s: %v", event, reservation.ConfirmationCode, err)
			outcome.PublishErr = err
		}
	}

	return outcome
}

func (d *Dispatcher) deliverGuest(ctx context.Context, event domain.ReservationEvent, reservation *domain.Reservation) error {
	msg, err := d.renderer.Guest(event, reservation)
	if err != nil {
		d.logger.Error("Deliver: failed to render guest message event=%s code=%s: %v", event, reservation.ConfirmationCode, err)
		d.observe(event, recipientGuest, resultFailed)
		return err
	}

	return d.send(ctx, event, recipientGuest, reservation.GuestEmail, msg)
}

func (d *Dispatcher) deliverOperator(ctx context.Context, event domain.ReservationEvent, reservation *domain.Reservation) error {
	if d.cfg.OperatorEmail == "" {
		d.observe(event, recipientOperator, resultSkipped)
		return nil
	}

	msg, err := d.renderer.Operator(event, reservation)
	if err != nil {
		d.logger.Error("Deliver: failed to render operator message event=%s code=%s: %v", event, reservation.ConfirmationCode, err)
		d.observe(event, recipientOperator, resultFailed)
		return err
	}

	return d.send(ctx, event, recipientOperator, d.cfg.OperatorEmail, msg)
}

// send отправляет письмо с повторами и экспоненциальной задержкой
func (d *Dispatcher) send(ctx context.Context, event domain.ReservationEvent, recipient, to string, msg *Message) error {
	backoff := retry.WithMaxRetries(uint64(d.cfg.MaxAttempts-1), retry.NewExponential(d.cfg.RetryBackoff))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
		defer cancel()

		if err := d.sender.Send(sendCtx, []string{to}, msg.Subject, msg.HTML); err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return err
			}
			if !isTemporary(err) {
				d.logger.Warn("Deliver: %s send rejected event=%s, not retrying: %v", recipient, event, err)
				return err
			}
			d.logger.Warn("Deliver: %s send attempt %d/%d failed event=%s: %v", recipient, attempt, d.cfg.MaxAttempts, event, err)
			return retry.RetryableError(err)
		}
		return nil
	})

	if err != nil {
		d.logger.Error("Deliver: failed to notify %s event=%s after %d attempts: %v", recipient, event, attempt, err)
		d.observe(event, recipient, resultFailed)
		return err
	}

	d.logger.Info("Deliver: %s notified event=%s", recipient, event)
	d.observe(event, recipient, resultSent)
	return nil
}

func (d *Dispatcher) observe(event domain.ReservationEvent, recipient, result string) {
	if d.metrics != nil {
		d.metrics.IncNotification(string(event), recipient, result)
	}
}

func (d *Dispatcher) observeDropped() {
	if d.metrics != nil {
		d.metrics.IncNotificationDropped()
	}
}

// LogSender пишет письма в лог вместо отправки (уведомления отключены)
type LogSender struct {
	logger Logger
}

// NewLogSender создает LogSender
func NewLogSender(logger Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send логирует получателей и тему письма
func (s *LogSender) Send(_ context.Context, to []string, subject, _ string) error {
	s.logger.Info("LogSender: email to=%v subject=%q not sent, notifications disabled", to, subject)
	return nil
}
