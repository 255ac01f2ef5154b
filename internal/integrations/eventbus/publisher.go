// Package eventbus публикует события бронирований в RabbitMQ.
// Ошибки логируются и возвращаются, вызывающая сторона может их игнорировать.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/thesilo/reservations/internal/domain"
)

// DefaultQueue очередь событий бронирований
const DefaultQueue = "reservation.events"

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Publisher публикует события в durable очередь через default exchange.
// Соединение открывается на каждую публикацию: событий мало, а брокер может перезапускаться.
type Publisher struct {
	url    string
	queue  string
	logger Logger
	now    func() time.Time
}

// NewPublisher создает Publisher
func NewPublisher(url, queue string, logger Logger) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Publisher{
		url:    url,
		queue:  queue,
		logger: logger,
		now:    time.Now,
	}
}

// Publish публикует событие как persistent JSON сообщение
func (p *Publisher) Publish(ctx context.Context, event domain.ReservationEvent, reservation *domain.Reservation) error {
	body, err := json.Marshal(NewEventMessage(event, reservation, p.now()))
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", ErrPublish, err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warn("EventBus: dial failed: %v", err)
		return fmt.Errorf("%w: dial: %v", ErrConnect, err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("EventBus: channel open failed: %v", err)
		return fmt.Errorf("%w: open channel: %v", ErrConnect, err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		p.logger.Warn("EventBus: queue declare failed: %v", err)
		return fmt.Errorf("%w: declare queue %s: %v", ErrPublish, p.queue, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Type:         string(event),
		MessageId:    reservation.ID + ":" + string(event),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		msg,
	); err != nil {
		p.logger.Warn("EventBus: publish failed: %v", err)
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	p.logger.Info("EventBus: published event=%s code=%s", event, reservation.ConfirmationCode)
	return nil
}
