package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/social-auth/internal/logging"
)

// Publisher sends an event to a named queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, event any) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// AMQPPublisher publishes persistent JSON messages to RabbitMQ. A connection
// is opened per publish; events are rare enough that pooling is not needed.
type AMQPPublisher struct {
	url         string
	dialTimeout time.Duration
	log         logging.Logger
}

func NewAMQPPublisher(url string, log logging.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, dialTimeout: 2 * time.Second, log: log}
}

// Publish declares queue (durable, idempotent) and sends event to it through
// the default exchange.
func (p *AMQPPublisher) Publish(ctx context.Context, queue string, event any) error {
	msg, err := newPublishing(event, time.Now())
	if err != nil {
		return err
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.dialTimeout)})
	if err != nil {
		p.log.Warn(ctx, "rabbitmq dial failed", "queue", queue, "error", err)
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	p.log.Debug(ctx, "event published", "queue", queue)
	return nil
}

func newPublishing(event any, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    now.UTC(),
		Body:         body,
	}, nil
}
