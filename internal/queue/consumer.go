package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/social-auth/internal/logging"
)

// AuditConsumer drains the event queues and appends one line per event to
// <Dir>/audit.log.
type AuditConsumer struct {
	URL string
	Dir string
	Log logging.Logger
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with exponential backoff. Malformed messages are rejected
// without requeue so they cannot loop.
func (c *AuditConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.DialConfig(c.URL, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
		if err != nil {
			c.Log.Warn(ctx, "audit consumer: dial failed", "error", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn(ctx, "audit consumer: consume loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

type delivery struct {
	queue string
	amqp.Delivery
}

func (c *AuditConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn(ctx, "audit consumer: set QoS failed", "error", err)
	}

	merged := make(chan delivery)
	done := make(chan struct{})
	defer close(done)
	for _, q := range []string{UserRegisteredQueue, PreferencesChangedQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", q, err)
		}
		go func(q string, msgs <-chan amqp.Delivery) {
			for d := range msgs {
				select {
				case merged <- delivery{queue: q, Delivery: d}:
				case <-done:
					return
				}
			}
		}(q, msgs)
	}

	closed := ch.NotifyClose(make(chan *amqp.Error, 1))
	c.Log.Info(ctx, "audit consumer: listening", "dir", c.Dir)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-closed:
			if err == nil {
				return errors.New("channel closed")
			}
			return err
		case d := <-merged:
			if err := handleMessage(c.Dir, d.queue, d.Body); err != nil {
				c.Log.Error(ctx, "audit consumer: handle message failed", "queue", d.queue, "error", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// handleMessage renders the event carried by body and appends it to the
// audit log in dir.
func handleMessage(dir, queue string, body []byte) error {
	line, err := formatEvent(queue, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "audit.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatEvent(queue string, body []byte) (string, error) {
	switch queue {
	case UserRegisteredQueue:
		var ev UserRegisteredEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		if ev.UserID == "" {
			return "", errors.New("event without user_id")
		}
		return fmt.Sprintf("[%s] User registered | user_id=%s | username=%q | email=%q | role=%s\n",
			ev.RegisteredAt, ev.UserID, ev.Username, ev.Email, ev.Role), nil
	case PreferencesChangedQueue:
		var ev PreferencesChangedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		if ev.UserID == "" {
			return "", errors.New("event without user_id")
		}
		return fmt.Sprintf("[%s] Preferences %s | user_id=%s | preferences=[%s]\n",
			ev.ChangedAt, ev.Action, ev.UserID, strings.Join(ev.Preferences, ",")), nil
	}
	return "", fmt.Errorf("unknown queue %q", queue)
}
