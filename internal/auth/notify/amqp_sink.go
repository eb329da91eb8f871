package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aussiebroadwan/vendorauth/pkg/idx"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultQueue is the queue notifications are published to.
const DefaultQueue = "vendorauth.notifications"

// AMQPSink publishes notifications as persistent JSON messages to a durable
// RabbitMQ queue via the default exchange. The connection is opened on the
// first send and reopened after any failure.
type AMQPSink struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPSink returns a sink for url. Nothing is dialled until Send.
func NewAMQPSink(url, queue string) *AMQPSink {
	if queue == "" {
		queue = DefaultQueue
	}
	return &AMQPSink{url: url, queue: queue}
}

func (s *AMQPSink) Send(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("amqp: marshal notification: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.channel()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx,
		"",      // default exchange
		s.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    idx.NewString(),
			Type:         string(n.Kind),
			Timestamp:    n.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		s.reset()
		return fmt.Errorf("amqp: publish: %w", err)
	}
	return nil
}

// channel returns an open channel, dialling if needed. Callers hold s.mu.
func (s *AMQPSink) channel() (*amqp.Channel, error) {
	if s.ch != nil && !s.ch.IsClosed() {
		return s.ch, nil
	}
	s.reset()

	conn, err := amqp.Dial(s.url)
	if err != nil {
		return nil, fmt.Errorf("amqp: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp: open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp: declare queue %s: %w", s.queue, err)
	}

	s.conn, s.ch = conn, ch
	return ch, nil
}

func (s *AMQPSink) reset() {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.conn, s.ch = nil, nil
}

// Close tears down the connection.
func (s *AMQPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.conn != nil {
		err = s.conn.Close()
		if errors.Is(err, amqp.ErrClosed) {
			err = nil
		}
	}
	s.conn, s.ch = nil, nil
	return err
}
