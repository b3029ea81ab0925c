// Package notify forwards site events to RabbitMQ.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/3dmm/site/internal/event"
	"github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "site.events"

	RoutingContactSubmitted = "contact.submitted"
)

const publishTimeout = 5 * time.Second

// Channel is the subset of *amqp091.Channel used by Publisher.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher publishes JSON events to a durable topic exchange.
type Publisher struct {
	conn    *amqp091.Connection
	channel Channel
}

// Dial connects to url, opens a channel and declares the exchange.
func Dial(url string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	p, err := NewPublisher(ch)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewPublisher declares the exchange on ch and returns a Publisher using it.
func NewPublisher(ch Channel) (*Publisher, error) {
	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &Publisher{channel: ch}, nil
}

// Publish marshals payload and publishes it with persistent delivery.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.channel.PublishWithContext(ctx,
		ExchangeName,
		routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now().UTC(),
		},
	)
}

// ContactSubmitted is an event.Handler. Failures are logged only; the
// submission has already been stored.
func (p *Publisher) ContactSubmitted(ctx context.Context, e event.ContactSubmitted) {
	if err := p.Publish(ctx, RoutingContactSubmitted, e); err != nil {
		slog.ErrorContext(ctx, "failed to publish contact event",
			"error", err,
			"contact_id", e.ID,
		)
	}
}

// Close closes the channel and the connection.
func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
