package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/3dmm/site/internal/event"
	"github.com/rabbitmq/amqp091-go"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type mockChannel struct {
	declareErr error
	publishErr error
	declared   []string
	published  []published
	closed     bool
}

func (m *mockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	if m.declareErr != nil {
		return m.declareErr
	}
	if kind != "topic" || !durable {
		return errors.New("unexpected exchange options")
	}
	m.declared = append(m.declared, name)
	return nil
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (m *mockChannel) Close() error {
	m.closed = true
	return nil
}

func TestNewPublisher_DeclaresExchange(t *testing.T) {
	ch := &mockChannel{}
	if _, err := NewPublisher(ch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ch.declared) != 1 || ch.declared[0] != ExchangeName {
		t.Errorf("declared = %v", ch.declared)
	}
}

func TestNewPublisher_DeclareErrorClosesChannel(t *testing.T) {
	ch := &mockChannel{declareErr: errors.New("access refused")}
	if _, err := NewPublisher(ch); err == nil {
		t.Fatal("expected error")
	}
	if !ch.closed {
		t.Error("channel not closed after declare failure")
	}
}

func TestPublisher_ContactSubmitted(t *testing.T) {
	ch := &mockChannel{}
	p, err := NewPublisher(ch)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	e := event.ContactSubmitted{
		ID:        "abc",
		Email:     "ada@example.com",
		Subject:   "Scan",
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	p.ContactSubmitted(context.Background(), e)

	if len(ch.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(ch.published))
	}
	got := ch.published[0]
	if got.exchange != ExchangeName || got.key != RoutingContactSubmitted {
		t.Errorf("routed to %s/%s", got.exchange, got.key)
	}
	if got.msg.DeliveryMode != amqp091.Persistent {
		t.Errorf("DeliveryMode = %d, want persistent", got.msg.DeliveryMode)
	}
	if got.msg.ContentType != "application/json" {
		t.Errorf("ContentType = %q", got.msg.ContentType)
	}
	var body event.ContactSubmitted
	if err := json.Unmarshal(got.msg.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.ID != "abc" || body.Email != "ada@example.com" {
		t.Errorf("body = %+v", body)
	}
}

func TestPublisher_ContactSubmitted_ErrorIsSwallowed(t *testing.T) {
	ch := &mockChannel{}
	p, err := NewPublisher(ch)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	ch.publishErr = errors.New("channel closed")

	p.ContactSubmitted(context.Background(), event.ContactSubmitted{ID: "x"})
}

func TestPublisher_Close(t *testing.T) {
	ch := &mockChannel{}
	p, _ := NewPublisher(ch)
	p.Close()
	if !ch.closed {
		t.Error("channel not closed")
	}
}
