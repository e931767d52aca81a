package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/catalogo-api/apiserver/config"
	"github.com/catalogo-api/apiserver/types"
)

const (
	BackendNone     = "none"
	BackendRabbitMQ = "rabbitmq"
	BackendPubSub   = "pubsub"

	attrEntity = "entity"
	attrAction = "action"
)

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// MQ carries catalog events over a Backend on a single channel.
type MQ struct {
	backend Backend
	channel string
}

// New constructs an MQ wrapper for the provided backend.
func New(backend Backend, channel string) *MQ {
	return &MQ{backend: backend, channel: channel}
}

// Open builds the backend selected by cfg.MQ.Backend. It returns nil when
// events are disabled.
func Open(ctx context.Context, cfg config.Config) (*MQ, error) {
	var (
		backend Backend
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.MQ.Backend)) {
	case "", BackendNone:
		return nil, nil
	case BackendRabbitMQ:
		backend, err = NewRabbitMQClient(cfg.RabbitMQ)
	case BackendPubSub:
		backend, err = NewPubSubClient(ctx, cfg.PubSub)
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQ.Backend)
	}
	if err != nil {
		return nil, err
	}
	return New(backend, cfg.MQ.Channel), nil
}

// Publish encodes the event as JSON and sends it on the events channel.
func (m *MQ) Publish(ctx context.Context, event types.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	attrs := map[string]string{
		attrEntity: event.Entity,
		attrAction: event.Action,
	}
	if _, err := m.backend.Publish(ctx, m.channel, data, attrs); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Consume decodes events from the channel and hands them to fn until ctx
// is done. An error from fn requeues the message. Messages that are not
// valid events are reported to invalid, if set, and dropped.
func (m *MQ) Consume(ctx context.Context, fn func(ctx context.Context, event types.Event) error, invalid func(msg Message, err error)) error {
	return m.backend.Subscribe(ctx, m.channel, func(ctx context.Context, msg Message) error {
		var event types.Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			if invalid != nil {
				invalid(msg, err)
			}
			return nil
		}
		return fn(ctx, event)
	})
}

// Channel returns the name events are published on.
func (m *MQ) Channel() string {
	return m.channel
}

// Close closes the underlying backend.
func (m *MQ) Close() error {
	return m.backend.Close()
}
