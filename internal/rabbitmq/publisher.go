package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	ModeAMQP    = "amqp"
	ModeLogOnly = "log-only"
)

// Publisher publishes domain events to a topic exchange.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// Envelope is implemented by events that carry their own identity. The
// values end up in the AMQP message properties so consumers can dedupe
// without decoding the body.
type Envelope interface {
	EventID() string
	EventType() string
	OccurredAt() time.Time
}

// NewPublisher connects to RabbitMQ and declares the exchange. Without a URL,
// or when the broker is unreachable, it returns a publisher that only logs
// events so reports still show up in the service logs.
func NewPublisher(amqpURL, exchange string) Publisher {
	if amqpURL == "" {
		return newLogOnly("AMQP_URL not set")
	}
	p, err := dial(amqpURL, exchange)
	if err != nil {
		log.Warn().Err(err).Str("exchange", exchange).Msg("report broker unavailable, events will only be logged")
		return newLogOnly(err.Error())
	}
	log.Info().Str("exchange", exchange).Msg("report broker connected")
	return p
}

func dial(amqpURL, exchange string) (*amqpPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	// durable topic exchange, survives broker restarts
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &amqpPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

type amqpPublisher struct {
	// amqp channels are not safe for concurrent publishes
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// publishingFor builds the persistent JSON message for event.
func publishingFor(event any) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}
	if env, ok := event.(Envelope); ok {
		msg.MessageId = env.EventID()
		msg.Type = env.EventType()
		msg.Timestamp = env.OccurredAt()
	}
	return msg, nil
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	msg, err := publishingFor(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *amqpPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// logOnlyPublisher writes each event to the log instead of a broker.
type logOnlyPublisher struct {
	reason string
	logger zerolog.Logger
}

func newLogOnly(reason string) *logOnlyPublisher {
	return &logOnlyPublisher{reason: reason, logger: log.Logger}
}

func (p *logOnlyPublisher) Publish(_ context.Context, routingKey string, event any) error {
	ev := p.logger.Info().
		Str("routing_key", routingKey).
		Str("undelivered_reason", p.reason)
	if obj, ok := event.(zerolog.LogObjectMarshaler); ok {
		ev = ev.Object("event", obj)
	} else if env, ok := event.(Envelope); ok {
		ev = ev.Str("event_id", env.EventID()).Str("event_type", env.EventType())
	}
	ev.Msg("event not sent to broker")
	return nil
}

func (p *logOnlyPublisher) Close() error { return nil }

// PublisherMode reports which delivery path p uses.
func PublisherMode(p Publisher) string {
	switch p.(type) {
	case *amqpPublisher:
		return ModeAMQP
	case *logOnlyPublisher:
		return ModeLogOnly
	default:
		return "unknown"
	}
}

// PublisherNoopReason explains why events are only logged, empty when a
// broker is connected.
func PublisherNoopReason(p Publisher) string {
	if n, ok := p.(*logOnlyPublisher); ok {
		return n.reason
	}
	return ""
}
