package rabbitmq

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"marketplace-service/internal/observability"
	"marketplace-service/internal/telemetry"
)

// Publisher delivers audit events to the marketplace audit stream.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// NewPublisher connects to RabbitMQ and declares the topic exchange. When the
// broker is unreachable or no URL is configured, audit events fall back to a
// log-only publisher so the service still starts.
func NewPublisher(amqpURL, exchange string) Publisher {
	offline := func(reason string) Publisher {
		log.Printf("audit stream offline reason=%q", reason)
		return &offlineStream{reason: reason}
	}

	if amqpURL == "" {
		return offline("amqp url not configured")
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return offline(err.Error())
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return offline(err.Error())
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return offline(err.Error())
	}

	log.Printf("audit stream connected exchange=%s", exchange)
	return &auditStream{conn: conn, ch: ch, exchange: exchange}
}

type auditStream struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func (s *auditStream) Publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.ch.PublishWithContext(ctx, s.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		observability.IncAMQPPublishError()
		log.Printf("audit publish failed routing_key=%s: %v", routingKey, err)
	}
	return err
}

func (s *auditStream) Close() error {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// offlineStream writes audit events to the log instead of the broker.
type offlineStream struct {
	reason string
}

func (*offlineStream) Publish(_ context.Context, routingKey string, event any) error {
	log.Printf("audit event routing_key=%s event_type=%s", routingKey, eventType(event))
	return nil
}

func (*offlineStream) Close() error {
	return nil
}

func eventType(event any) string {
	switch envelope := event.(type) {
	case telemetry.AuditEnvelope:
		return envelope.EventType
	case *telemetry.AuditEnvelope:
		return envelope.EventType
	default:
		return "unknown"
	}
}

// Describe reports whether the publisher is talking to the broker or logging
// locally, for the startup banner.
func Describe(p Publisher) (mode, reason string) {
	if offline, ok := p.(*offlineStream); ok {
		return "offline", offline.reason
	}
	return "amqp", ""
}
