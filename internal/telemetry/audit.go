package telemetry

import (
	"context"
	"log"
	"strconv"
	"time"

	"marketplace-service/internal/observability"
)

// Event types emitted on the audit stream.
const (
	EventListingCreated = "listing.created"
	EventListingDeleted = "listing.deleted"
	EventRatingCreated  = "rating.created"
	EventMessageSent    = "message.sent"
	EventUserDisabled   = "user.disabled"
	EventUserDeleted    = "user.deleted"
	EventPaymentCreated = "payment.created"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
}

type AuditEnvelope struct {
	SchemaVersion int            `json:"schema_version"`
	EventType     string         `json:"event_type"`
	OccurredAt    string         `json:"occurred_at"`
	Service       string         `json:"service"`
	Environment   string         `json:"environment"`
	RequestID     string         `json:"request_id"`
	TraceID       string         `json:"trace_id,omitempty"`
	ActorID       *string        `json:"actor_id,omitempty"`
	Subject       map[string]any `json:"subject,omitempty"`
}

func NewAuditEmitter(publisher Publisher, routingKey, service, environment string) *AuditEmitter {
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
	}
}

// Emit publishes an audit event. Failures are logged and never bubble up
// into the request path.
func (e *AuditEmitter) Emit(ctx context.Context, eventType, requestID string, actorID int64, subject map[string]any) {
	if e == nil || e.publisher == nil {
		return
	}

	var actor *string
	if actorID > 0 {
		s := strconv.FormatInt(actorID, 10)
		actor = &s
	}

	var traceID string
	if sc := observability.SpanFromContext(ctx).SpanContext(); sc.HasTraceID() {
		traceID = sc.TraceID().String()
	}

	envelope := AuditEnvelope{
		SchemaVersion: 1,
		EventType:     eventType,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		TraceID:       traceID,
		ActorID:       actor,
		Subject:       subject,
	}

	if err := e.publisher.Publish(ctx, e.routingKey, envelope); err != nil {
		log.Printf("audit publish failed event_type=%s: %v", eventType, err)
	}
}
