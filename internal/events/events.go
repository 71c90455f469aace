package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "submission.touched"

// SubmissionTouched is published after a committed change to a submission's evaluations.
type SubmissionTouched struct {
	SubmissionID     uint      `json:"submission_id"`
	AssignmentNumber int       `json:"assignment_number"`
	ActorID          uint      `json:"actor_id"`
	Actions          []string  `json:"actions"`
	LastModified     time.Time `json:"last_modified"`
}

// Publisher delivers change events to interested consumers.
type Publisher interface {
	PublishSubmissionTouched(ctx context.Context, event SubmissionTouched) error
}

// NATSPublisher publishes events as JSON on a NATS subject. A nil connection
// turns every publish into a no-op.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSPublisher constructs a publisher bound to subject.
func NewNATSPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "event_publisher").Logger(),
	}
}

// Subject returns the subject events are published on.
func (p *NATSPublisher) Subject() string {
	return p.subject
}

// PublishSubmissionTouched encodes and publishes the event.
func (p *NATSPublisher) PublishSubmissionTouched(ctx context.Context, event SubmissionTouched) error {
	if p == nil || p.conn == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := Encode(event)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}

	p.logger.Debug().
		Uint("submission_id", event.SubmissionID).
		Strs("actions", event.Actions).
		Msg("submission event published")
	return nil
}

// Encode serializes an event for the wire.
func Encode(event SubmissionTouched) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode submission event: %w", err)
	}
	return payload, nil
}

// Decode parses an event received from the wire.
func Decode(payload []byte) (SubmissionTouched, error) {
	var event SubmissionTouched
	if err := json.Unmarshal(payload, &event); err != nil {
		return SubmissionTouched{}, fmt.Errorf("decode submission event: %w", err)
	}
	return event, nil
}
