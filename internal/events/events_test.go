package events

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestPublisherWithoutConnectionIsNoop(t *testing.T) {
	publisher := NewNATSPublisher(nil, "", zerolog.Nop())
	require.Equal(t, DefaultSubject, publisher.Subject())
	require.NoError(t, publisher.PublishSubmissionTouched(context.Background(), SubmissionTouched{SubmissionID: 1}))
}

func TestEventWireFormat(t *testing.T) {
	at := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	event := SubmissionTouched{
		SubmissionID:     7,
		AssignmentNumber: 3,
		ActorID:          2,
		Actions:          []string{"self_eval.created", "self_eval.saved"},
		LastModified:     at,
	}

	payload, err := Encode(event)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"submission_id": 7,
		"assignment_number": 3,
		"actor_id": 2,
		"actions": ["self_eval.created", "self_eval.saved"],
		"last_modified": "2026-03-02T10:00:00Z"
	}`, string(payload))

	decoded, err := Decode(payload)
	require.NoError(t, err)
	require.Equal(t, event, decoded)
}
