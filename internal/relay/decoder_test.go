package relay_test

import (
	"testing"

	"github.com/strawberrylab/masterbot/internal/domain"
	"github.com/strawberrylab/masterbot/internal/relay"
	"github.com/stretchr/testify/require"
)

func TestDecodeAppointmentCreated(t *testing.T) {
	body := []byte(`{"appointment_id": 42, "master_id": 7, "time": "2024-12-25T10:00:00Z"}`)

	event := relay.Decode("appointments.created", body)

	created, ok := event.(domain.AppointmentCreated)
	require.True(t, ok)
	require.Equal(t, int64(42), created.AppointmentID)
	require.Equal(t, int64(7), created.MasterID)
	require.Equal(t, "2024-12-25T10:00:00Z", created.Time)

	id, deliverable := event.Recipient()
	require.True(t, deliverable)
	require.Equal(t, int64(7), id)
}

func TestDecodeAppointmentDeleted(t *testing.T) {
	body := []byte(`{"appointment_id": 13, "master_id": 2, "time": "2025-01-09T15:30:00Z"}`)

	event := relay.Decode("appointments.deleted", body)

	deleted, ok := event.(domain.AppointmentDeleted)
	require.True(t, ok)
	require.Equal(t, int64(13), deleted.AppointmentID)
	require.Equal(t, int64(2), deleted.MasterID)
}

func TestDecodeReviewCreated(t *testing.T) {
	body := []byte(`{"user_id": 9, "master_id": 7, "rating": 5, "message": "отлично!", "created_at": "2025-01-09T15:30:00Z"}`)

	event := relay.Decode("reviews.created", body)

	review, ok := event.(domain.ReviewCreated)
	require.True(t, ok)
	require.Equal(t, int64(7), review.MasterID)
	require.Equal(t, "отлично!", review.Text)
}

func TestDecodeFallsBackToUserID(t *testing.T) {
	body := []byte(`{"appointment_id": 1, "user_id": 11, "time": "t"}`)

	event := relay.Decode("appointments.created", body)

	id, deliverable := event.Recipient()
	require.True(t, deliverable)
	require.Equal(t, int64(11), id)
}

func TestDecodeMissingFieldsDegradeToZero(t *testing.T) {
	event := relay.Decode("appointments.created", []byte(`{}`))

	created, ok := event.(domain.AppointmentCreated)
	require.True(t, ok)
	require.Zero(t, created.AppointmentID)
	require.Zero(t, created.MasterID)

	_, deliverable := event.Recipient()
	require.False(t, deliverable)
}

func TestDecodeUnknownRoutingKey(t *testing.T) {
	body := []byte(`{"master_id": 7}`)

	event := relay.Decode("payments.created", body)

	unrec, ok := event.(domain.Unrecognized)
	require.True(t, ok)
	require.Equal(t, "payments.created", unrec.RoutingKey)
	require.Equal(t, body, unrec.Payload)
}

// The decoder must never panic, whatever the producer sends.
func TestDecodeGarbageNeverPanics(t *testing.T) {
	bodies := map[string][]byte{
		"empty":      {},
		"nil":        nil,
		"truncated":  []byte(`{"appointment_id": 42, "mas`),
		"non-json":   []byte("hello there"),
		"non-utf8":   {0xff, 0xfe, 0x00, 0x01},
		"wrong-type": []byte(`{"appointment_id": "not-a-number"}`),
		"array":      []byte(`[1, 2, 3]`),
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			event := relay.Decode("appointments.created", body)

			unrec, ok := event.(domain.Unrecognized)
			require.True(t, ok)
			require.Equal(t, body, unrec.Payload)

			_, deliverable := event.Recipient()
			require.False(t, deliverable)
		})
	}
}
