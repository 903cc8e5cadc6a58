package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_PopulatesEnvelope(t *testing.T) {
	payload := map[string]string{"booking_id": "b-1"}

	event, err := NewEvent("booking.created", "b-1", "booking", "gatepass", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "booking.created", event.EventType)
	assert.Equal(t, "b-1", event.AggregateID)
	assert.Equal(t, "booking", event.AggregateType)
	assert.Equal(t, 1, event.Version)
	assert.Equal(t, "gatepass", event.Source)
	assert.False(t, event.Timestamp.IsZero())

	var decoded map[string]string
	require.NoError(t, event.UnmarshalData(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	_, err := NewEvent("booking.created", "b-1", "booking", "gatepass", make(chan int))
	assert.Error(t, err)
}

func TestEvent_WithCorrelationID(t *testing.T) {
	event, err := NewEvent("user.registered", "u-1", "user", "gatepass", nil)
	require.NoError(t, err)

	event.WithCorrelationID("corr-123")
	assert.Equal(t, "corr-123", event.CorrelationID)
}
