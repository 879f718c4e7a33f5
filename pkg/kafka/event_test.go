package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]string{"companyName": "Acme Holdings Inc"}

	evt, err := NewEvent("submission.created", "sub-123", "submission", "intake-service", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, evt.EventID)
	assert.Equal(t, "submission.created", evt.EventType)
	assert.Equal(t, "sub-123", evt.AggregateID)
	assert.Equal(t, "intake-service", evt.Source)
	assert.False(t, evt.Timestamp.IsZero())
	assert.NotEmpty(t, evt.Data)
}

func TestEventRoundTrip(t *testing.T) {
	type statusPayload struct {
		From string `json:"from"`
		To   string `json:"to"`
	}

	evt, err := NewEvent("submission.status_changed", "sub-9", "submission", "intake-service",
		statusPayload{From: "pending", To: "completed"})
	require.NoError(t, err)
	evt = evt.WithCorrelationID("corr-42")

	raw, err := evt.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, evt.EventID, decoded.EventID)
	assert.Equal(t, "corr-42", decoded.CorrelationID)

	var p statusPayload
	require.NoError(t, decoded.UnmarshalData(&p))
	assert.Equal(t, "pending", p.From)
	assert.Equal(t, "completed", p.To)
}

func TestUnmarshalEventInvalid(t *testing.T) {
	_, err := UnmarshalEvent([]byte("{not json"))
	assert.Error(t, err)
}
