package mq

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublishing(t *testing.T) {
	msg, err := newPublishing("booking.created", map[string]string{"booking_id": "b-1"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "booking.created", msg.Type)
	assert.False(t, msg.Timestamp.IsZero())
	_, err = uuid.Parse(msg.MessageId)
	assert.NoError(t, err)

	var body map[string]string
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "b-1", body["booking_id"])
}

func TestNewPublishingRejectsUnencodableValues(t *testing.T) {
	_, err := newPublishing("booking.created", make(chan int))
	assert.Error(t, err)
}
