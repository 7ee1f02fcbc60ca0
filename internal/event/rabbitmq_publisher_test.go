package event

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRabbitMQEventPublisher_InvalidArguments(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pub, err := NewRabbitMQEventPublisher(nil, "vidly", logger)
	assert.Nil(t, pub)
	assert.EqualError(t, err, "RabbitMQ connection cannot be nil")

	pub, err = NewRabbitMQEventPublisher(&amqp.Connection{}, "", logger)
	assert.Nil(t, pub)
	assert.EqualError(t, err, "RabbitMQ exchange name cannot be empty")
}

func TestNewPublishing(t *testing.T) {
	ts := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	birth := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	evt := CustomerCreatedEvent{
		Timestamp: ts,
		Payload: CustomerEventPayload{
			CustomerID:       7,
			Name:             "Mary William",
			BirthDate:        FormatBirthDate(&birth),
			MembershipTypeID: 2,
		},
	}

	msg, err := newPublishing(evt, ts)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "vidly", msg.AppId)
	assert.Equal(t, ts, msg.Timestamp)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	payload := decoded["payload"].(map[string]any)
	assert.Equal(t, "1990-01-01", payload["birthDate"])
	assert.Equal(t, "Mary William", payload["name"])
	assert.Equal(t, float64(2), payload["membershipTypeId"])
}

func TestNewPublishing_MarshalFailure(t *testing.T) {
	_, err := newPublishing(map[string]any{"bad": make(chan int)}, time.Now())
	assert.ErrorContains(t, err, "failed to marshal event")
}

func TestFormatBirthDate(t *testing.T) {
	assert.Nil(t, FormatBirthDate(nil))
	d := time.Date(2008, 12, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2008-12-31", *FormatBirthDate(&d))
}

func TestNopPublisher(t *testing.T) {
	var pub EventPublisher = NopPublisher{}
	ctx := context.Background()
	assert.NoError(t, pub.PublishCustomerCreated(ctx, CustomerCreatedEvent{}))
	assert.NoError(t, pub.PublishCustomerUpdated(ctx, CustomerUpdatedEvent{}))
	assert.NoError(t, pub.PublishCustomerDeleted(ctx, CustomerDeletedEvent{}))
}
