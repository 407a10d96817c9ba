package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/spotqueue/internal/models"
	"github.com/vogiaan1904/spotqueue/pkg/logger"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher(ch, nil, "spotqueue.tickets", logger.InitializeTestZapLogger())

	e := models.NewTicketEvent(models.TicketEventReady, models.QueueTicket{
		ID:                  "t-9",
		CenterID:            "3",
		Status:              models.TicketStatusReady,
		NotifyBeforeMinutes: 15,
	})
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, ch.sent, 1)
	got := ch.sent[0]
	assert.Equal(t, "spotqueue.tickets", got.exchange)
	assert.Equal(t, "ticket.ready", got.key)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, "3", got.msg.Headers["center_id"])

	var body models.TicketEvent
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "t-9", body.TicketID)
	assert.Equal(t, 15, body.NotifyBeforeMinutes)
	assert.False(t, body.Timestamp.IsZero())

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	p := NewPublisher(ch, nil, "spotqueue.tickets", logger.InitializeTestZapLogger())

	err := p.Publish(context.Background(), models.NewTicketEvent(models.TicketEventBooked, models.QueueTicket{ID: "t-1"}))
	assert.True(t, errors.Is(err, amqp.ErrClosed))
}
