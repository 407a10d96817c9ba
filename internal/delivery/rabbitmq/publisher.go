package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/vogiaan1904/spotqueue/internal/models"
	"github.com/vogiaan1904/spotqueue/pkg/logger"
)

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher interface {
	Publish(ctx context.Context, e models.TicketEvent) error
	Close() error
}

type implPublisher struct {
	ch       Channel
	conn     *amqp.Connection
	exchange string
	l        logger.Logger
}

// NewPublisher publishes ticket events to exchange, routed by event type.
// conn may be nil when the caller owns the connection.
func NewPublisher(ch Channel, conn *amqp.Connection, exchange string, l logger.Logger) Publisher {
	return &implPublisher{
		ch:       ch,
		conn:     conn,
		exchange: exchange,
		l:        l,
	}
}

func (p *implPublisher) Publish(ctx context.Context, e models.TicketEvent) error {
	msg, err := newPublishing(e)
	if err != nil {
		p.l.Errorf(ctx, "delivery.rabbitmq.Publish: %v", err)
		return err
	}

	if err := p.ch.PublishWithContext(ctx, p.exchange, string(e.Type), false, false, msg); err != nil {
		p.l.Errorf(ctx, "delivery.rabbitmq.Publish: %v", err)
		return err
	}

	return nil
}

func newPublishing(e models.TicketEvent) (amqp.Publishing, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, err
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.TicketID + ":" + string(e.Type),
		Type:         string(e.Type),
		Timestamp:    e.Timestamp.UTC(),
		Headers: amqp.Table{
			"center_id": e.CenterID,
		},
		Body: body,
	}, nil
}

func (p *implPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
