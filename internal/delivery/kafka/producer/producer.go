package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	kafka "github.com/vogiaan1904/spotqueue/internal/delivery/kafka"
	"github.com/vogiaan1904/spotqueue/internal/models"
	"github.com/vogiaan1904/spotqueue/pkg/logger"
)

type Producer interface {
	Publish(ctx context.Context, e models.TicketEvent) error
	Close() error
}

type implProducer struct {
	l    logger.Logger
	prod sarama.SyncProducer
}

func NewProducer(prod sarama.SyncProducer, l logger.Logger) Producer {
	return &implProducer{
		l:    l,
		prod: prod,
	}
}

func (p *implProducer) Publish(ctx context.Context, e models.TicketEvent) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	val, err := json.Marshal(e)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.Publish: %v", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: kafka.TopicFor(e.Type),
		Key:   sarama.StringEncoder(e.CenterID), // Partition by center_id for ordering
		Value: sarama.ByteEncoder(val),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("timestamp"),
				Value: []byte(e.Timestamp.Format(time.RFC3339)),
			},
			{
				Key:   []byte("event_type"),
				Value: []byte(e.Type),
			},
		},
	}

	partition, offset, err := p.prod.SendMessage(msg)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.Publish: %v", err)
		return err
	}

	p.l.Debugf(ctx, "Published %s for ticket %s to partition %d offset %d", e.Type, e.TicketID, partition, offset)

	return nil
}

func (p *implProducer) Close() error {
	return p.prod.Close()
}
