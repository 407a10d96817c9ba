package consumer

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/vogiaan1904/spotqueue/internal/delivery/kafka"
	"github.com/vogiaan1904/spotqueue/internal/service"
)

func (c *Consumer) HandleTicketReady(ctx context.Context, message *sarama.ConsumerMessage) error {
	var e kafka.CenterTicketReadyEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleTicketReady: %v", err)
		return err
	}

	if err := c.qSvc.HandleTicketReady(ctx, service.TicketSignalInput{
		TicketID:  e.TicketID,
		CenterID:  e.CenterID,
		Timestamp: e.Timestamp,
	}); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleTicketReady: %v", err)
		return err
	}

	return nil
}

func (c *Consumer) HandleTicketCompleted(ctx context.Context, message *sarama.ConsumerMessage) error {
	var e kafka.CenterTicketCompletedEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleTicketCompleted: %v", err)
		return err
	}

	if err := c.qSvc.HandleTicketCompleted(ctx, service.TicketSignalInput{
		TicketID:  e.TicketID,
		CenterID:  e.CenterID,
		Timestamp: e.Timestamp,
	}); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleTicketCompleted: %v", err)
		return err
	}

	return nil
}
