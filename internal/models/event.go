package models

import "time"

type TicketEventType string

const (
	TicketEventBooked          TicketEventType = "ticket.booked"
	TicketEventCancelled       TicketEventType = "ticket.cancelled"
	TicketEventReady           TicketEventType = "ticket.ready"
	TicketEventCompleted       TicketEventType = "ticket.completed"
	TicketEventLeadTimeUpdated TicketEventType = "ticket.lead_time_updated"
)

// TicketEvent is published on every ticket lifecycle change so that the
// notification scheduler can track notify_before_minutes without polling.
type TicketEvent struct {
	Type                     TicketEventType `json:"type"`
	TicketID                 string          `json:"ticket_id"`
	CenterID                 string          `json:"center_id"`
	CenterName               string          `json:"center_name"`
	TicketNumber             int64           `json:"ticket_number"`
	Status                   TicketStatus    `json:"status"`
	EstimatedWaitTimeMinutes int             `json:"estimated_wait_time_minutes"`
	NotifyBeforeMinutes      int             `json:"notify_before_minutes"`
	CenterQueueLength        int64           `json:"center_queue_length,omitempty"`
	OccurredAt               time.Time       `json:"occurred_at"`
	Timestamp                time.Time       `json:"timestamp"`
}

func NewTicketEvent(typ TicketEventType, t QueueTicket) TicketEvent {
	return TicketEvent{
		Type:                     typ,
		TicketID:                 t.ID,
		CenterID:                 t.CenterID,
		CenterName:               t.CenterName,
		TicketNumber:             t.TicketNumber,
		Status:                   t.Status,
		EstimatedWaitTimeMinutes: t.EstimatedWaitTimeMinutes,
		NotifyBeforeMinutes:      t.NotifyBeforeMinutes,
		OccurredAt:               t.UpdatedAt,
	}
}
