package models

import "time"

type QueueTicket struct {
	ID                       string       `json:"id"`
	CenterID                 string       `json:"center_id"`
	CenterName               string       `json:"center_name"`
	TicketNumber             int64        `json:"ticket_number"`
	EstimatedWaitTimeMinutes int          `json:"estimated_wait_time_minutes"`
	Status                   TicketStatus `json:"status"`
	NotifyBeforeMinutes      int          `json:"notify_before_minutes"`
	CreatedAt                time.Time    `json:"created_at"`
	UpdatedAt                time.Time    `json:"updated_at"`
}

type TicketStatus string

const (
	TicketStatusWaiting   TicketStatus = "waiting"
	TicketStatusReady     TicketStatus = "ready"
	TicketStatusCompleted TicketStatus = "completed"
	TicketStatusCancelled TicketStatus = "cancelled"
)

func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusWaiting, TicketStatusReady, TicketStatusCompleted, TicketStatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether the ticket still holds a place in line.
func (t *QueueTicket) IsActive() bool {
	return t.Status == TicketStatusWaiting || t.Status == TicketStatusReady
}

func (t *QueueTicket) IsTerminal() bool {
	return t.Status == TicketStatusCompleted || t.Status == TicketStatusCancelled
}

func (t *QueueTicket) CanCancel() bool {
	return t.IsActive()
}

func (t *QueueTicket) CanMarkReady() bool {
	return t.Status == TicketStatusWaiting
}

func (t *QueueTicket) CanComplete() bool {
	return t.Status == TicketStatusReady
}

// IsActiveTicket and IsHistoryTicket are the two partitions shown to users.
func IsActiveTicket(t QueueTicket) bool {
	return t.IsActive()
}

func IsHistoryTicket(t QueueTicket) bool {
	return t.IsTerminal()
}
