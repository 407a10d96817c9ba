package kafka

import "time"

// Events consumed from the service centers

type CenterTicketReadyEvent struct {
	TicketID  string    `json:"ticket_id"`
	CenterID  string    `json:"center_id"`
	Timestamp time.Time `json:"timestamp"`
}

type CenterTicketCompletedEvent struct {
	TicketID  string    `json:"ticket_id"`
	CenterID  string    `json:"center_id"`
	Timestamp time.Time `json:"timestamp"`
}
