package service

import (
	"time"

	"github.com/vogiaan1904/spotqueue/internal/models"
)

type BookTicketInput struct {
	CenterID            string `json:"center_id" validate:"required"`
	NotifyBeforeMinutes int    `json:"notify_before_minutes" validate:"gte=0"`
}

type BookTicketOutput struct {
	Ticket        models.QueueTicket `json:"ticket"`
	Pass          string             `json:"pass"`
	PassExpiresAt time.Time          `json:"pass_expires_at"`
	QueueLength   int64              `json:"queue_length"`
}

type UpdateLeadTimeInput struct {
	NotifyBeforeMinutes int `json:"notify_before_minutes" validate:"gte=0"`
}

type TicketListOutput struct {
	Active  []models.QueueTicket `json:"active"`
	History []models.QueueTicket `json:"history"`
}

// TicketSignalInput carries an external service signal for one ticket.
type TicketSignalInput struct {
	TicketID  string
	CenterID  string
	Timestamp time.Time
}

type PassClaims struct {
	TicketID     string    `json:"ticket_id"`
	CenterID     string    `json:"center_id"`
	TicketNumber int64     `json:"ticket_number"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type PassVerification struct {
	Claims PassClaims         `json:"claims"`
	Ticket models.QueueTicket `json:"ticket"`
}

type RefresherStatus struct {
	IsRunning     bool      `json:"is_running"`
	StartedAt     time.Time `json:"started_at,omitempty"`
	LastRefreshed time.Time `json:"last_refreshed,omitempty"`
	RefreshCount  int64     `json:"refresh_count"`
	ErrorCount    int64     `json:"error_count"`
	Centers       int       `json:"centers"`
}
