package kafka

import "github.com/vogiaan1904/spotqueue/internal/models"

const (
	TopicTicketBooked          = "ticket.booked"
	TopicTicketCancelled       = "ticket.cancelled"
	TopicTicketReady           = "ticket.ready"
	TopicTicketCompleted       = "ticket.completed"
	TopicTicketLeadTimeUpdated = "ticket.lead_time_updated"

	TopicCenterTicketReady     = "center.ticket_ready"
	TopicCenterTicketCompleted = "center.ticket_completed"
)

// TopicFor returns the topic a lifecycle event is published to.
func TopicFor(typ models.TicketEventType) string {
	switch typ {
	case models.TicketEventBooked:
		return TopicTicketBooked
	case models.TicketEventCancelled:
		return TopicTicketCancelled
	case models.TicketEventReady:
		return TopicTicketReady
	case models.TicketEventCompleted:
		return TopicTicketCompleted
	case models.TicketEventLeadTimeUpdated:
		return TopicTicketLeadTimeUpdated
	}
	return string(typ)
}
