package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/vogiaan1904/spotqueue/internal/directory"
	"github.com/vogiaan1904/spotqueue/internal/ledger"
	"github.com/vogiaan1904/spotqueue/internal/models"
	"github.com/vogiaan1904/spotqueue/pkg/logger"
)

// EventPublisher delivers ticket lifecycle events to the notification side.
type EventPublisher interface {
	Publish(ctx context.Context, e models.TicketEvent) error
	Close() error
}

type QueueService interface {
	GetCenter(ctx context.Context, centerID string) (models.ServiceCenter, error)
	ListCenters(ctx context.Context) []models.ServiceCenter
	RefreshDirectory(ctx context.Context) error

	BookTicket(ctx context.Context, in BookTicketInput) (*BookTicketOutput, error)
	CancelTicket(ctx context.Context, ticketID string) (models.QueueTicket, error)
	GetTicket(ctx context.Context, ticketID string) (models.QueueTicket, error)
	ListTickets(ctx context.Context) TicketListOutput
	UpdateNotificationLeadTime(ctx context.Context, ticketID string, minutes int) (models.QueueTicket, error)
	VerifyTicketPass(ctx context.Context, token string) (*PassVerification, error)

	HandleTicketReady(ctx context.Context, in TicketSignalInput) error
	HandleTicketCompleted(ctx context.Context, in TicketSignalInput) error
}

type queueService struct {
	dir  *directory.Directory
	lg   *ledger.Ledger
	pass PassSigner
	prod EventPublisher
	l    logger.Logger
}

func NewQueueService(
	dir *directory.Directory,
	lg *ledger.Ledger,
	pass PassSigner,
	prod EventPublisher,
	l logger.Logger,
) QueueService {
	return &queueService{
		dir:  dir,
		lg:   lg,
		pass: pass,
		prod: prod,
		l:    l,
	}
}

func (s *queueService) GetCenter(ctx context.Context, centerID string) (models.ServiceCenter, error) {
	c, err := s.dir.Get(centerID)
	if err != nil {
		s.l.Warnf(ctx, "service.queueService.GetCenter: %s: %v", centerID, err)
		return models.ServiceCenter{}, err
	}
	return c, nil
}

func (s *queueService) ListCenters(ctx context.Context) []models.ServiceCenter {
	return s.dir.List()
}

func (s *queueService) RefreshDirectory(ctx context.Context) error {
	if err := s.dir.Refresh(ctx); err != nil {
		s.l.Errorf(ctx, "service.queueService.RefreshDirectory: %v", err)
		return err
	}
	return nil
}

func (s *queueService) BookTicket(ctx context.Context, in BookTicketInput) (*BookTicketOutput, error) {
	ctx = s.l.WithFields(ctx, "center_id", in.CenterID)

	t, err := s.lg.Book(ctx, in.CenterID, in.NotifyBeforeMinutes)
	if err != nil {
		s.l.Warnf(ctx, "service.queueService.BookTicket: %v", err)
		return nil, err
	}

	pass, expAt, err := s.pass.Sign(t)
	if err != nil {
		// The ticket is already issued; the pass can be re-requested.
		s.l.Errorf(ctx, "service.queueService.BookTicket: %v", err)
	}

	out := &BookTicketOutput{
		Ticket:        t,
		Pass:          pass,
		PassExpiresAt: expAt,
		QueueLength:   t.TicketNumber,
	}
	if c, err := s.dir.Get(t.CenterID); err == nil {
		out.QueueLength = c.QueueLength
	}

	e := models.NewTicketEvent(models.TicketEventBooked, t)
	e.CenterQueueLength = out.QueueLength
	s.publish(ctx, e)

	s.l.Infof(ctx, "Ticket %s booked with number %d", t.ID, t.TicketNumber)

	return out, nil
}

func (s *queueService) CancelTicket(ctx context.Context, ticketID string) (models.QueueTicket, error) {
	t, err := s.lg.Cancel(ctx, ticketID)
	if err != nil {
		s.l.Warnf(ctx, "service.queueService.CancelTicket: %s: %v", ticketID, err)
		return t, err
	}

	s.publish(ctx, models.NewTicketEvent(models.TicketEventCancelled, t))
	s.l.Infof(ctx, "Ticket %s cancelled", ticketID)

	return t, nil
}

func (s *queueService) GetTicket(ctx context.Context, ticketID string) (models.QueueTicket, error) {
	t, err := s.lg.Get(ticketID)
	if err != nil {
		s.l.Warnf(ctx, "service.queueService.GetTicket: %s: %v", ticketID, err)
		return models.QueueTicket{}, err
	}
	return t, nil
}

func (s *queueService) ListTickets(ctx context.Context) TicketListOutput {
	out := TicketListOutput{
		Active:  slices.Collect(s.lg.Active()),
		History: slices.Collect(s.lg.History()),
	}
	if out.Active == nil {
		out.Active = []models.QueueTicket{}
	}
	if out.History == nil {
		out.History = []models.QueueTicket{}
	}
	return out
}

func (s *queueService) UpdateNotificationLeadTime(ctx context.Context, ticketID string, minutes int) (models.QueueTicket, error) {
	t, err := s.lg.UpdateNotificationLeadTime(ticketID, minutes)
	if err != nil {
		s.l.Warnf(ctx, "service.queueService.UpdateNotificationLeadTime: %s: %v", ticketID, err)
		return models.QueueTicket{}, err
	}

	s.publish(ctx, models.NewTicketEvent(models.TicketEventLeadTimeUpdated, t))

	return t, nil
}

func (s *queueService) VerifyTicketPass(ctx context.Context, token string) (*PassVerification, error) {
	claims, err := s.pass.Verify(token)
	if err != nil {
		s.l.Warnf(ctx, "service.queueService.VerifyTicketPass: %v", err)
		return nil, err
	}

	t, err := s.lg.Get(claims.TicketID)
	if err != nil {
		s.l.Warnf(ctx, "service.queueService.VerifyTicketPass: %s: %v", claims.TicketID, err)
		return nil, err
	}

	if !t.IsActive() {
		return nil, ErrPassRevoked
	}

	return &PassVerification{Claims: *claims, Ticket: t}, nil
}

func (s *queueService) HandleTicketReady(ctx context.Context, in TicketSignalInput) error {
	return s.handleSignal(ctx, in, models.TicketEventReady, s.lg.MarkReady)
}

func (s *queueService) HandleTicketCompleted(ctx context.Context, in TicketSignalInput) error {
	return s.handleSignal(ctx, in, models.TicketEventCompleted, s.lg.MarkCompleted)
}

// handleSignal applies an external transition. Unknown tickets and
// redelivered signals are logged and dropped so the consumer does not retry them.
func (s *queueService) handleSignal(
	ctx context.Context,
	in TicketSignalInput,
	typ models.TicketEventType,
	apply func(ticketID string) (models.QueueTicket, error),
) error {
	ctx = s.l.WithFields(ctx, "ticket_id", in.TicketID, "signal", string(typ))

	t, err := apply(in.TicketID)
	switch {
	case errors.Is(err, ErrTicketNotFound):
		s.l.Warnf(ctx, "Ticket not found for %s signal", typ)
		return nil
	case errors.Is(err, ErrInvalidTransition):
		s.l.Warnf(ctx, "Ignoring %s signal for ticket in status %s", typ, t.Status)
		return nil
	case err != nil:
		return fmt.Errorf("failed to apply %s: %w", typ, err)
	}

	if in.CenterID != "" && in.CenterID != t.CenterID {
		s.l.Warnf(ctx, "Signal center %s does not match ticket center %s", in.CenterID, t.CenterID)
	}

	e := models.NewTicketEvent(typ, t)
	if !in.Timestamp.IsZero() {
		e.OccurredAt = in.Timestamp
	}
	s.publish(ctx, e)

	s.l.Infof(ctx, "Ticket %s is now %s", t.ID, t.Status)

	return nil
}

func (s *queueService) publish(ctx context.Context, e models.TicketEvent) {
	if s.prod == nil {
		return
	}

	e.Timestamp = time.Now()
	if err := s.prod.Publish(ctx, e); err != nil {
		s.l.Errorf(ctx, "Failed to publish %s event for ticket %s: %v", e.Type, e.TicketID, err)
	}
}
