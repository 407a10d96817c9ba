// Package ledger issues queue tickets and owns their lifecycle.
package ledger

import (
	"context"
	"errors"
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vogiaan1904/spotqueue/config"
	"github.com/vogiaan1904/spotqueue/internal/directory"
	"github.com/vogiaan1904/spotqueue/internal/models"
	"github.com/vogiaan1904/spotqueue/pkg/logger"
)

type Ledger struct {
	dir *directory.Directory
	cfg config.QueueConfig
	l   logger.Logger
	now func() time.Time

	mu      sync.RWMutex
	tickets map[string]*models.QueueTicket
	order   []string
}

type Option func(*Ledger)

// WithClock overrides the time source used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(lg *Ledger) {
		lg.now = now
	}
}

func New(dir *directory.Directory, cfg config.QueueConfig, l logger.Logger, opts ...Option) *Ledger {
	lg := &Ledger{
		dir:     dir,
		cfg:     cfg,
		l:       l,
		now:     time.Now,
		tickets: make(map[string]*models.QueueTicket),
	}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

// Book reserves the next slot at centerID. The ticket number is the
// center's queue length plus one, and the ticket is recorded and the
// counter incremented under the center's lock.
func (lg *Ledger) Book(ctx context.Context, centerID string, notifyBeforeMinutes int) (models.QueueTicket, error) {
	if notifyBeforeMinutes < 0 {
		return models.QueueTicket{}, models.ErrInvalidLeadTime
	}

	if err := wait(ctx, lg.cfg.BookLatency); err != nil {
		return models.QueueTicket{}, err
	}

	var t models.QueueTicket
	err := lg.dir.Update(centerID, func(tx *directory.CenterTx) error {
		c := tx.Center()
		now := lg.now()
		t = models.QueueTicket{
			ID:                       uuid.New().String(),
			CenterID:                 c.ID,
			CenterName:               c.Name,
			TicketNumber:             c.QueueLength + 1,
			EstimatedWaitTimeMinutes: c.WaitTimeEstimateMinutes,
			Status:                   models.TicketStatusWaiting,
			NotifyBeforeMinutes:      notifyBeforeMinutes,
			CreatedAt:                now,
			UpdatedAt:                now,
		}

		stored := t
		lg.mu.Lock()
		lg.tickets[t.ID] = &stored
		lg.order = append(lg.order, t.ID)
		lg.mu.Unlock()

		tx.IncrementQueue()
		return nil
	})
	if err != nil {
		return models.QueueTicket{}, err
	}

	lg.l.Debugf(ctx, "ledger.Ledger.Book: ticket %s number %d at center %s", t.ID, t.TicketNumber, t.CenterID)
	return t, nil
}

// Cancel moves a waiting or ready ticket to cancelled. Under the release
// policy the center's queue length is decremented in the same critical
// section; under the retain policy it is left alone.
func (lg *Ledger) Cancel(ctx context.Context, ticketID string) (models.QueueTicket, error) {
	if err := wait(ctx, lg.cfg.CancelLatency); err != nil {
		return models.QueueTicket{}, err
	}

	t, err := lg.Get(ticketID)
	if err != nil {
		return models.QueueTicket{}, err
	}

	if lg.cfg.CancelPolicy != config.CancelPolicyRelease {
		return lg.transition(ticketID, (*models.QueueTicket).CanCancel, models.TicketStatusCancelled)
	}

	var out models.QueueTicket
	err = lg.dir.Update(t.CenterID, func(tx *directory.CenterTx) error {
		var terr error
		out, terr = lg.transition(ticketID, (*models.QueueTicket).CanCancel, models.TicketStatusCancelled)
		if terr != nil {
			return terr
		}
		tx.DecrementQueue()
		return nil
	})
	if errors.Is(err, models.ErrCenterNotFound) {
		// The center left the directory; its counter no longer exists.
		return lg.transition(ticketID, (*models.QueueTicket).CanCancel, models.TicketStatusCancelled)
	}
	return out, err
}

// MarkReady records the external signal that the center is ready to serve the ticket.
func (lg *Ledger) MarkReady(ticketID string) (models.QueueTicket, error) {
	return lg.transition(ticketID, (*models.QueueTicket).CanMarkReady, models.TicketStatusReady)
}

// MarkCompleted records the external signal that service was delivered.
func (lg *Ledger) MarkCompleted(ticketID string) (models.QueueTicket, error) {
	return lg.transition(ticketID, (*models.QueueTicket).CanComplete, models.TicketStatusCompleted)
}

func (lg *Ledger) transition(ticketID string, allowed func(*models.QueueTicket) bool, to models.TicketStatus) (models.QueueTicket, error) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	t, ok := lg.tickets[ticketID]
	if !ok {
		return models.QueueTicket{}, models.ErrTicketNotFound
	}
	if !allowed(t) {
		return *t, models.ErrInvalidTransition
	}

	t.Status = to
	t.UpdatedAt = lg.now()
	return *t, nil
}

func (lg *Ledger) UpdateNotificationLeadTime(ticketID string, minutes int) (models.QueueTicket, error) {
	if minutes < 0 {
		return models.QueueTicket{}, models.ErrInvalidLeadTime
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()

	t, ok := lg.tickets[ticketID]
	if !ok {
		return models.QueueTicket{}, models.ErrTicketNotFound
	}

	t.NotifyBeforeMinutes = minutes
	t.UpdatedAt = lg.now()
	return *t, nil
}

func (lg *Ledger) Get(ticketID string) (models.QueueTicket, error) {
	lg.mu.RLock()
	defer lg.mu.RUnlock()

	t, ok := lg.tickets[ticketID]
	if !ok {
		return models.QueueTicket{}, models.ErrTicketNotFound
	}
	return *t, nil
}

// ListByStatus yields, in booking order, copies of the tickets matching pred.
// Each range over the returned sequence reads the ledger afresh.
func (lg *Ledger) ListByStatus(pred func(models.QueueTicket) bool) iter.Seq[models.QueueTicket] {
	return func(yield func(models.QueueTicket) bool) {
		lg.mu.RLock()
		ids := lg.order[:len(lg.order):len(lg.order)]
		lg.mu.RUnlock()

		for _, id := range ids {
			t, err := lg.Get(id)
			if err != nil {
				continue
			}
			if pred != nil && !pred(t) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Active yields waiting and ready tickets.
func (lg *Ledger) Active() iter.Seq[models.QueueTicket] {
	return lg.ListByStatus(models.IsActiveTicket)
}

// History yields completed and cancelled tickets.
func (lg *Ledger) History() iter.Seq[models.QueueTicket] {
	return lg.ListByStatus(models.IsHistoryTicket)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
