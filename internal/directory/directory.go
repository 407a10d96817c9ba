// Package directory holds the in-process snapshot of service centers.
//
// The snapshot is replaced wholesale by Refresh. The only field the engine
// mutates is a center's queue length, and only through the CenterTx handle
// handed out by Update while the center is locked. Slots the engine issued
// are tracked per center and re-applied on top of each refreshed baseline
// until the center leaves the directory.
package directory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vogiaan1904/spotqueue/config"
	"github.com/vogiaan1904/spotqueue/internal/models"
	"github.com/vogiaan1904/spotqueue/pkg/logger"
	"golang.org/x/sync/singleflight"
)

type entry struct {
	center      models.ServiceCenter
	queueLength atomic.Int64
	mu          sync.Mutex
	// issued counts engine-held slots on top of center.QueueLength.
	// Guarded by mu, or by the directory write lock during a swap.
	issued int64
}

func (e *entry) snapshot() models.ServiceCenter {
	c := e.center
	c.QueueLength = e.queueLength.Load()
	return c
}

type Stats struct {
	Centers       int       `json:"centers"`
	RefreshedAt   time.Time `json:"refreshed_at,omitempty"`
	RefreshCount  int64     `json:"refresh_count"`
	FailedRefresh int64     `json:"failed_refresh"`
}

type Directory struct {
	feed Feed
	cfg  config.DirectoryConfig
	l    logger.Logger
	sf   singleflight.Group

	mu          sync.RWMutex
	centers     map[string]*entry
	order       []string
	refreshedAt time.Time

	refreshCount atomic.Int64
	failedCount  atomic.Int64
}

func New(feed Feed, cfg config.DirectoryConfig, l logger.Logger) *Directory {
	return &Directory{
		feed:    feed,
		cfg:     cfg,
		l:       l,
		centers: make(map[string]*entry),
	}
}

// Refresh fetches the full center list and swaps it in. On failure the
// previous snapshot is kept and the returned error matches
// models.ErrDirectoryUnavailable. Concurrent calls share one fetch, which
// is bounded by the fetch timeout rather than by any caller's context.
func (d *Directory) Refresh(ctx context.Context) error {
	ch := d.sf.DoChan("refresh", func() (any, error) {
		return nil, d.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Directory) refresh(ctx context.Context) error {
	fetchCtx := ctx
	if d.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, d.cfg.FetchTimeout)
		defer cancel()
	}

	cs, err := d.feed.FetchCenters(fetchCtx)
	if err != nil {
		d.failedCount.Add(1)
		d.l.Warnf(ctx, "directory.Directory.Refresh: %v", err)
		return fmt.Errorf("%w: %w", models.ErrDirectoryUnavailable, err)
	}

	next, order, err := buildSnapshot(cs)
	if err != nil {
		d.failedCount.Add(1)
		d.l.Warnf(ctx, "directory.Directory.Refresh: %v", err)
		return fmt.Errorf("%w: %w", models.ErrDirectoryUnavailable, err)
	}

	d.mu.Lock()
	dropped := 0
	for id, old := range d.centers {
		e, ok := next[id]
		if !ok {
			dropped++
			continue
		}
		e.issued = old.issued
		e.queueLength.Store(e.center.QueueLength + old.issued)
	}
	d.centers = next
	d.order = order
	d.refreshedAt = time.Now()
	d.mu.Unlock()

	d.refreshCount.Add(1)
	d.l.Infof(ctx, "directory.Directory.Refresh: %d centers loaded, %d dropped", len(order), dropped)

	return nil
}

func buildSnapshot(cs []models.ServiceCenter) (map[string]*entry, []string, error) {
	next := make(map[string]*entry, len(cs))
	order := make([]string, 0, len(cs))
	for _, c := range cs {
		if err := c.Validate(); err != nil {
			return nil, nil, fmt.Errorf("center %q: %w", c.ID, err)
		}
		if _, dup := next[c.ID]; dup {
			return nil, nil, fmt.Errorf("center %q: duplicate id: %w", c.ID, models.ErrInvalidCenter)
		}

		e := &entry{center: c}
		e.queueLength.Store(c.QueueLength)
		next[c.ID] = e
		order = append(order, c.ID)
	}
	return next, order, nil
}

func (d *Directory) Get(id string) (models.ServiceCenter, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.centers[id]
	if !ok {
		return models.ServiceCenter{}, models.ErrCenterNotFound
	}
	return e.snapshot(), nil
}

// List returns every center in feed order.
func (d *Directory) List() []models.ServiceCenter {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]models.ServiceCenter, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.centers[id].snapshot())
	}
	return out
}

func (d *Directory) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return Stats{
		Centers:       len(d.order),
		RefreshedAt:   d.refreshedAt,
		RefreshCount:  d.refreshCount.Load(),
		FailedRefresh: d.failedCount.Load(),
	}
}

// Update runs fn with center id locked. Refresh cannot swap the snapshot
// while fn runs, and other Update calls on the same center wait. Calls for
// different centers proceed in parallel.
func (d *Directory) Update(id string, fn func(tx *CenterTx) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.centers[id]
	if !ok {
		return models.ErrCenterNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return fn(&CenterTx{e: e})
}

// CenterTx is valid only inside the Update callback that received it.
type CenterTx struct {
	e *entry
}

func (tx *CenterTx) Center() models.ServiceCenter {
	return tx.e.snapshot()
}

func (tx *CenterTx) IncrementQueue() int64 {
	tx.e.issued++
	return tx.e.queueLength.Add(1)
}

// DecrementQueue lowers the queue length by one, never below zero. The
// engine's issued count is lowered too, also floored at zero.
func (tx *CenterTx) DecrementQueue() int64 {
	if tx.e.issued > 0 {
		tx.e.issued--
	}
	n := tx.e.queueLength.Load()
	if n == 0 {
		return 0
	}
	tx.e.queueLength.Store(n - 1)
	return n - 1
}
