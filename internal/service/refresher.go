package service

import (
	"context"
	"sync"
	"time"

	"github.com/vogiaan1904/spotqueue/internal/directory"
	"github.com/vogiaan1904/spotqueue/pkg/logger"
)

// DirectoryRefresher reloads the center directory on a fixed interval.
type DirectoryRefresher interface {
	Start(ctx context.Context) error
	Stop() error
	GetStatus() RefresherStatus
}

type RefresherConfig struct {
	Interval        time.Duration
	ShutdownTimeout time.Duration
}

type directoryRefresher struct {
	dir *directory.Directory
	l   logger.Logger
	cfg RefresherConfig

	mu        sync.RWMutex
	isRunning bool
	startedAt time.Time
	stopCh    chan struct{}
	ticker    *time.Ticker
	wg        sync.WaitGroup

	lastRefreshed time.Time
	refreshCount  int64
	errorCount    int64
}

func NewDirectoryRefresher(dir *directory.Directory, l logger.Logger, cfg RefresherConfig) DirectoryRefresher {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &directoryRefresher{
		dir: dir,
		l:   l,
		cfg: cfg,
	}
}

func (r *directoryRefresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return ErrRefresherRunning
	}

	r.l.Infof(ctx, "Starting directory refresher with interval %s", r.cfg.Interval)

	r.isRunning = true
	r.startedAt = time.Now()
	r.stopCh = make(chan struct{})
	r.ticker = time.NewTicker(r.cfg.Interval)

	stopCh, tickC := r.stopCh, r.ticker.C
	r.wg.Go(func() {
		r.loop(ctx, stopCh, tickC)
	})

	return nil
}

func (r *directoryRefresher) Stop() error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return ErrRefresherNotRunning
	}
	close(r.stopCh)
	r.ticker.Stop()
	r.isRunning = false
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.l.Info(context.Background(), "Directory refresher stopped gracefully")
	case <-time.After(r.cfg.ShutdownTimeout):
		r.l.Warn(context.Background(), "Directory refresher shutdown timeout exceeded")
	}

	return nil
}

func (r *directoryRefresher) loop(ctx context.Context, stopCh <-chan struct{}, tickC <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			r.l.Info(ctx, "Directory refresher stopped due to context cancellation")
			return
		case <-stopCh:
			return
		case <-tickC:
			r.refreshOnce(ctx)
		}
	}
}

func (r *directoryRefresher) refreshOnce(ctx context.Context) {
	err := r.dir.Refresh(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.errorCount++
		r.l.Errorf(ctx, "service.directoryRefresher.refreshOnce: %v", err)
		return
	}
	r.refreshCount++
	r.lastRefreshed = time.Now()
}

func (r *directoryRefresher) GetStatus() RefresherStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RefresherStatus{
		IsRunning:     r.isRunning,
		StartedAt:     r.startedAt,
		LastRefreshed: r.lastRefreshed,
		RefreshCount:  r.refreshCount,
		ErrorCount:    r.errorCount,
		Centers:       r.dir.Stats().Centers,
	}
}
