package directory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/spotqueue/config"
	"github.com/vogiaan1904/spotqueue/internal/models"
	"github.com/vogiaan1904/spotqueue/pkg/logger"
)

func newTestDirectory(t *testing.T, feed Feed) *Directory {
	t.Helper()
	return New(feed, config.DirectoryConfig{FetchTimeout: time.Second}, logger.InitializeTestZapLogger())
}

func seeded(t *testing.T) *Directory {
	t.Helper()
	d := newTestDirectory(t, NewStaticFeed(DefaultCenters()...))
	require.NoError(t, d.Refresh(context.Background()))
	return d
}

func TestDirectory_RefreshAndGet(t *testing.T) {
	d := seeded(t)

	c, err := d.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "Hospitali ya Muhimbili", c.Name)
	assert.Equal(t, int64(15), c.QueueLength)
	assert.Equal(t, 45, c.WaitTimeEstimateMinutes)

	_, err = d.Get("missing")
	assert.ErrorIs(t, err, models.ErrCenterNotFound)

	ids := []string{}
	for _, c := range d.List() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids)
	assert.Equal(t, 5, d.Stats().Centers)
}

func TestDirectory_FailedRefreshKeepsSnapshot(t *testing.T) {
	fail := false
	feed := FeedFunc(func(ctx context.Context) ([]models.ServiceCenter, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return DefaultCenters(), nil
	})
	d := newTestDirectory(t, feed)
	require.NoError(t, d.Refresh(context.Background()))
	require.NoError(t, d.Update("2", func(tx *CenterTx) error {
		tx.IncrementQueue()
		return nil
	}))
	before := d.List()

	fail = true
	err := d.Refresh(context.Background())
	assert.ErrorIs(t, err, models.ErrDirectoryUnavailable)
	assert.Equal(t, before, d.List())
	assert.Equal(t, int64(1), d.Stats().FailedRefresh)
}

func TestDirectory_RefreshRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name    string
		centers []models.ServiceCenter
	}{
		{"empty id", []models.ServiceCenter{{ID: ""}}},
		{"negative queue", []models.ServiceCenter{{ID: "a", QueueLength: -1}}},
		{"duplicate id", []models.ServiceCenter{{ID: "a"}, {ID: "a"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := seeded(t)
			err := d.Refresh(context.Background())
			require.NoError(t, err)

			d.feed = NewStaticFeed(tt.centers...)
			err = d.Refresh(context.Background())
			assert.ErrorIs(t, err, models.ErrDirectoryUnavailable)
			assert.ErrorIs(t, err, models.ErrInvalidCenter)
			assert.Len(t, d.List(), 5)
		})
	}
}

func TestDirectory_ProviderTimeout(t *testing.T) {
	feed := FeedFunc(func(ctx context.Context) ([]models.ServiceCenter, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	d := New(feed, config.DirectoryConfig{FetchTimeout: 10 * time.Millisecond}, logger.InitializeTestZapLogger())

	err := d.Refresh(context.Background())
	assert.ErrorIs(t, err, models.ErrDirectoryUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, d.List())
}

func TestDirectory_RefreshReplacesWholesale(t *testing.T) {
	d := seeded(t)

	d.feed = NewStaticFeed(models.ServiceCenter{ID: "9", Name: "New", QueueLength: 3})
	require.NoError(t, d.Refresh(context.Background()))

	_, err := d.Get("1")
	assert.ErrorIs(t, err, models.ErrCenterNotFound)
	c, err := d.Get("9")
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.QueueLength)
}

func TestDirectory_ConcurrentRefreshIsCoalesced(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	feed := FeedFunc(func(ctx context.Context) ([]models.ServiceCenter, error) {
		calls.Add(1)
		<-release
		return DefaultCenters(), nil
	})
	d := newTestDirectory(t, feed)

	var wg sync.WaitGroup
	for range 5 {
		wg.Go(func() {
			assert.NoError(t, d.Refresh(context.Background()))
		})
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestCenterTx_DecrementFlooredAtZero(t *testing.T) {
	d := newTestDirectory(t, NewStaticFeed(models.ServiceCenter{ID: "z", QueueLength: 1}))
	require.NoError(t, d.Refresh(context.Background()))

	var got []int64
	err := d.Update("z", func(tx *CenterTx) error {
		got = append(got, tx.DecrementQueue(), tx.DecrementQueue())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0}, got)

	c, _ := d.Get("z")
	assert.Equal(t, int64(0), c.QueueLength)
}

func TestDirectory_UpdateUnknownCenter(t *testing.T) {
	d := seeded(t)

	called := false
	err := d.Update("nope", func(tx *CenterTx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, models.ErrCenterNotFound)
	assert.False(t, called)
}

func TestDirectory_RefreshWaitsForUpdate(t *testing.T) {
	d := seeded(t)
	d.feed = NewStaticFeed(models.ServiceCenter{ID: "2", QueueLength: 0})

	inside := make(chan struct{})
	proceed := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- d.Update("1", func(tx *CenterTx) error {
			close(inside)
			<-proceed
			tx.IncrementQueue()
			return nil
		})
	}()
	<-inside

	refreshed := make(chan error, 1)
	go func() { refreshed <- d.Refresh(context.Background()) }()

	select {
	case <-refreshed:
		t.Fatal("refresh swapped the snapshot while a center was locked")
	case <-time.After(30 * time.Millisecond):
	}

	close(proceed)
	require.NoError(t, <-done)
	require.NoError(t, <-refreshed)

	_, err := d.Get("1")
	assert.ErrorIs(t, err, models.ErrCenterNotFound)
}

func TestDirectory_RefreshKeepsIssuedSlots(t *testing.T) {
	d := seeded(t)
	inc := func(id string) int64 {
		var n int64
		require.NoError(t, d.Update(id, func(tx *CenterTx) error {
			n = tx.IncrementQueue()
			return nil
		}))
		return n
	}

	assert.Equal(t, int64(16), inc("1"))
	assert.Equal(t, int64(9), inc("2"))
	require.NoError(t, d.Refresh(context.Background()))

	c, err := d.Get("1")
	require.NoError(t, err)
	assert.Equal(t, int64(16), c.QueueLength)
	assert.Equal(t, int64(17), inc("1"))

	// a new baseline still carries the issued slots
	d.feed = NewStaticFeed(models.ServiceCenter{ID: "1", QueueLength: 3}, models.ServiceCenter{ID: "2", QueueLength: 8})
	require.NoError(t, d.Refresh(context.Background()))
	c, _ = d.Get("1")
	assert.Equal(t, int64(5), c.QueueLength)

	// a center that leaves the directory forgets its slots
	d.feed = NewStaticFeed(models.ServiceCenter{ID: "1", QueueLength: 3})
	require.NoError(t, d.Refresh(context.Background()))
	d.feed = NewStaticFeed(models.ServiceCenter{ID: "1", QueueLength: 3}, models.ServiceCenter{ID: "2", QueueLength: 8})
	require.NoError(t, d.Refresh(context.Background()))
	c, _ = d.Get("2")
	assert.Equal(t, int64(8), c.QueueLength)
}

func TestDirectory_RefreshAfterDecrement(t *testing.T) {
	d := newTestDirectory(t, NewStaticFeed(models.ServiceCenter{ID: "z", QueueLength: 1}))
	require.NoError(t, d.Refresh(context.Background()))

	require.NoError(t, d.Update("z", func(tx *CenterTx) error {
		tx.IncrementQueue()
		tx.DecrementQueue()
		tx.DecrementQueue()
		return nil
	}))
	c, _ := d.Get("z")
	assert.Equal(t, int64(0), c.QueueLength)

	require.NoError(t, d.Refresh(context.Background()))
	c, _ = d.Get("z")
	assert.Equal(t, int64(1), c.QueueLength)
}

func TestDirectory_CancelledCallerDoesNotFailSharedRefresh(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	feed := FeedFunc(func(ctx context.Context) ([]models.ServiceCenter, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return DefaultCenters(), nil
	})
	d := newTestDirectory(t, feed)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- d.Refresh(ctx) }()
	<-started

	second := make(chan error, 1)
	go func() { second <- d.Refresh(context.Background()) }()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)
	close(release)

	require.NoError(t, <-second)
	assert.Equal(t, 5, d.Stats().Centers)
}
