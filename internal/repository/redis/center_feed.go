package repository

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/vogiaan1904/spotqueue/internal/models"
	"github.com/vogiaan1904/spotqueue/pkg/logger"
)

// CenterFeed reads and writes the center list kept in a Redis hash, one
// JSON record per field keyed by center id.
type CenterFeed interface {
	FetchCenters(ctx context.Context) ([]models.ServiceCenter, error)
	ReplaceCenters(ctx context.Context, cs []models.ServiceCenter) error
}

type redisCenterFeed struct {
	cli *redis.Client
	key string
	l   logger.Logger
}

func NewRedisCenterFeed(cli *redis.Client, key string, l logger.Logger) CenterFeed {
	return &redisCenterFeed{
		cli: cli,
		key: key,
		l:   l,
	}
}

func (r *redisCenterFeed) FetchCenters(ctx context.Context) ([]models.ServiceCenter, error) {
	res, err := r.cli.HGetAll(ctx, r.key).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisCenterFeed.FetchCenters: %v", err)
		return nil, err
	}

	cs := make([]models.ServiceCenter, 0, len(res))
	for id, raw := range res {
		var c models.ServiceCenter
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			r.l.Errorf(ctx, "redisCenterFeed.FetchCenters: center %s: %v", id, err)
			return nil, fmt.Errorf("decode center %s: %w", id, err)
		}
		if c.ID == "" {
			c.ID = id
		}
		cs = append(cs, c)
	}

	slices.SortFunc(cs, func(a, b models.ServiceCenter) int {
		return compareIDs(a.ID, b.ID)
	})

	r.l.Debugf(ctx, "redisCenterFeed.FetchCenters: %d centers from %s", len(cs), r.key)

	return cs, nil
}

// ReplaceCenters swaps the whole hash in one MULTI/EXEC so readers never
// see a partial list.
func (r *redisCenterFeed) ReplaceCenters(ctx context.Context, cs []models.ServiceCenter) error {
	values := make([]any, 0, 2*len(cs))
	for _, c := range cs {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("center %q: %w", c.ID, err)
		}
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal center: %w", err)
		}
		values = append(values, c.ID, string(data))
	}

	_, err := r.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(values) > 0 {
			pipe.HSet(ctx, r.key, values...)
		}
		return nil
	})
	if err != nil {
		r.l.Errorf(ctx, "redisCenterFeed.ReplaceCenters: %v", err)
		return err
	}

	r.l.Infof(ctx, "redisCenterFeed.ReplaceCenters: %d centers written to %s", len(cs), r.key)

	return nil
}

// compareIDs orders numeric ids numerically and everything else lexically.
func compareIDs(a, b string) int {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		return cmp.Compare(ai, bi)
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	}
	return cmp.Compare(a, b)
}
