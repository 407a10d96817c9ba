package directory

import (
	"context"
	"slices"

	"github.com/vogiaan1904/spotqueue/internal/models"
)

// Feed is the external provider of the full center list.
type Feed interface {
	FetchCenters(ctx context.Context) ([]models.ServiceCenter, error)
}

type FeedFunc func(ctx context.Context) ([]models.ServiceCenter, error)

func (f FeedFunc) FetchCenters(ctx context.Context) ([]models.ServiceCenter, error) {
	return f(ctx)
}

type StaticFeed struct {
	centers []models.ServiceCenter
}

func NewStaticFeed(centers ...models.ServiceCenter) *StaticFeed {
	return &StaticFeed{centers: centers}
}

func (f *StaticFeed) FetchCenters(ctx context.Context) ([]models.ServiceCenter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(f.centers), nil
}

// DefaultCenters is the seed list used by the static feed.
func DefaultCenters() []models.ServiceCenter {
	return []models.ServiceCenter{
		{ID: "1", Name: "Hospitali ya Muhimbili", Location: "Dar es Salaam", QueueLength: 15, WaitTimeEstimateMinutes: 45, OperatingHours: "08:00 - 17:00"},
		{ID: "2", Name: "TTCL Makao Makuu", Location: "Dar es Salaam", QueueLength: 8, WaitTimeEstimateMinutes: 25, OperatingHours: "08:30 - 16:30"},
		{ID: "3", Name: "Benki ya NMB - Tawi la Kariakoo", Location: "Kariakoo, Dar es Salaam", QueueLength: 22, WaitTimeEstimateMinutes: 65, OperatingHours: "08:00 - 16:00"},
		{ID: "4", Name: "Ofisi ya Uhamiaji", Location: "Arusha", QueueLength: 30, WaitTimeEstimateMinutes: 90, OperatingHours: "09:00 - 15:00"},
		{ID: "5", Name: "TRA Ofisi ya Kodi", Location: "Mwanza", QueueLength: 12, WaitTimeEstimateMinutes: 35, OperatingHours: "08:30 - 16:00"},
	}
}
