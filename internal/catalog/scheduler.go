package catalog

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs a periodic InvalidateAll against a Cache on a cron
// schedule, an alternative to relying solely on TTL-on-read for
// deployments that want a warm, freshly-refreshed Model on a fixed
// cadence rather than refreshing only when a request happens to land
// after expiry.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler builds a Scheduler that invalidates cache for
// schemaName on the given cron expression (standard five-field cron
// syntax). It does not start running until Start is called.
func NewScheduler(cache *Cache, schemaName, cronExpr string) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(cronExpr, func() {
		log.Debug().Str("schema", schemaName).Msg("scheduled catalog refresh triggered")
		cache.InvalidateAll(context.Background())
		if _, err := cache.Get(context.Background(), schemaName); err != nil {
			log.Warn().Err(err).Str("schema", schemaName).Msg("scheduled catalog refresh failed")
		}
	})
	if err != nil {
		return nil, err
	}
	return &Scheduler{cron: c}, nil
}

// Start begins running the scheduled refresh in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler, waiting for any in-progress run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
