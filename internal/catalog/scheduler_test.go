package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeReflectorForScheduler struct {
	calls int
}

func (f *fakeReflectorForScheduler) ReflectSchema(ctx context.Context, schemaName string) (*Model, error) {
	f.calls++
	return &Model{Tables: map[string]*TableInfo{}}, nil
}

func TestNewSchedulerRejectsInvalidCronExpression(t *testing.T) {
	cache := NewCache(nil, 0)
	_, err := NewScheduler(cache, "public", "not a cron expression")
	assert.Error(t, err)
}

func TestNewSchedulerAcceptsValidCronExpression(t *testing.T) {
	cache := NewCache(nil, 0)
	scheduler, err := NewScheduler(cache, "public", "@every 1h")
	assert.NoError(t, err)
	assert.NotNil(t, scheduler)
}

func TestSchedulerStartStopDoesNotPanic(t *testing.T) {
	reflector := &fakeReflectorForScheduler{}
	cache := &Cache{reflector: reflector, ttl: 0}
	scheduler, err := NewScheduler(cache, "public", "@every 1h")
	assert.NoError(t, err)

	assert.NotPanics(t, func() {
		scheduler.Start()
		scheduler.Stop()
	})
}
