package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewMetricsSingleton(t *testing.T) {
	m1 := NewMetrics()
	m2 := NewMetrics()
	assert.Same(t, m1, m2)
}

func TestRecordDBQuery(t *testing.T) {
	m := NewMetrics()
	assert.NotPanics(t, func() {
		m.RecordDBQuery("select", "customer", 5*time.Millisecond, nil)
	})
}

func TestRecordReflection(t *testing.T) {
	m := NewMetrics()

	t.Run("success outcome", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordReflection("public", "success", 10*time.Millisecond)
		})
	})

	t.Run("failure outcome", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordReflection("public", "failure", time.Millisecond)
		})
	})
}

func TestReflectionInFlightToggle(t *testing.T) {
	m := NewMetrics()
	assert.NotPanics(t, func() {
		m.SetReflectionInFlight(true)
		m.SetReflectionInFlight(false)
	})
}

func TestCacheHitMiss(t *testing.T) {
	m := NewMetrics()
	assert.NotPanics(t, func() {
		m.RecordCacheHit()
		m.RecordCacheMiss()
	})
}

func TestRecordSchemaGeneration(t *testing.T) {
	m := NewMetrics()
	assert.NotPanics(t, func() {
		m.RecordSchemaGeneration(2 * time.Millisecond)
	})
}

func TestRecordFetch(t *testing.T) {
	m := NewMetrics()
	assert.NotPanics(t, func() {
		m.RecordFetch("relationship", "orders", 2, 3*time.Millisecond)
	})
}

func TestRecordPreloadBatch(t *testing.T) {
	m := NewMetrics()
	assert.NotPanics(t, func() {
		m.RecordPreloadBatch(42)
	})
}

func TestCDCMetrics(t *testing.T) {
	m := NewMetrics()
	assert.NotPanics(t, func() {
		m.RecordCDCEvent("customer", "INSERT")
		m.RecordCDCDrop("customer")
		m.SetCDCActiveStreams(3)
	})
}
