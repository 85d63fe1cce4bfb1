package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Pool(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	p := m.Pool("io")
	p.SetWorkers(3)
	p.Task("completed")
	p.Task("completed")
	p.WorkerEvent("spawned")

	assert.Equal(t, 3.0, testutil.ToFloat64(m.PoolWorkers.WithLabelValues("io")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PoolTasks.WithLabelValues("io", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PoolWorkerEvents.WithLabelValues("io", "spawned")))
}

func TestMetrics_Actor(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ActorStarted()
	m.ActorStarted()
	m.ActorTerminated()
	m.Restart()
	m.DeadLetter()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Actors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActorTerminations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActorRestarts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActorDeadLetters))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ActorStarted()
		m.Failure()
		m.Pool("x").Task("completed")
	})
}
