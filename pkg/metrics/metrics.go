// Package metrics 线程池与 actor 运行时的 prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gconc"

// Metrics 所有指标，方法对 nil 接收者安全，未配置指标时无需判断
type Metrics struct {
	// 线程池
	PoolWorkers      *prometheus.GaugeVec
	PoolIdleWorkers  *prometheus.GaugeVec
	PoolQueueLength  *prometheus.GaugeVec
	PoolTasks        *prometheus.CounterVec // result: completed, failed, rejected, discarded
	PoolWorkerEvents *prometheus.CounterVec // event: spawned, retired, died, replaced, stopped

	// actor
	Actors            prometheus.Gauge
	ActorMessages     prometheus.Counter
	ActorFailures     prometheus.Counter
	ActorRestarts     prometheus.Counter
	ActorTerminations prometheus.Counter
	ActorDeadLetters  prometheus.Counter
}

// NewMetrics 在 registerer 上注册所有指标，registerer 为 nil 时使用 prometheus.DefaultRegisterer
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)
	return &Metrics{
		PoolWorkers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_workers",
			Help:      "Current number of worker goroutines",
		}, []string{"pool"}),
		PoolIdleWorkers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_idle_workers",
			Help:      "Current number of idle worker goroutines",
		}, []string{"pool"}),
		PoolQueueLength: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_queue_length",
			Help:      "Tasks waiting in the pool queue",
		}, []string{"pool"}),
		PoolTasks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_tasks_total",
			Help:      "Tasks by outcome",
		}, []string{"pool", "result"}),
		PoolWorkerEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_worker_events_total",
			Help:      "Worker lifecycle events",
		}, []string{"pool", "event"}),
		Actors: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actors",
			Help:      "Live actors",
		}),
		ActorMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_messages_total",
			Help:      "Messages processed by actor behaviours",
		}),
		ActorFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_failures_total",
			Help:      "Actor behaviour failures",
		}),
		ActorRestarts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_restarts_total",
			Help:      "Actor restarts",
		}),
		ActorTerminations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_terminations_total",
			Help:      "Actors terminated",
		}),
		ActorDeadLetters: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_dead_letters_total",
			Help:      "Messages sent to terminated actors",
		}),
	}
}

// Pool 绑定池名后的视图
func (m *Metrics) Pool(name string) *PoolMetrics {
	if m == nil {
		return nil
	}
	return &PoolMetrics{m: m, name: name}
}

// PoolMetrics 单个线程池的指标
type PoolMetrics struct {
	m    *Metrics
	name string
}

func (p *PoolMetrics) SetWorkers(n int) {
	if p == nil {
		return
	}
	p.m.PoolWorkers.WithLabelValues(p.name).Set(float64(n))
}

func (p *PoolMetrics) SetIdle(n int) {
	if p == nil {
		return
	}
	p.m.PoolIdleWorkers.WithLabelValues(p.name).Set(float64(n))
}

func (p *PoolMetrics) SetQueueLength(n int) {
	if p == nil {
		return
	}
	p.m.PoolQueueLength.WithLabelValues(p.name).Set(float64(n))
}

func (p *PoolMetrics) Task(result string) {
	if p == nil {
		return
	}
	p.m.PoolTasks.WithLabelValues(p.name, result).Inc()
}

func (p *PoolMetrics) WorkerEvent(event string) {
	if p == nil {
		return
	}
	p.m.PoolWorkerEvents.WithLabelValues(p.name, event).Inc()
}

func (m *Metrics) ActorStarted() {
	if m == nil {
		return
	}
	m.Actors.Inc()
}

func (m *Metrics) ActorTerminated() {
	if m == nil {
		return
	}
	m.Actors.Dec()
	m.ActorTerminations.Inc()
}

func (m *Metrics) MessageProcessed() {
	if m == nil {
		return
	}
	m.ActorMessages.Inc()
}

func (m *Metrics) Failure() {
	if m == nil {
		return
	}
	m.ActorFailures.Inc()
}

func (m *Metrics) Restart() {
	if m == nil {
		return
	}
	m.ActorRestarts.Inc()
}

func (m *Metrics) DeadLetter() {
	if m == nil {
		return
	}
	m.ActorDeadLetters.Inc()
}
