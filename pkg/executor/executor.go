// Package executor 弹性线程池：线程数在 [min, max] 之间按积压伸缩，空闲超时回收
package executor

import (
	"context"
	"sync"
	"time"

	"github.com/dzm2020/gconc/pkg/future"
	"github.com/dzm2020/gconc/pkg/glog"
	"github.com/dzm2020/gconc/pkg/lib/event"
	"github.com/dzm2020/gconc/pkg/lib/grs"
	"github.com/dzm2020/gconc/pkg/metrics"
	"github.com/dzm2020/gconc/pkg/queue"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Task 提交给线程池的任务，参数由闭包捕获；ctx 在 Kill 时取消
type Task func(ctx context.Context) error

type job struct {
	task Task
	drop func(error) // 任务未执行就被丢弃时回调
}

type State int32

const (
	StateRunning State = iota
	StateShuttingDown
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateShutdown:
		return "shutdown"
	}
	return "unknown"
}

type Executor struct {
	cfg     Config
	clock   Clock
	metrics *metrics.PoolMetrics
	queue   *queue.Queue[job]
	events  *event.Listener[Event]

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      State
	workers    map[*worker]struct{}
	largest    int
	seq        uint64
	terminated chan struct{}

	idle      atomic.Int64
	completed atomic.Uint64
	scheduled atomic.Uint64
}

// New 使用默认配置创建线程池
func New(opts ...Option) (*Executor, error) {
	return NewWithConfig(DefaultConfig(), opts...)
}

// NewWithConfig 以 cfg 为基础创建线程池并立即启动 MinSize 个线程
func NewWithConfig(cfg Config, opts ...Option) (*Executor, error) {
	o := &options{cfg: cfg, clock: systemClock{}}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.cfg.validate(); err != nil {
		return nil, err
	}
	if o.cfg.Name == "" {
		o.cfg.Name = DefaultName
	}
	if o.cfg.Fallback == "" {
		o.cfg.Fallback = FallbackAbort
	}
	e := &Executor{
		cfg:        o.cfg,
		clock:      o.clock,
		metrics:    o.metrics.Pool(o.cfg.Name),
		queue:      queue.New[job](),
		events:     event.NewListener[Event](),
		workers:    make(map[*worker]struct{}, o.cfg.MinSize),
		terminated: make(chan struct{}),
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())

	e.mu.Lock()
	started := make([]*worker, 0, e.cfg.MinSize)
	for i := 0; i < e.cfg.MinSize; i++ {
		started = append(started, e.spawnLocked(nil))
	}
	e.mu.Unlock()
	for _, w := range started {
		e.notify(EventWorkerStarted, w.id, nil)
	}
	glog.Info("executor started", zap.String("pool", e.cfg.Name),
		zap.Int("min", e.cfg.MinSize), zap.Int("max", e.cfg.MaxSize), zap.Duration("idleTimeout", e.cfg.IdleTimeout))
	return e, nil
}

// Post 提交任务，线程池不在运行状态时返回 ErrRejectedExecution
func (e *Executor) Post(task Task) error {
	if task == nil {
		return ErrNilTask
	}
	return e.post(job{task: task})
}

// Submit 提交带返回值的任务，结果通过 future 获取
func (e *Executor) Submit(fn func(ctx context.Context) (interface{}, error)) (*future.Future, error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	f := future.New()
	err := e.post(job{
		task: func(ctx context.Context) error {
			returned := false
			defer func() {
				if !returned {
					f.Reject(ErrAbnormalExit)
				}
			}()
			var v interface{}
			err := grs.Try(func() (err error) {
				v, err = fn(ctx)
				return
			})
			returned = true
			f.Complete(v, err)
			return err
		},
		drop: func(err error) { f.Reject(err) },
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (e *Executor) post(j job) error {
	e.mu.Lock()
	if e.state != StateRunning {
		e.mu.Unlock()
		e.metrics.Task("rejected")
		return ErrRejectedExecution
	}
	size := len(e.workers)
	if e.cfg.MaxQueue > 0 && e.queue.Len() >= e.cfg.MaxQueue {
		if size < e.cfg.MaxSize {
			// 队列已满但还能扩容，任务直接交给新线程
			w := e.spawnLocked(&j)
			e.scheduled.Inc()
			e.mu.Unlock()
			e.notify(EventWorkerStarted, w.id, nil)
			return nil
		}
		e.mu.Unlock()
		return e.fallback(j)
	}

	// 只有 Kill 会关闭队列，Kill 在持锁时先修改状态
	_ = e.queue.Push(j)
	e.scheduled.Inc()
	backlog := e.queue.Len()
	var spawned *worker
	if size < e.cfg.MaxSize && (size == 0 || backlog-int(e.idle.Load()) > e.cfg.BacklogThreshold) {
		spawned = e.spawnLocked(nil)
	}
	e.mu.Unlock()

	e.metrics.SetQueueLength(backlog)
	if spawned != nil {
		e.notify(EventWorkerStarted, spawned.id, nil)
	}
	return nil
}

func (e *Executor) fallback(j job) error {
	switch e.cfg.Fallback {
	case FallbackDiscard:
		glog.Warn("executor queue full, task discarded", zap.String("pool", e.cfg.Name), zap.Int("maxQueue", e.cfg.MaxQueue))
		e.metrics.Task("discarded")
		if j.drop != nil {
			j.drop(ErrRejectedExecution)
		}
		return nil
	case FallbackCallerRuns:
		e.scheduled.Inc()
		e.runTask(e.ctx, j.task, 0)
		return nil
	default:
		e.metrics.Task("rejected")
		return errors.WithMessagef(ErrRejectedExecution, "queue full (%d)", e.cfg.MaxQueue)
	}
}

func (e *Executor) spawnLocked(first *job) *worker {
	e.seq++
	w := newWorker(e, e.seq, first)
	e.workers[w] = struct{}{}
	if n := len(e.workers); n > e.largest {
		e.largest = n
	}
	e.metrics.SetWorkers(len(e.workers))
	e.metrics.WorkerEvent("spawned")
	w.start()
	return w
}

// runTask 任务的错误和 panic 都在这里截获，不会影响执行它的线程
func (e *Executor) runTask(ctx context.Context, task Task, workerID uint64) {
	err := grs.Try(func() error { return task(ctx) })
	e.completed.Inc()
	if err == nil {
		e.metrics.Task("completed")
		return
	}
	e.metrics.Task("failed")
	glog.Error("executor task failed", zap.String("pool", e.cfg.Name), zap.Uint64("worker", workerID), zap.Error(err))
	e.notify(EventTaskFailed, workerID, err)
}

func (e *Executor) take() (job, bool, error) {
	e.metrics.SetIdle(int(e.idle.Inc()))
	defer func() { e.metrics.SetIdle(int(e.idle.Dec())) }()

	ctx := e.ctx
	if e.cfg.IdleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(e.ctx, e.cfg.IdleTimeout)
		defer cancel()
	}
	return e.queue.Pop(ctx)
}

// tryRetire 空闲超时的线程只有在运行状态、队列为空且线程数大于 min 时才能退出
func (e *Executor) tryRetire(w *worker) bool {
	e.mu.Lock()
	if _, ok := e.workers[w]; !ok || e.state != StateRunning || e.queue.Len() > 0 || len(e.workers) <= e.cfg.MinSize {
		e.mu.Unlock()
		return false
	}
	delete(e.workers, w)
	size := len(e.workers)
	e.mu.Unlock()

	e.metrics.SetWorkers(size)
	e.metrics.WorkerEvent("retired")
	glog.Debug("executor worker retired", zap.String("pool", e.cfg.Name), zap.Uint64("worker", w.id),
		zap.Duration("idle", e.clock.Now().Sub(w.lastActive.Load())), zap.Int("size", size))
	e.notify(EventWorkerRetired, w.id, nil)
	return true
}

func (e *Executor) workerExit(w *worker, typ EventType) {
	e.mu.Lock()
	if _, ok := e.workers[w]; !ok {
		e.mu.Unlock()
		return
	}
	delete(e.workers, w)
	size := len(e.workers)
	done := e.tryTerminateLocked()
	e.mu.Unlock()

	e.metrics.SetWorkers(size)
	e.metrics.WorkerEvent("stopped")
	e.notify(typ, w.id, nil)
	if done {
		e.onTerminated()
	}
}

// workerDied 线程非正常退出，必要时补一个新线程
func (e *Executor) workerDied(w *worker) {
	e.mu.Lock()
	if _, ok := e.workers[w]; !ok {
		e.mu.Unlock()
		return
	}
	delete(e.workers, w)
	size := len(e.workers)
	var replacement *worker
	switch e.state {
	case StateRunning:
		if size < e.cfg.MinSize || (size == 0 && e.queue.Len() > 0) {
			replacement = e.spawnLocked(nil)
		}
	case StateShuttingDown:
		if size == 0 && e.queue.Len() > 0 {
			replacement = e.spawnLocked(nil)
		}
	}
	done := replacement == nil && e.tryTerminateLocked()
	e.mu.Unlock()

	e.metrics.SetWorkers(size)
	e.metrics.WorkerEvent("died")
	glog.Warn("executor worker exited unexpectedly", zap.String("pool", e.cfg.Name), zap.Uint64("worker", w.id))
	e.notify(EventWorkerDied, w.id, nil)
	if replacement != nil {
		e.metrics.WorkerEvent("replaced")
		glog.Info("executor worker replaced", zap.String("pool", e.cfg.Name),
			zap.Uint64("dead", w.id), zap.Uint64("worker", replacement.id))
		e.notify(EventWorkerReplaced, replacement.id, nil)
	}
	if done {
		e.onTerminated()
	}
}

func (e *Executor) tryTerminateLocked() bool {
	if e.state != StateShuttingDown || len(e.workers) > 0 {
		return false
	}
	e.state = StateShutdown
	e.cancel()
	e.queue.Close()
	close(e.terminated)
	return true
}

func (e *Executor) onTerminated() {
	glog.Info("executor terminated", zap.String("pool", e.cfg.Name), zap.Uint64("completed", e.completed.Load()))
	e.notify(EventTerminated, 0, nil)
}

// Shutdown 不再接收新任务，已排队的任务执行完后线程退出，立即返回
func (e *Executor) Shutdown() {
	e.mu.Lock()
	if e.state != StateRunning {
		e.mu.Unlock()
		return
	}
	e.state = StateShuttingDown
	for range e.workers {
		_ = e.queue.PushStop()
	}
	pending := e.queue.Len() - len(e.workers)
	done := e.tryTerminateLocked()
	e.mu.Unlock()

	glog.Info("executor shutting down", zap.String("pool", e.cfg.Name), zap.Int("pending", pending))
	if done {
		e.onTerminated()
	}
}

// WaitForTermination 等待所有线程退出
func (e *Executor) WaitForTermination(ctx context.Context) error {
	select {
	case <-e.terminated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Executor) ShutdownAndWait(ctx context.Context) error {
	e.Shutdown()
	return e.WaitForTermination(ctx)
}

// Kill 立即关闭：取消所有线程的 ctx 并丢弃排队的任务，不等待正在执行的任务
func (e *Executor) Kill() []Task {
	e.mu.Lock()
	if e.state == StateShutdown {
		e.mu.Unlock()
		return nil
	}
	e.state = StateShutdown
	abandoned := len(e.workers)
	e.workers = make(map[*worker]struct{})
	e.cancel()
	dropped := e.queue.Close()
	close(e.terminated)
	e.mu.Unlock()

	tasks := make([]Task, 0, len(dropped))
	for _, j := range dropped {
		if j.drop != nil {
			j.drop(ErrRejectedExecution)
		}
		tasks = append(tasks, j.task)
	}
	e.metrics.SetWorkers(0)
	e.metrics.SetQueueLength(0)
	glog.Warn("executor killed", zap.String("pool", e.cfg.Name),
		zap.Int("abandoned", abandoned), zap.Int("dropped", len(tasks)))
	e.notify(EventTerminated, 0, nil)
	return tasks
}

func (e *Executor) notify(typ EventType, workerID uint64, err error) {
	if e.events.Len() == 0 {
		return
	}
	e.events.Notify(Event{Type: typ, Pool: e.cfg.Name, WorkerID: workerID, Err: err, Time: e.clock.Now()})
}

// Events 线程生命周期事件，监听函数在触发事件的协程上同步执行
func (e *Executor) Events() *event.Listener[Event] {
	return e.events
}

func (e *Executor) Name() string               { return e.cfg.Name }
func (e *Executor) Min() int                   { return e.cfg.MinSize }
func (e *Executor) Max() int                   { return e.cfg.MaxSize }
func (e *Executor) IdleTimeout() time.Duration { return e.cfg.IdleTimeout }
func (e *Executor) IdleCount() int             { return int(e.idle.Load()) }
func (e *Executor) QueueLength() int           { return e.queue.Len() }
func (e *Executor) CompletedTaskCount() uint64 { return e.completed.Load() }
func (e *Executor) ScheduledTaskCount() uint64 { return e.scheduled.Load() }

func (e *Executor) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.workers)
}

func (e *Executor) LargestSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.largest
}

func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Executor) IsRunning() bool  { return e.State() == StateRunning }
func (e *Executor) IsShutdown() bool { return e.State() == StateShutdown }
