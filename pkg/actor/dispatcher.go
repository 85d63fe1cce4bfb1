package actor

import (
	"context"

	"github.com/dzm2020/gconc/pkg/executor"
	"github.com/dzm2020/gconc/pkg/glog"
	"github.com/dzm2020/gconc/pkg/lib/grs"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultThroughput 单次调度处理的消息数
const DefaultThroughput = 50

// Dispatcher 执行邮箱的消费函数
type Dispatcher interface {
	Schedule(fn func()) error
	// Throughput 单次调度最多处理的消息数，0 表示不限
	Throughput() int
}

var (
	_ Dispatcher = (*ExecutorDispatcher)(nil)
	_ Dispatcher = (*GoroutineDispatcher)(nil)
	_ Dispatcher = (*SynchronizedDispatcher)(nil)
	_ Dispatcher = (*AntsDispatcher)(nil)
)

// ExecutorDispatcher 调度到线程池
type ExecutorDispatcher struct {
	executor   *executor.Executor
	throughput int
}

func NewExecutorDispatcher(e *executor.Executor) *ExecutorDispatcher {
	return &ExecutorDispatcher{executor: e, throughput: DefaultThroughput}
}

func (d *ExecutorDispatcher) Schedule(fn func()) error {
	return d.executor.Post(func(ctx context.Context) error {
		fn()
		return nil
	})
}

func (d *ExecutorDispatcher) Throughput() int { return d.throughput }

func (d *ExecutorDispatcher) Executor() *executor.Executor { return d.executor }

// GoroutineDispatcher 每次调度启动一个协程
type GoroutineDispatcher struct {
	throughput int
}

func NewGoroutineDispatcher() *GoroutineDispatcher {
	return &GoroutineDispatcher{throughput: DefaultThroughput}
}

func (d *GoroutineDispatcher) Schedule(fn func()) error {
	grs.Go(fn, func(err error) {
		glog.Error("actor dispatcher panic", zap.Error(err))
	})
	return nil
}

func (d *GoroutineDispatcher) Throughput() int { return d.throughput }

// SynchronizedDispatcher 在调用方协程上直接执行，主要用于测试
type SynchronizedDispatcher struct{}

func NewSynchronizedDispatcher() *SynchronizedDispatcher {
	return &SynchronizedDispatcher{}
}

func (d *SynchronizedDispatcher) Schedule(fn func()) error {
	fn()
	return nil
}

func (d *SynchronizedDispatcher) Throughput() int { return 0 }

// AntsDispatcher 调度到 ants 协程池；池满时返回错误而不是阻塞
type AntsDispatcher struct {
	pool       *ants.Pool
	throughput int
}

func NewAntsDispatcher(size int) (*AntsDispatcher, error) {
	pool, err := ants.NewPool(size,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(r interface{}) {
			glog.Error("actor ants dispatcher panic", zap.Any("panic", r))
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "actor: create ants pool")
	}
	return &AntsDispatcher{pool: pool, throughput: DefaultThroughput}, nil
}

func (d *AntsDispatcher) Schedule(fn func()) error {
	return d.pool.Submit(fn)
}

func (d *AntsDispatcher) Throughput() int { return d.throughput }

func (d *AntsDispatcher) Running() int { return d.pool.Running() }

// Release 关闭协程池，之后的调度都会失败
func (d *AntsDispatcher) Release() {
	d.pool.Release()
}
