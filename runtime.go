// Package gconc 组装线程池与 actor 系统的进程级运行时
package gconc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dzm2020/gconc/internal/logger"
	"github.com/dzm2020/gconc/pkg/actor"
	"github.com/dzm2020/gconc/pkg/config"
	"github.com/dzm2020/gconc/pkg/executor"
	"github.com/dzm2020/gconc/pkg/glog"
	"github.com/dzm2020/gconc/pkg/lib/component"
	"github.com/dzm2020/gconc/pkg/lib/grs"
	"github.com/dzm2020/gconc/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	ErrAlreadyInitialized = errors.New("gconc: already initialized")
	ErrNotInitialized     = errors.New("gconc: not initialized")
)

// Runtime 按 logger → executor → actor 的顺序启动，逆序关闭
type Runtime struct {
	cfg        *config.Config
	registerer prometheus.Registerer
	metrics    *metrics.Metrics
	components *component.Manager[*config.Config]

	executor *executor.Executor
	system   *actor.System
}

type Option func(r *Runtime)

// WithRegisterer 指定指标注册位置，设置后即使配置未开启也会上报
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(r *Runtime) { r.registerer = registerer }
}

// New 创建运行时，Start 之后才可用
func New(cfg *config.Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runtime{cfg: cfg, components: component.NewManager[*config.Config]()}
	for _, opt := range opts {
		opt(r)
	}
	if r.registerer == nil && cfg.Metrics.Enabled {
		r.registerer = prometheus.DefaultRegisterer
	}
	if r.registerer != nil {
		r.metrics = metrics.NewMetrics(r.registerer)
	}

	for _, c := range []component.IComponent[*config.Config]{
		logger.NewComponent(nil),
		&atomicComponent{},
		&executorComponent{r: r},
		&actorComponent{r: r},
	} {
		if err := r.components.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Runtime) Start(ctx context.Context) error {
	if err := r.components.Start(ctx, r.cfg); err != nil {
		return err
	}
	glog.Info("gconc runtime started", zap.Strings("components", r.components.Names()))
	return nil
}

func (r *Runtime) Shutdown(ctx context.Context) error {
	err := r.components.Stop(ctx)
	glog.Info("gconc runtime stopped", zap.Int64("goroutines", grs.Count()), zap.Uint64("recoveredPanics", grs.PanicCount()), zap.Error(err))
	return err
}

func (r *Runtime) Config() *config.Config       { return r.cfg }
func (r *Runtime) Executor() *executor.Executor { return r.executor }
func (r *Runtime) System() *actor.System        { return r.system }

// Metrics 未开启指标时为 nil
func (r *Runtime) Metrics() *metrics.Metrics { return r.metrics }

var (
	mu      sync.Mutex
	current *Runtime
)

// Init 从配置文件初始化并启动进程级运行时，只能成功调用一次
func Init(path string) (*Runtime, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return InitWithConfig(cfg)
}

func InitWithConfig(cfg *config.Config, opts ...Option) (*Runtime, error) {
	mu.Lock()
	defer mu.Unlock()
	if current != nil {
		return nil, ErrAlreadyInitialized
	}
	r, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err = r.Start(context.Background()); err != nil {
		return nil, err
	}
	current = r
	return r, nil
}

// Get 未初始化时返回 nil
func Get() *Runtime {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Shutdown 关闭进程级运行时，之后可以重新 Init
func Shutdown(ctx context.Context) error {
	mu.Lock()
	r := current
	current = nil
	mu.Unlock()
	if r == nil {
		return ErrNotInitialized
	}
	return r.Shutdown(ctx)
}

// ShutdownTimeout 便于在 main 中使用
func ShutdownTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return Shutdown(ctx)
}
