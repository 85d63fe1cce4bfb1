package executor

import (
	"time"

	"github.com/dzm2020/gconc/pkg/metrics"
	"github.com/pkg/errors"
)

const (
	DefaultName        = "default"
	DefaultMaxSize     = 256
	DefaultIdleTimeout = 60 * time.Second
)

// FallbackPolicy 队列满且线程数已达上限时的处理方式
type FallbackPolicy string

const (
	FallbackAbort      FallbackPolicy = "abort"       // 返回 ErrRejectedExecution
	FallbackDiscard    FallbackPolicy = "discard"     // 丢弃并记录日志
	FallbackCallerRuns FallbackPolicy = "caller_runs" // 在调用方协程上直接执行
)

// Config 线程池配置
type Config struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	MinSize     int           `yaml:"minSize" mapstructure:"minSize"`
	MaxSize     int           `yaml:"maxSize" mapstructure:"maxSize"`
	IdleTimeout time.Duration `yaml:"idleTimeout" mapstructure:"idleTimeout"` // <=0 时空闲线程不回收
	// BacklogThreshold 积压任务数超过空闲线程数多少时新建线程
	BacklogThreshold int `yaml:"backlogThreshold" mapstructure:"backlogThreshold"`
	// MaxQueue 队列上限，0 表示不限
	MaxQueue int            `yaml:"maxQueue" mapstructure:"maxQueue"`
	Fallback FallbackPolicy `yaml:"fallback" mapstructure:"fallback"`
}

func DefaultConfig() Config {
	return Config{
		Name:        DefaultName,
		MinSize:     0,
		MaxSize:     DefaultMaxSize,
		IdleTimeout: DefaultIdleTimeout,
		Fallback:    FallbackAbort,
	}
}

func (c Config) validate() error {
	if c.MaxSize < 1 {
		return errors.Wrapf(ErrInvalidConfig, "max size %d < 1", c.MaxSize)
	}
	if c.MinSize < 0 || c.MinSize > c.MaxSize {
		return errors.Wrapf(ErrInvalidConfig, "min size %d not in [0, %d]", c.MinSize, c.MaxSize)
	}
	if c.BacklogThreshold < 0 || c.MaxQueue < 0 {
		return errors.Wrapf(ErrInvalidConfig, "negative backlog threshold or max queue")
	}
	switch c.Fallback {
	case "", FallbackAbort, FallbackDiscard, FallbackCallerRuns:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown fallback policy %q", c.Fallback)
	}
	return nil
}

// Clock 时间源，测试中可以替换
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type options struct {
	cfg     Config
	clock   Clock
	metrics *metrics.Metrics
}

type Option func(o *options)

func WithName(name string) Option {
	return func(o *options) { o.cfg.Name = name }
}

func WithMinSize(n int) Option {
	return func(o *options) { o.cfg.MinSize = n }
}

func WithMaxSize(n int) Option {
	return func(o *options) { o.cfg.MaxSize = n }
}

func WithIdleTimeout(d time.Duration) Option {
	return func(o *options) { o.cfg.IdleTimeout = d }
}

func WithBacklogThreshold(n int) Option {
	return func(o *options) { o.cfg.BacklogThreshold = n }
}

// WithMaxQueue 限制队列长度，超出后按 policy 处理
func WithMaxQueue(n int, policy FallbackPolicy) Option {
	return func(o *options) {
		o.cfg.MaxQueue = n
		o.cfg.Fallback = policy
	}
}

func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithMetrics 指标为 nil 时不上报
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}
