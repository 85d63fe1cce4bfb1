package actor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/duke-git/lancet/v2/maputil"
	"github.com/dzm2020/gconc/pkg/executor"
	"github.com/dzm2020/gconc/pkg/glog"
	"github.com/dzm2020/gconc/pkg/lib/event"
	"github.com/dzm2020/gconc/pkg/lib/stopper"
	"github.com/dzm2020/gconc/pkg/metrics"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultAskTimeout = 5 * time.Second
	rootPath          = "/"
)

type SystemOption func(*systemOptions)

type systemOptions struct {
	askTimeout time.Duration
	metrics    *metrics.Metrics
}

// WithAskTimeout Ask 未指定超时时使用
func WithAskTimeout(d time.Duration) SystemOption {
	return func(o *systemOptions) { o.askTimeout = d }
}

func WithMetrics(m *metrics.Metrics) SystemOption {
	return func(o *systemOptions) { o.metrics = m }
}

// System actor 树，所有顶层 actor 都是根 actor 的子 actor
type System struct {
	dispatcher Dispatcher
	owned      *executor.Executor // dispatcher 由 System 创建时需要一起关闭
	askTimeout time.Duration
	metrics    *metrics.Metrics
	events     *event.Listener[Event]
	registry   *maputil.ConcurrentMap[string, *cell]
	root       *cell
	stopper    stopper.Stopper
}

// NewSystem dispatcher 为 nil 时创建一个按需伸缩的线程池
func NewSystem(dispatcher Dispatcher, opts ...SystemOption) (*System, error) {
	o := &systemOptions{askTimeout: DefaultAskTimeout}
	for _, opt := range opts {
		opt(o)
	}
	s := &System{
		dispatcher: dispatcher,
		askTimeout: o.askTimeout,
		metrics:    o.metrics,
		events:     event.NewListener[Event](),
		registry:   maputil.NewConcurrentMap[string, *cell](10),
	}
	if s.askTimeout <= 0 {
		s.askTimeout = DefaultAskTimeout
	}
	if s.dispatcher == nil {
		e, err := executor.NewCached(executor.WithName("actor"), executor.WithMetrics(o.metrics))
		if err != nil {
			return nil, err
		}
		s.owned = e
		s.dispatcher = NewExecutorDispatcher(e)
	}

	root := newCell(s, nil, rootPath, rootPath, func() Actor { return &BaseActor{} }, &Options{
		Supervisor: SupervisorFunc(rootDecide),
	})
	if err := root.initBehavior(); err != nil {
		return nil, err
	}
	s.registry.Set(rootPath, root)
	s.metrics.ActorStarted()
	root.storeState(StateRunning)
	root.mailbox.resume()
	s.root = root
	return s, nil
}

// rootDecide 顶层 actor 上报的失败只记录，根 actor 不重启
func rootDecide(f Failure) Directive {
	if f.Phase == PhaseChild {
		glog.Error("actor failure reached root", zap.Stringer("child", f.Child), zap.Error(f.Err))
		return Resume
	}
	return Stop
}

// Spawn 创建 actor，OnInit 在当前协程同步执行，失败时返回错误且 actor 不会运行
func (s *System) Spawn(producer Producer, opts ...Option) (*Ref, error) {
	return s.spawn(producer, loadOptions(opts...))
}

func (s *System) spawn(producer Producer, o *Options) (*Ref, error) {
	if producer == nil {
		return nil, ErrNilProducer
	}
	if s.stopper.IsStop() {
		return nil, ErrSystemShuttingDown
	}
	parent := s.root
	if o.Parent != nil {
		parent = o.Parent.cell
	}
	name := o.Name
	if name == "" {
		name = uuid.NewString()
	} else if strings.ContainsRune(name, '/') {
		return nil, errors.Wrapf(ErrInvalidName, "%q", name)
	}
	path := joinPath(parent.path, name)

	c := newCell(s, parent, name, path, producer, o)
	if _, loaded := s.registry.GetOrSet(path, c); loaded {
		return nil, errors.Wrap(ErrNameTaken, path)
	}
	if err := parent.addChild(c); err != nil {
		s.registry.Delete(path)
		return nil, errors.Wrapf(err, "spawn under %s", parent.path)
	}
	s.metrics.ActorStarted()

	if err := c.initBehavior(); err != nil {
		glog.Warn("actor init failed", zap.String("path", path), zap.Error(err))
		c.publish(Event{Type: EventFailed, Err: err, Phase: PhaseInit})
		// OnInit 中创建的子 actor 随之终止
		c.beginTerminate()
		c.mailbox.resume()
		return nil, errors.WithMessagef(err, "actor %s init", path)
	}
	c.storeState(StateRunning)
	c.publish(Event{Type: EventStarted})
	c.mailbox.resume()
	return c.self, nil
}

func joinPath(parent, name string) string {
	if parent == rootPath {
		return rootPath + name
	}
	return parent + "/" + name
}

func (s *System) unregister(c *cell) {
	s.registry.Delete(c.path)
	s.metrics.ActorTerminated()
}

func (s *System) deadLetter(c *cell, msg interface{}, err error) {
	s.metrics.DeadLetter()
	glog.Debug("actor dead letter", zap.String("path", c.path), zap.String("message", fmt.Sprintf("%T", msg)), zap.Error(err))
	s.events.Notify(Event{Type: EventDeadLetter, Ref: c.self, Err: err, Message: msg, Time: time.Now()})
}

// Lookup 按路径查找存活的 actor
func (s *System) Lookup(path string) (*Ref, bool) {
	c, ok := s.registry.Get(path)
	if !ok {
		return nil, false
	}
	return c.self, true
}

func (s *System) Root() *Ref { return s.root.self }

// Events actor 生命周期事件和死信，监听函数在触发事件的协程上同步执行
func (s *System) Events() *event.Listener[Event] { return s.events }

func (s *System) Dispatcher() Dispatcher { return s.dispatcher }

func (s *System) IsShuttingDown() bool { return s.stopper.IsStop() }

// Shutdown 终止整棵 actor 树并等待完成
func (s *System) Shutdown(ctx context.Context) error {
	if s.stopper.Stop() {
		s.root.self.Terminate()
	}
	select {
	case <-s.root.done:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "actor: shutdown")
	}
	if s.owned != nil {
		return s.owned.ShutdownAndWait(ctx)
	}
	return nil
}
