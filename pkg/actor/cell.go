package actor

import (
	"sync"
	"time"

	"github.com/dzm2020/gconc/pkg/future"
	"github.com/dzm2020/gconc/pkg/glog"
	"github.com/dzm2020/gconc/pkg/lib/grs"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// State actor 生命周期状态
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateRestarting
	StateTerminating
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateRestarting:
		return "restarting"
	case StateTerminating:
		return "terminating"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// cell actor 的内部状态，外部只能通过 Ref 访问
// behavior/sender/waiting 只在邮箱消费协程（或 Spawn 初始化期间）访问
type cell struct {
	system     *System
	parent     *cell
	self       *Ref
	name, path string
	producer   Producer
	args       []interface{}
	supervisor Supervisor
	mailbox    *mailbox
	state      atomic.Int32
	done       chan struct{}

	behavior     Actor
	sender       *Ref
	waiting      map[*cell]struct{} // 终止或重启时等待退出的子 actor，之后新建的不在其中
	stash        []envelope
	restartCause error
	timers       timers

	childMu  sync.Mutex
	children []*cell
}

func newCell(system *System, parent *cell, name, path string, producer Producer, o *Options) *cell {
	c := &cell{
		system:     system,
		parent:     parent,
		name:       name,
		path:       path,
		producer:   producer,
		args:       o.Args,
		supervisor: o.Supervisor,
		done:       make(chan struct{}),
	}
	if c.supervisor == nil {
		c.supervisor = DefaultSupervisor
	}
	dispatcher := o.Dispatcher
	if dispatcher == nil {
		dispatcher = system.dispatcher
	}
	c.self = &Ref{path: path, name: name, cell: c}
	c.mailbox = newMailbox(dispatcher, o.Throughput, c.invoke, c.reject)
	return c
}

func (c *cell) loadState() State {
	return State(c.state.Load())
}

func (c *cell) storeState(s State) {
	c.state.Store(int32(s))
}

func (c *cell) send(env envelope) {
	if !isSystemMessage(env.message) && c.loadState() >= StateTerminating {
		c.deadLetter(env, ErrActorTerminated)
		return
	}
	c.mailbox.post(env)
}

func (c *cell) ask(msg interface{}, sender *Ref, timeout time.Duration) *future.Future {
	if c.loadState() >= StateTerminating {
		c.system.deadLetter(c, msg, ErrActorTerminated)
		return future.RejectedWith(ErrActorTerminated)
	}
	if timeout <= 0 {
		timeout = c.system.askTimeout
	}
	f := future.New().RejectAfter(timeout, future.ErrTimeout)
	c.send(envelope{message: msg, sender: sender, future: f})
	return f
}

func (c *cell) deadLetter(env envelope, err error) {
	if tf, ok := env.message.(timerFired); ok {
		env.message = tf.message
	}
	env.reject(err)
	c.system.deadLetter(c, env.message, err)
}

// reject 邮箱调度失败时调用，此时调用方持有消费权
func (c *cell) reject(env envelope, err error) {
	if isSystemMessage(env.message) {
		c.invoke(env)
		return
	}
	c.deadLetter(env, err)
}

func (c *cell) invoke(env envelope) {
	switch m := env.message.(type) {
	case Terminate, *Terminate:
		c.beginTerminate()
		env.fulfill(nil)
	case childTerminated:
		c.onChildTerminated(m.child)
	case childFailed:
		c.onChildFailed(m.child, m.failure)
	case childEvent:
		c.onChildEvent(m.event)
	default:
		if tf, ok := env.message.(timerFired); ok {
			if !c.timers.deliver(tf.id) {
				return
			}
			env.message = tf.message
		}
		switch c.loadState() {
		case StateRunning:
			c.handle(env)
		case StateRestarting:
			c.stash = append(c.stash, env)
		default:
			c.deadLetter(env, ErrActorTerminated)
		}
	}
}

func (c *cell) handle(env envelope) {
	c.sender = env.sender
	returned := false
	defer func() {
		c.sender = nil
		if returned {
			return
		}
		// Goexit 无法拦截，协程仍会退出；邮箱在自己的 defer 中交出消费权
		c.system.metrics.MessageProcessed()
		env.reject(ErrAbnormalExit)
		c.fail(Failure{Ref: c.self, Err: ErrAbnormalExit, Phase: PhaseMessage, Message: env.message})
	}()

	var (
		result interface{}
		err    error
	)
	if m, ok := c.behavior.(Matcher); ok && !m.Handles(env.message) {
		err = Unhandled(env.message)
	} else {
		err = grs.Try(func() (err error) {
			result, err = c.behavior.OnMessage(c, env.message)
			return
		})
	}
	returned = true
	c.system.metrics.MessageProcessed()
	if err != nil {
		env.reject(err)
		c.fail(Failure{Ref: c.self, Err: err, Phase: PhaseMessage, Message: env.message})
		return
	}
	env.fulfill(result)
}

// fail 交给 supervisor 决策并执行
func (c *cell) fail(f Failure) {
	c.system.metrics.Failure()
	glog.Warn("actor failed", zap.String("path", c.path), zap.Stringer("phase", f.Phase), zap.Error(f.Err))
	c.publish(Event{Type: EventFailed, Err: f.Err, Phase: f.Phase, Message: f.Message})

	directive := c.decide(f)
	switch directive {
	case Resume:
		c.publish(Event{Type: EventResumed, Err: f.Err, Phase: f.Phase})
	case Restart:
		c.restart(f)
	case Stop:
		c.beginTerminate()
	case Escalate:
		c.escalate(f)
	}
}

func (c *cell) decide(f Failure) (d Directive) {
	if err := grs.Try(func() error {
		d = c.supervisor.Decide(f)
		return nil
	}); err != nil {
		glog.Error("actor supervisor panic", zap.String("path", c.path), zap.Error(err))
		d = Escalate
	}
	// 没有可用的行为时不能恢复；重启失败后再重启会循环
	switch {
	case d == Resume && c.behavior == nil:
		d = Stop
	case d == Restart && f.Phase == PhaseRestart:
		d = Escalate
	}
	return d
}

// restart 先终止所有子 actor，全部退出后再用原始参数重新构造，期间的消息暂存
func (c *cell) restart(f Failure) {
	c.storeState(StateRestarting)
	c.system.metrics.Restart()
	c.publish(Event{Type: EventRestarting, Err: f.Err, Phase: f.Phase})

	c.stopBehavior()
	c.timers.cancelAll(false)
	c.restartCause = f.Err
	if c.awaitChildren(c.childCells()) {
		c.completeRestart()
	}
}

func (c *cell) completeRestart() {
	if err := c.initBehavior(); err != nil {
		c.fail(Failure{Ref: c.self, Err: err, Phase: PhaseRestart})
		return
	}
	c.storeState(StateRunning)
	glog.Info("actor restarted", zap.String("path", c.path), zap.Error(c.restartCause))
	c.publish(Event{Type: EventRestarted, Err: c.restartCause})
	c.restartCause = nil
	c.unstash()
}

func (c *cell) unstash() {
	for len(c.stash) > 0 && c.loadState() == StateRunning {
		env := c.stash[0]
		c.stash = c.stash[1:]
		c.handle(env)
	}
}

func (c *cell) escalate(f Failure) {
	c.publish(Event{Type: EventEscalated, Err: f.Err, Phase: f.Phase})
	if c.parent == nil {
		glog.Error("actor failure escalated past root", zap.String("path", c.path), zap.Error(f.Err))
	} else {
		c.parent.send(envelope{message: childFailed{child: c, failure: f}})
	}
	c.beginTerminate()
}

func (c *cell) onChildFailed(child *cell, f Failure) {
	if c.loadState() != StateRunning {
		return
	}
	c.fail(Failure{Ref: c.self, Child: child.self, Err: f.Err, Phase: PhaseChild, Message: f.Message})
}

func (c *cell) onChildEvent(ev Event) {
	if c.loadState() != StateRunning {
		return
	}
	watcher, ok := c.behavior.(ChildWatcher)
	if !ok {
		return
	}
	if err := grs.Try(func() error {
		watcher.OnChildEvent(c, ev)
		return nil
	}); err != nil {
		glog.Error("actor child watcher panic", zap.String("path", c.path), zap.Error(err))
	}
}

// initBehavior 构造新行为并调用 OnInit，失败时不保留行为
func (c *cell) initBehavior() error {
	return grs.Try(func() error {
		behavior := c.producer()
		if behavior == nil {
			return ErrNilActor
		}
		if init, ok := behavior.(Initializer); ok {
			if err := init.OnInit(c, c.args); err != nil {
				return err
			}
		}
		c.behavior = behavior
		return nil
	})
}

func (c *cell) stopBehavior() {
	behavior := c.behavior
	c.behavior = nil
	stopper, ok := behavior.(Stopper)
	if !ok {
		return
	}
	if err := grs.Try(func() error { return stopper.OnStop(c) }); err != nil {
		glog.Warn("actor stop failed", zap.String("path", c.path), zap.Error(err))
	}
}

// beginTerminate 向所有子 actor 发送 Terminate，全部退出后才完成自身的终止
func (c *cell) beginTerminate() {
	c.childMu.Lock()
	if c.loadState() >= StateTerminating {
		c.childMu.Unlock()
		return
	}
	c.storeState(StateTerminating)
	children := slices.Clone(c.children)
	c.childMu.Unlock()

	c.timers.cancelAll(true)
	c.publish(Event{Type: EventTerminating})
	if c.awaitChildren(children) {
		c.finalize()
	}
}

// awaitChildren 终止给定的子 actor，没有需要等待的时候返回 true
func (c *cell) awaitChildren(children []*cell) bool {
	c.waiting = make(map[*cell]struct{}, len(children))
	for _, child := range children {
		c.waiting[child] = struct{}{}
	}
	for _, child := range children {
		child.self.Terminate()
	}
	return len(c.waiting) == 0
}

func (c *cell) onChildTerminated(child *cell) {
	c.childMu.Lock()
	index := slices.Index(c.children, child)
	if index >= 0 {
		c.children = slices.Delete(c.children, index, index+1)
	}
	c.childMu.Unlock()

	if index < 0 {
		return
	}
	if _, ok := c.waiting[child]; !ok {
		return
	}
	delete(c.waiting, child)
	if len(c.waiting) > 0 {
		return
	}
	switch c.loadState() {
	case StateTerminating:
		c.finalize()
	case StateRestarting:
		c.completeRestart()
	}
}

func (c *cell) finalize() {
	c.stopBehavior()
	c.storeState(StateTerminated)
	for _, env := range c.stash {
		c.deadLetter(env, ErrActorTerminated)
	}
	c.stash = nil
	c.system.unregister(c)
	close(c.done)
	glog.Debug("actor terminated", zap.String("path", c.path))
	c.publish(Event{Type: EventTerminated})
	if c.parent != nil {
		c.parent.send(envelope{message: childTerminated{child: c}})
	}
}

func (c *cell) addChild(child *cell) error {
	c.childMu.Lock()
	defer c.childMu.Unlock()
	if c.loadState() >= StateTerminating {
		return ErrActorTerminated
	}
	c.children = append(c.children, child)
	return nil
}

func (c *cell) childCells() []*cell {
	c.childMu.Lock()
	defer c.childMu.Unlock()
	return slices.Clone(c.children)
}

func (c *cell) liveChildren() []*Ref {
	c.childMu.Lock()
	defer c.childMu.Unlock()
	refs := make([]*Ref, 0, len(c.children))
	for _, child := range c.children {
		if child.loadState() < StateTerminating {
			refs = append(refs, child.self)
		}
	}
	return refs
}

// publish 发布到 System 事件并转发给父 actor
func (c *cell) publish(ev Event) {
	ev.Ref = c.self
	ev.Time = time.Now()
	c.system.events.Notify(ev)
	if c.parent != nil && ev.Type != EventDeadLetter {
		c.parent.send(envelope{message: childEvent{event: ev}})
	}
}
