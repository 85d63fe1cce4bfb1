package actor

import (
	"sync"
	"time"
)

// Directive 监督决策
type Directive int

const (
	// Resume 保留当前状态继续处理后续消息
	Resume Directive = iota
	// Restart 终止子 actor，丢弃旧行为并用原始参数重新构造，邮箱保留
	Restart
	Stop
	// Escalate 终止自身并把失败交给父 actor 的 supervisor
	Escalate
)

func (d Directive) String() string {
	switch d {
	case Resume:
		return "resume"
	case Restart:
		return "restart"
	case Stop:
		return "stop"
	case Escalate:
		return "escalate"
	}
	return "unknown"
}

// Phase 失败发生的阶段
type Phase int

const (
	PhaseMessage Phase = iota
	PhaseInit
	PhaseRestart
	// PhaseChild 子 actor 上报的失败
	PhaseChild
)

func (p Phase) String() string {
	switch p {
	case PhaseMessage:
		return "message"
	case PhaseInit:
		return "init"
	case PhaseRestart:
		return "restart"
	case PhaseChild:
		return "child"
	}
	return "unknown"
}

// Failure 交给 Supervisor 的失败信息
type Failure struct {
	Ref     *Ref
	Child   *Ref // PhaseChild 时为上报失败的子 actor
	Err     error
	Phase   Phase
	Message interface{}
}

type Supervisor interface {
	Decide(f Failure) Directive
}

type SupervisorFunc func(f Failure) Directive

func (fn SupervisorFunc) Decide(f Failure) Directive {
	return fn(f)
}

var (
	// DefaultSupervisor 处理消息失败时重启，构造或重启失败时上报，避免无限重启
	DefaultSupervisor Supervisor = SupervisorFunc(defaultDecide)
	// StoppingSupervisor 任何失败都停止
	StoppingSupervisor Supervisor = SupervisorFunc(func(Failure) Directive { return Stop })
)

func defaultDecide(f Failure) Directive {
	switch f.Phase {
	case PhaseInit, PhaseRestart:
		return Escalate
	default:
		return Restart
	}
}

// OneForOne 在 window 内重启超过 maxRestarts 次后改为上报
type OneForOne struct {
	maxRestarts int
	window      time.Duration
	decider     Supervisor
	now         func() time.Time

	mu       sync.Mutex
	restarts map[string][]time.Time
}

// NewOneForOne decider 为 nil 时使用 DefaultSupervisor
func NewOneForOne(maxRestarts int, window time.Duration, decider Supervisor) *OneForOne {
	if decider == nil {
		decider = DefaultSupervisor
	}
	return &OneForOne{
		maxRestarts: maxRestarts,
		window:      window,
		decider:     decider,
		now:         time.Now,
		restarts:    make(map[string][]time.Time),
	}
}

func (s *OneForOne) Decide(f Failure) Directive {
	d := s.decider.Decide(f)
	if d != Restart || f.Ref == nil {
		return d
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	path := f.Ref.Path()
	history := s.restarts[path][:0]
	for _, t := range s.restarts[path] {
		if s.window <= 0 || now.Sub(t) < s.window {
			history = append(history, t)
		}
	}
	if len(history) >= s.maxRestarts {
		delete(s.restarts, path)
		return Escalate
	}
	s.restarts[path] = append(history, now)
	return Restart
}
