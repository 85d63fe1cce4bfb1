package actor

import (
	"time"

	"github.com/dzm2020/gconc/pkg/future"
)

// Context 行为回调中使用的上下文，只在回调执行期间有效
type Context interface {
	Self() *Ref
	// Parent 根 actor 返回 nil
	Parent() *Ref
	// Sender 当前消息的发送者，外部 Tell 时为 nil
	Sender() *Ref
	System() *System
	// Children 存活的子 actor
	Children() []*Ref
	// Spawn 创建子 actor
	Spawn(producer Producer, opts ...Option) (*Ref, error)
	// Tell 以自身为发送者发送消息
	Tell(to *Ref, msg interface{})
	// Ask 以自身为发送者请求，不要在回调中等待结果，否则可能与对方互相等待
	Ask(to *Ref, msg interface{}, timeout time.Duration) *future.Future
	// Stop 终止自身或子 actor
	Stop(ref *Ref)
	// SendAfter d 之后把 msg 投递给自身，重启或终止时自动取消
	SendAfter(d time.Duration, msg interface{}) TimerID
	// SendEvery 每隔 interval 投递一次 msg
	SendEvery(interval time.Duration, msg interface{}) TimerID
	CancelTimer(id TimerID) bool
}

var _ Context = (*cell)(nil)

func (c *cell) Self() *Ref { return c.self }

func (c *cell) Parent() *Ref {
	if c.parent == nil {
		return nil
	}
	return c.parent.self
}

func (c *cell) Sender() *Ref     { return c.sender }
func (c *cell) System() *System  { return c.system }
func (c *cell) Children() []*Ref { return c.liveChildren() }

func (c *cell) Spawn(producer Producer, opts ...Option) (*Ref, error) {
	o := loadOptions(opts...)
	o.Parent = c.self
	return c.system.spawn(producer, o)
}

func (c *cell) Tell(to *Ref, msg interface{}) {
	if to == nil {
		return
	}
	to.cell.send(envelope{message: msg, sender: c.self})
}

func (c *cell) Ask(to *Ref, msg interface{}, timeout time.Duration) *future.Future {
	if to == nil {
		return future.RejectedWith(ErrActorTerminated)
	}
	return to.cell.ask(msg, c.self, timeout)
}

func (c *cell) Stop(ref *Ref) {
	if ref == nil {
		return
	}
	ref.Terminate()
}

func (c *cell) SendAfter(d time.Duration, msg interface{}) TimerID {
	return c.timers.schedule(c, d, msg, false)
}

func (c *cell) SendEvery(interval time.Duration, msg interface{}) TimerID {
	if interval <= 0 {
		return 0
	}
	return c.timers.schedule(c, interval, msg, true)
}

func (c *cell) CancelTimer(id TimerID) bool {
	return c.timers.cancel(id)
}
