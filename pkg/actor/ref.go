package actor

import (
	"time"

	"github.com/dzm2020/gconc/pkg/future"
)

// Ref actor 对外唯一的句柄，重启后仍然有效
type Ref struct {
	path string
	name string
	cell *cell
}

func (r *Ref) Path() string   { return r.path }
func (r *Ref) Name() string   { return r.name }
func (r *Ref) String() string { return r.path }

// Tell 发送消息，不等待结果，返回自身以便链式调用
func (r *Ref) Tell(msg interface{}) *Ref {
	r.cell.send(envelope{message: msg})
	return r
}

// Ask 发送消息并返回结果 future；timeout <= 0 时使用 System 的默认超时
// actor 已终止时 future 立即以 ErrActorTerminated 失败
func (r *Ref) Ask(msg interface{}, timeout time.Duration) *future.Future {
	return r.cell.ask(msg, nil, timeout)
}

// Terminate 投递 Terminate 消息，已入队的消息先处理完
func (r *Ref) Terminate() {
	r.cell.send(envelope{message: Terminate{}})
}

func (r *Ref) State() State {
	return r.cell.loadState()
}

func (r *Ref) IsTerminated() bool {
	return r.State() == StateTerminated
}

// Done actor 终止后关闭
func (r *Ref) Done() <-chan struct{} {
	return r.cell.done
}
