package actor

import "github.com/dzm2020/gconc/pkg/future"

// Terminate 终止 actor，作为普通消息按邮箱顺序处理，之前入队的消息会先处理完
type Terminate struct{}

type envelope struct {
	message interface{}
	sender  *Ref
	future  *future.Future
}

func (e *envelope) fulfill(v interface{}) {
	if e.future != nil {
		e.future.Fulfill(v)
	}
}

func (e *envelope) reject(err error) {
	if e.future != nil {
		e.future.Reject(err)
	}
}

// 系统消息，只在运行时内部流转
type (
	childTerminated struct{ child *cell }
	childFailed     struct {
		child   *cell
		failure Failure
	}
	childEvent struct{ event Event }
)

func isSystemMessage(msg interface{}) bool {
	switch msg.(type) {
	case Terminate, *Terminate, childTerminated, childFailed, childEvent:
		return true
	}
	return false
}
