package actor

import (
	"github.com/dzm2020/gconc/pkg/glog"
	"github.com/dzm2020/gconc/pkg/lib"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	idle int32 = iota
	running
)

// mailbox 多生产者单消费者；status 为 running 时有且只有一个消费者
type mailbox struct {
	queue      *lib.Mpsc[envelope]
	status     atomic.Int32
	dispatcher Dispatcher
	throughput int
	invoke     func(env envelope)
	// 调度失败时用来拒绝积压的消息
	reject func(env envelope, err error)
}

// newMailbox 创建时处于挂起状态，resume 之后才开始消费
func newMailbox(dispatcher Dispatcher, throughput int, invoke func(envelope), reject func(envelope, error)) *mailbox {
	if throughput <= 0 {
		throughput = dispatcher.Throughput()
	}
	m := &mailbox{
		queue:      lib.NewMpsc[envelope](),
		dispatcher: dispatcher,
		throughput: throughput,
		invoke:     invoke,
		reject:     reject,
	}
	m.status.Store(running)
	return m
}

func (m *mailbox) post(env envelope) {
	m.queue.Push(env)
	m.schedule()
}

func (m *mailbox) resume() {
	m.release()
}

func (m *mailbox) schedule() {
	if !m.status.CompareAndSwap(idle, running) {
		return
	}
	if err := m.dispatcher.Schedule(m.process); err != nil {
		glog.Error("actor mailbox schedule failed", zap.Int("pending", m.queue.Len()), zap.Error(err))
		for {
			env, ok := m.queue.Pop()
			if !ok {
				break
			}
			m.reject(env, err)
		}
		m.release()
	}
}

// release 放弃消费权后再检查一次，避免与 post 交错时消息滞留
func (m *mailbox) release() {
	m.status.Store(idle)
	if !m.queue.Empty() {
		m.schedule()
	}
}

func (m *mailbox) process() {
	returned := false
	defer func() {
		// 消费协程被 runtime.Goexit 终止时交出消费权，剩余消息由下一次调度处理
		if !returned {
			m.release()
		}
	}()
	m.run()
	returned = true
}

func (m *mailbox) run() {
	for {
		if m.drain() {
			return
		}
		m.status.Store(idle)
		if m.queue.Empty() || !m.status.CompareAndSwap(idle, running) {
			return
		}
	}
}

// drain 返回 true 表示已重新投递，消费权交给下一次调度
func (m *mailbox) drain() bool {
	for i := 0; ; i++ {
		if m.throughput > 0 && i >= m.throughput && !m.queue.Empty() {
			if err := m.dispatcher.Schedule(m.process); err == nil {
				return true
			}
			i = 0
		}
		env, ok := m.queue.Pop()
		if !ok {
			return false
		}
		m.invoke(env)
	}
}

func (m *mailbox) len() int {
	return m.queue.Len()
}
