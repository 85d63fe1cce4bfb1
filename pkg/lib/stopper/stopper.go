package stopper

import (
	"sync"
	"sync/atomic"
)

// Stopper 一次性停止标记，可以等待停止信号
type Stopper struct {
	isStopped atomic.Bool
	once      sync.Once
	ch        chan struct{}
}

func (s *Stopper) init() {
	s.once.Do(func() {
		s.ch = make(chan struct{})
	})
}

func (s *Stopper) IsStop() bool {
	return s.isStopped.Load()
}

// Stop 只有第一次调用返回 true
func (s *Stopper) Stop() bool {
	s.init()
	if !s.isStopped.CompareAndSwap(false, true) {
		return false
	}
	close(s.ch)
	return true
}

// Done 停止后关闭的通道
func (s *Stopper) Done() <-chan struct{} {
	s.init()
	return s.ch
}
