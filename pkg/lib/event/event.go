// Package event 泛型事件监听器，用于生命周期事件订阅
package event

import (
	"sync"

	"github.com/dzm2020/gconc/pkg/glog"
	"github.com/dzm2020/gconc/pkg/lib/grs"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

type subscriber[V any] struct {
	id      uint64
	handler func(V)
}

type Listener[V any] struct {
	mu       sync.RWMutex
	seq      uint64
	handlers []subscriber[V]
}

func NewListener[V any]() *Listener[V] {
	return &Listener[V]{}
}

// Register 注册监听函数，返回取消订阅函数
func (m *Listener[V]) Register(handler func(V)) (cancel func()) {
	if handler == nil {
		return func() {}
	}
	m.mu.Lock()
	m.seq++
	id := m.seq
	m.handlers = append(m.handlers, subscriber[V]{id: id, handler: handler})
	m.mu.Unlock()
	return func() { m.unRegister(id) }
}

func (m *Listener[V]) unRegister(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	index := slices.IndexFunc(m.handlers, func(s subscriber[V]) bool {
		return s.id == id
	})
	if index < 0 {
		return
	}
	m.handlers = slices.Delete(m.handlers, index, index+1)
}

// Len 当前监听者数量
func (m *Listener[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers)
}

// Notify 同步通知所有监听者，单个监听者 panic 不影响其它监听者
func (m *Listener[V]) Notify(param V) {
	m.mu.RLock()
	handlers := slices.Clone(m.handlers)
	m.mu.RUnlock()
	for _, s := range handlers {
		handler := s.handler
		if err := grs.Try(func() error { handler(param); return nil }); err != nil {
			glog.Error("event listener panic", zap.Error(err))
		}
	}
}
