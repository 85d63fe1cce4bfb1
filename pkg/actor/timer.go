package actor

import (
	"sync"
	"time"

	"github.com/dzm2020/gconc/pkg/lib/timex/asynctime"
)

// TimerID actor 内唯一的定时器编号，0 表示未注册成功
type TimerID int64

// timerFired 定时器到期后投递给自身，按普通消息排队
type timerFired struct {
	id      TimerID
	message interface{}
}

type timerEntry struct {
	timer  *asynctime.Timer
	repeat bool
}

// timers 到期回调运行在时间轮协程，真正处理前在 actor 线程再确认一次，取消后不会再收到消息
type timers struct {
	mu     sync.Mutex
	nextID TimerID
	active map[TimerID]*timerEntry
	closed bool
}

func (t *timers) schedule(c *cell, d time.Duration, msg interface{}, repeat bool) TimerID {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0
	}
	if t.active == nil {
		t.active = make(map[TimerID]*timerEntry)
	}
	t.nextID++
	id := t.nextID
	entry := &timerEntry{repeat: repeat}
	entry.timer = t.after(c, id, d, msg)
	t.active[id] = entry
	return id
}

func (t *timers) after(c *cell, id TimerID, d time.Duration, msg interface{}) *asynctime.Timer {
	return asynctime.AfterFunc(d, func() {
		t.mu.Lock()
		entry, ok := t.active[id]
		if !ok {
			t.mu.Unlock()
			return
		}
		if entry.repeat {
			entry.timer = t.after(c, id, d, msg)
		}
		t.mu.Unlock()
		c.send(envelope{message: timerFired{id: id, message: msg}, sender: c.self})
	})
}

// deliver 在 actor 线程调用，返回 false 表示定时器已被取消
func (t *timers) deliver(id TimerID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.active[id]
	if !ok {
		return false
	}
	if !entry.repeat {
		delete(t.active, id)
	}
	return true
}

func (t *timers) cancel(id TimerID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.active[id]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(t.active, id)
	return true
}

// cancelAll 重启时取消全部定时器，终止时同时拒绝新的注册
func (t *timers) cancelAll(closing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, entry := range t.active {
		entry.timer.Stop()
		delete(t.active, id)
	}
	if closing {
		t.closed = true
	}
}

func (t *timers) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}
