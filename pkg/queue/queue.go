// Package queue 线程安全的阻塞 FIFO 队列，支持停止标记
package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	equeue "github.com/eapache/queue"
)

var (
	// ErrClosed 队列已关闭
	ErrClosed = errors.New("queue: closed")
	// ErrTimeout PopTimeout 超时
	ErrTimeout = errors.New("queue: pop timeout")
)

// entry 队列元素，stop 为 true 时表示停止标记而不是数据
type entry[T any] struct {
	val  T
	stop bool
}

// Queue 多生产者多消费者阻塞队列
// Push 从不拒绝（关闭后除外），背压策略由调用方决定
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  *equeue.Queue
	closed bool
}

func New[T any]() *Queue[T] {
	q := &Queue[T]{items: equeue.New()}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push 追加到队尾
func (q *Queue[T]) Push(v T) error {
	return q.put(entry[T]{val: v})
}

// PushStop 追加一个停止标记，出队的消费者应该退出
func (q *Queue[T]) PushStop() error {
	return q.put(entry[T]{stop: true})
}

func (q *Queue[T]) put(e entry[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.items.Add(e)
	q.cond.Signal()
	return nil
}

// Pop 阻塞直到取到元素；stop 为 true 表示取到的是停止标记
func (q *Queue[T]) Pop(ctx context.Context) (v T, stop bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if ctx.Done() != nil {
		// ctx 结束时唤醒所有等待者，由各自检查 ctx
		release := context.AfterFunc(ctx, func() {
			q.mu.Lock()
			q.cond.Broadcast()
			q.mu.Unlock()
		})
		defer release()
	}

	for q.items.Length() == 0 {
		if q.closed {
			return v, false, ErrClosed
		}
		if err = ctx.Err(); err != nil {
			return v, false, err
		}
		q.cond.Wait()
	}
	e := q.items.Remove().(entry[T])
	return e.val, e.stop, nil
}

// PopTimeout 最多等待 d，超时返回 ErrTimeout
func (q *Queue[T]) PopTimeout(d time.Duration) (v T, stop bool, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	v, stop, err = q.Pop(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		err = ErrTimeout
	}
	return
}

// TryPop 非阻塞出队，队列为空时 ok 为 false
func (q *Queue[T]) TryPop() (v T, stop bool, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Length() == 0 {
		return v, false, false
	}
	e := q.items.Remove().(entry[T])
	return e.val, e.stop, true
}

// Len 队列长度，包含停止标记
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

// Close 关闭队列并唤醒所有等待者，返回被丢弃的数据（不含停止标记）
func (q *Queue[T]) Close() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	var dropped []T
	for q.items.Length() > 0 {
		if e := q.items.Remove().(entry[T]); !e.stop {
			dropped = append(dropped, e.val)
		}
	}
	q.cond.Broadcast()
	return dropped
}

func (q *Queue[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
