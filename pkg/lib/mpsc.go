// Package lib
// @Description: 无锁多生产者单消费者队列

package lib

import (
	"sync/atomic"
)

type mpscNode[T any] struct {
	next atomic.Pointer[mpscNode[T]]
	val  T
}

// Mpsc 多生产者单消费者 FIFO 队列
// Push 可以被任意多个协程并发调用，Pop 同一时刻只能有一个消费者，Empty 可以在任意协程调用
type Mpsc[T any] struct {
	head atomic.Pointer[mpscNode[T]] // 生产者端
	// 只有消费者写入，Empty 可能在其它协程并发读取
	tail atomic.Pointer[mpscNode[T]]
	size atomic.Int64
}

func NewMpsc[T any]() *Mpsc[T] {
	q := &Mpsc[T]{}
	stub := &mpscNode[T]{}
	q.head.Store(stub)
	q.tail.Store(stub)
	return q
}

func (q *Mpsc[T]) Push(x T) {
	n := &mpscNode[T]{val: x}
	q.size.Add(1)
	prev := q.head.Swap(n)
	prev.next.Store(n)
}

// Pop 队列为空时返回 false
func (q *Mpsc[T]) Pop() (T, bool) {
	var zero T
	next := q.tail.Load().next.Load()
	if next == nil {
		return zero, false
	}
	q.tail.Store(next)
	v := next.val
	next.val = zero
	q.size.Add(-1)
	return v, true
}

func (q *Mpsc[T]) Empty() bool {
	return q.tail.Load().next.Load() == nil
}

// Len 近似长度，Push 与链接之间存在短暂窗口
func (q *Mpsc[T]) Len() int {
	return int(q.size.Load())
}
