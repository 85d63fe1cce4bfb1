// Package lockfree 基于 CAS 的无锁容器
package lockfree

import "github.com/dzm2020/gconc/pkg/atomicx"

type node[T any] struct {
	val  T
	next *node[T]
}

// Stack Treiber 栈，节点不可变，出栈后的节点不会被复用
type Stack[T any] struct {
	top *atomicx.Reference[*node[T]]
}

func NewStack[T any]() *Stack[T] {
	return &Stack[T]{top: atomicx.NewReference[*node[T]](nil)}
}

// NewStackWith 指定原子引用的实现
func NewStackWith[T any](strategy atomicx.Strategy) *Stack[T] {
	return &Stack[T]{top: atomicx.NewReferenceWith[*node[T]](strategy, nil)}
}

func (s *Stack[T]) Push(v T) {
	n := &node[T]{val: v}
	for {
		top := s.top.Get()
		n.next = top
		if s.top.CompareAndSwap(top, n) {
			return
		}
	}
}

// Pop 栈为空时返回 false
func (s *Stack[T]) Pop() (T, bool) {
	for {
		top := s.top.Get()
		if top == nil {
			var zero T
			return zero, false
		}
		if s.top.CompareAndSwap(top, top.next) {
			return top.val, true
		}
	}
}

func (s *Stack[T]) Peek() (T, bool) {
	top := s.top.Get()
	if top == nil {
		var zero T
		return zero, false
	}
	return top.val, true
}

func (s *Stack[T]) IsEmpty() bool {
	return s.top.Get() == nil
}

// Clear 清空并返回清空前的元素个数
func (s *Stack[T]) Clear() int {
	n := 0
	for top := s.top.Swap(nil); top != nil; top = top.next {
		n++
	}
	return n
}
