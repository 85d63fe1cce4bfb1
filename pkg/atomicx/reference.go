// Package atomicx 原子引用，按平台能力选择硬件原子指令或互斥锁实现
package atomicx

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// 连续 CAS 失败多少次后开始让出 CPU
const yieldAfter = 8

// backend Reference 的底层实现，创建时确定，之后不再切换
type backend[T comparable] interface {
	load() T
	store(v T)
	swap(v T) T
	compareAndSwap(expected, v T) bool
}

type box[T any] struct {
	v T
}

// hardwareBackend 指向不可变 box 的原子指针
type hardwareBackend[T comparable] struct {
	p atomic.Pointer[box[T]]
}

func (h *hardwareBackend[T]) load() T {
	return h.p.Load().v
}

func (h *hardwareBackend[T]) store(v T) {
	h.p.Store(&box[T]{v: v})
}

func (h *hardwareBackend[T]) swap(v T) T {
	return h.p.Swap(&box[T]{v: v}).v
}

// compareAndSwap 只要当前值仍等于 expected 就继续尝试，
// 指针不同但值相等（其它协程写入了相同的值）不算失败
func (h *hardwareBackend[T]) compareAndSwap(expected, v T) bool {
	next := &box[T]{v: v}
	for {
		cur := h.p.Load()
		if cur.v != expected {
			return false
		}
		if h.p.CompareAndSwap(cur, next) {
			return true
		}
	}
}

// mutexBackend 没有硬件 CAS 时的互斥锁实现
type mutexBackend[T comparable] struct {
	mu sync.Mutex
	v  T
}

func (m *mutexBackend[T]) load() T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.v
}

func (m *mutexBackend[T]) store(v T) {
	m.mu.Lock()
	m.v = v
	m.mu.Unlock()
}

func (m *mutexBackend[T]) swap(v T) T {
	m.mu.Lock()
	defer m.mu.Unlock()
	old := m.v
	m.v = v
	return old
}

// compareAndSwap 锁被占用时直接失败，不阻塞
func (m *mutexBackend[T]) compareAndSwap(expected, v T) bool {
	if !m.mu.TryLock() {
		return false
	}
	defer m.mu.Unlock()
	if m.v != expected {
		return false
	}
	m.v = v
	return true
}

// Reference 单个可原子读写的值
//
// T 为接口类型时，动态类型必须可比较，否则 CompareAndSwap 会 panic。
type Reference[T comparable] struct {
	cell     backend[T]
	strategy Strategy
}

// NewReference 使用默认策略创建
func NewReference[T comparable](v T) *Reference[T] {
	return NewReferenceWith(DefaultStrategy(), v)
}

// NewReferenceWith 使用指定策略创建
func NewReferenceWith[T comparable](strategy Strategy, v T) *Reference[T] {
	r := &Reference[T]{strategy: strategy}
	if strategy == StrategyMutex {
		r.cell = &mutexBackend[T]{v: v}
	} else {
		r.strategy = StrategyHardware
		h := &hardwareBackend[T]{}
		h.store(v)
		r.cell = h
	}
	return r
}

func (r *Reference[T]) Strategy() Strategy {
	return r.strategy
}

func (r *Reference[T]) Get() T {
	return r.cell.load()
}

func (r *Reference[T]) Set(v T) {
	r.cell.store(v)
}

// Swap 写入新值并返回旧值
func (r *Reference[T]) Swap(v T) T {
	return r.cell.swap(v)
}

// CompareAndSwap 当前值等于 expected 时替换为 v
func (r *Reference[T]) CompareAndSwap(expected, v T) bool {
	return r.cell.compareAndSwap(expected, v)
}

// Update 乐观重试直到成功，返回新值
// f 可能被调用多次，必须没有副作用
func (r *Reference[T]) Update(f func(T) T) T {
	for failures := 0; ; failures++ {
		old := r.cell.load()
		next := f(old)
		if r.cell.compareAndSwap(old, next) {
			return next
		}
		if failures >= yieldAfter {
			runtime.Gosched()
		}
	}
}

// TryUpdate 只尝试一次，值在读写之间被修改时返回 ErrConcurrentUpdate
func (r *Reference[T]) TryUpdate(f func(T) T) (T, error) {
	old := r.cell.load()
	next := f(old)
	if !r.cell.compareAndSwap(old, next) {
		var zero T
		return zero, ErrConcurrentUpdate
	}
	return next, nil
}
