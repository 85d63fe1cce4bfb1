// Package future 只能完成一次的异步结果，ask 调用和 Submit 的返回值
package future

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dzm2020/gconc/pkg/lib/timex/asynctime"
)

var (
	// ErrTimeout 等待超时，底层处理可能仍然会完成
	ErrTimeout = errors.New("future: timeout")
)

// State 结果状态
type State int32

const (
	Pending State = iota
	Fulfilled
	Rejected
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Future 第一次 Fulfill/Reject 生效，之后的调用被忽略
type Future struct {
	state    atomic.Int32
	claimed  atomic.Bool
	done     chan struct{}
	value    interface{}
	err      error
	onSettle atomic.Pointer[func()]
}

func New() *Future {
	return &Future{done: make(chan struct{})}
}

// FulfilledWith 已完成的结果
func FulfilledWith(v interface{}) *Future {
	f := New()
	f.Fulfill(v)
	return f
}

// RejectedWith 已失败的结果
func RejectedWith(err error) *Future {
	f := New()
	f.Reject(err)
	return f
}

// Fulfill 设置结果，返回是否由本次调用完成
func (f *Future) Fulfill(v interface{}) bool {
	return f.settle(Fulfilled, v, nil)
}

// Reject 设置失败原因，返回是否由本次调用完成
func (f *Future) Reject(err error) bool {
	return f.settle(Rejected, nil, err)
}

// Complete 按 err 是否为空决定 Fulfill 或 Reject
func (f *Future) Complete(v interface{}, err error) bool {
	if err != nil {
		return f.Reject(err)
	}
	return f.Fulfill(v)
}

func (f *Future) settle(state State, v interface{}, err error) bool {
	if !f.claimed.CompareAndSwap(false, true) {
		return false
	}
	f.value, f.err = v, err
	f.state.Store(int32(state))
	close(f.done)
	if fn := f.onSettle.Swap(nil); fn != nil {
		(*fn)()
	}
	return true
}

// RejectAfter d 之后仍未完成则以 err 失败，完成后定时器自动停止
func (f *Future) RejectAfter(d time.Duration, err error) *Future {
	if d <= 0 || f.IsDone() {
		return f
	}
	timer := asynctime.AfterFunc(d, func() { f.Reject(err) })
	stop := func() { timer.Stop() }
	f.onSettle.Store(&stop)
	if f.IsDone() {
		// 与 settle 竞争时由这里兜底
		if fn := f.onSettle.Swap(nil); fn != nil {
			(*fn)()
		}
	}
	return f
}

// Done 完成后关闭
func (f *Future) Done() <-chan struct{} {
	return f.done
}

func (f *Future) IsDone() bool {
	return State(f.state.Load()) != Pending
}

func (f *Future) State() State {
	return State(f.state.Load())
}

// Value 已完成时的结果，未完成返回 nil
func (f *Future) Value() interface{} {
	if f.State() != Fulfilled {
		return nil
	}
	return f.value
}

// Reason 失败原因，未失败返回 nil
func (f *Future) Reason() error {
	if f.State() != Rejected {
		return nil
	}
	return f.err
}

// Wait 阻塞直到完成
func (f *Future) Wait() (interface{}, error) {
	<-f.done
	return f.value, f.err
}

// WaitTimeout 最多等待 d，超时返回 ErrTimeout，结果本身不受影响
func (f *Future) WaitTimeout(d time.Duration) (interface{}, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-f.done:
		return f.value, f.err
	case <-timer.C:
		return nil, ErrTimeout
	}
}

// WaitContext 等待完成或 ctx 结束
func (f *Future) WaitContext(ctx context.Context) (interface{}, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
