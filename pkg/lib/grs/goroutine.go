// Package grs 协程启动与 panic 恢复
package grs

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

var (
	group        sync.WaitGroup
	panicHandler atomic.Value // func(*PanicError)
	goCount      atomic.Int64
	panicCount   atomic.Uint64
)

// PanicError 由 recover 得到的值转换而来，携带发生 panic 时的调用栈
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap panic 值本身是 error 时可以继续 errors.Is/As
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Try 执行 fn，fn 返回的错误原样返回，panic 转换为 *PanicError
func Try(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			panicCount.Add(1)
			pe := &PanicError{Value: r, Stack: debug.Stack()}
			if h, ok := panicHandler.Load().(func(*PanicError)); ok && h != nil {
				h(pe)
			}
			err = errors.WithStack(pe)
		}
	}()
	return fn()
}

// Go 启动一个受追踪的协程，panic 不会导致进程崩溃
func Go(fn func(), onPanic func(err error)) {
	group.Add(1) // 启动前Add，避免竞态
	goCount.Add(1)
	go func() {
		defer func() {
			goCount.Add(-1)
			group.Done()
		}()
		if err := Try(func() error { fn(); return nil }); err != nil && onPanic != nil {
			onPanic(err)
		}
	}()
}

// SetPanicHandler 设置全局 panic 观察函数
func SetPanicHandler(handler func(*PanicError)) {
	panicHandler.Store(handler)
}

// Wait 等待所有通过 Go 启动的协程退出
func Wait() {
	group.Wait()
}

// Count 当前存活的协程数
func Count() int64 {
	return goCount.Load()
}

// PanicCount 累计恢复的 panic 次数
func PanicCount() uint64 {
	return panicCount.Load()
}
