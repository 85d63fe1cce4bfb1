// Package asynctime 基于时间轮的全局定时器
package asynctime

import (
	"time"

	"github.com/RussellLuo/timingwheel"
)

var tw = timingwheel.NewTimingWheel(time.Millisecond, 3600)

func init() {
	tw.Start()
}

// Timer 时间轮定时器
type Timer struct {
	*timingwheel.Timer
}

// AfterFunc d 之后在独立协程中执行 f
func AfterFunc(d time.Duration, f func()) *Timer {
	return &Timer{Timer: tw.AfterFunc(d, f)}
}

// Stop 停止定时器，定时器已经触发或已停止时返回 false
func (t *Timer) Stop() bool {
	if t == nil || t.Timer == nil {
		return false
	}
	return t.Timer.Stop()
}
