package executor

import "time"

type EventType int

const (
	EventWorkerStarted EventType = iota
	EventWorkerRetired
	EventWorkerStopped
	EventWorkerDied
	EventWorkerReplaced
	EventTaskFailed
	EventTerminated
)

var eventNames = [...]string{
	EventWorkerStarted:  "worker_started",
	EventWorkerRetired:  "worker_retired",
	EventWorkerStopped:  "worker_stopped",
	EventWorkerDied:     "worker_died",
	EventWorkerReplaced: "worker_replaced",
	EventTaskFailed:     "task_failed",
	EventTerminated:     "terminated",
}

func (t EventType) String() string {
	if int(t) >= 0 && int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event 线程池生命周期事件，WorkerID 为 0 表示与具体线程无关
type Event struct {
	Type     EventType
	Pool     string
	WorkerID uint64
	Err      error
	Time     time.Time
}
