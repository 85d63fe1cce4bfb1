package actor

import "time"

type EventType int

const (
	EventStarted EventType = iota
	EventRestarting
	EventRestarted
	EventResumed
	EventFailed
	EventEscalated
	EventTerminating
	EventTerminated
	// EventDeadLetter 发给已终止 actor 的消息
	EventDeadLetter
)

var eventNames = [...]string{
	EventStarted:     "started",
	EventRestarting:  "restarting",
	EventRestarted:   "restarted",
	EventResumed:     "resumed",
	EventFailed:      "failed",
	EventEscalated:   "escalated",
	EventTerminating: "terminating",
	EventTerminated:  "terminated",
	EventDeadLetter:  "dead_letter",
}

func (t EventType) String() string {
	if int(t) >= 0 && int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

type Event struct {
	Type    EventType
	Ref     *Ref
	Err     error
	Phase   Phase
	Message interface{} // 仅 EventDeadLetter 和 EventFailed
	Time    time.Time
}
