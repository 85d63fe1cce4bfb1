package executor

import (
	"context"
	"errors"

	"go.uber.org/atomic"
)

// worker 绑定一个协程，循环从队列取任务执行
type worker struct {
	id         uint64
	e          *Executor
	first      *job
	lastActive atomic.Time
	exited     bool
}

func newWorker(e *Executor, id uint64, first *job) *worker {
	w := &worker{id: id, e: e, first: first}
	w.lastActive.Store(e.clock.Now())
	return w
}

func (w *worker) start() {
	go w.run()
}

func (w *worker) run() {
	// 任务中调用 runtime.Goexit 时 exited 不会被置位
	defer func() {
		if !w.exited {
			w.e.workerDied(w)
		}
	}()
	for {
		j, ok := w.next()
		if !ok {
			w.exited = true
			return
		}
		w.e.runTask(w.e.ctx, j.task, w.id)
		w.lastActive.Store(w.e.clock.Now())
	}
}

func (w *worker) next() (*job, bool) {
	if j := w.first; j != nil {
		w.first = nil
		return j, true
	}
	for {
		j, stop, err := w.e.take()
		switch {
		case err == nil && stop:
			w.e.workerExit(w, EventWorkerStopped)
			return nil, false
		case err == nil:
			return &j, true
		case errors.Is(err, context.DeadlineExceeded):
			if w.e.tryRetire(w) {
				return nil, false
			}
		default:
			// Kill 或队列关闭
			w.e.workerExit(w, EventWorkerStopped)
			return nil, false
		}
	}
}
