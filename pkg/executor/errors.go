package executor

import "errors"

var (
	// ErrRejectedExecution 线程池未处于运行状态或队列已满
	ErrRejectedExecution = errors.New("executor: rejected execution")
	// ErrInvalidConfig 线程数配置不合法
	ErrInvalidConfig = errors.New("executor: invalid config")
	ErrNilTask       = errors.New("executor: nil task")
	// ErrAbnormalExit 任务调用了 runtime.Goexit，没有正常返回
	ErrAbnormalExit = errors.New("executor: task exited abnormally")
)
