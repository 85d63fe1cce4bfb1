package atomicx

import "errors"

var (
	// ErrConcurrentUpdate TryUpdate 读写之间值被其它协程修改
	ErrConcurrentUpdate = errors.New("atomicx: concurrent update detected")
	// ErrUnknownStrategy 无法识别的实现策略
	ErrUnknownStrategy = errors.New("atomicx: unknown strategy")
)
