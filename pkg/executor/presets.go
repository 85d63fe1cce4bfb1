package executor

// NewFixed 固定 n 个线程
func NewFixed(n int, opts ...Option) (*Executor, error) {
	cfg := DefaultConfig()
	cfg.MinSize, cfg.MaxSize = n, n
	return NewWithConfig(cfg, opts...)
}

// NewCached 没有常驻线程，按需扩容，空闲 60s 回收
func NewCached(opts ...Option) (*Executor, error) {
	return NewWithConfig(DefaultConfig(), opts...)
}

// NewSingle 单线程，任务按提交顺序执行
func NewSingle(opts ...Option) (*Executor, error) {
	return NewFixed(1, opts...)
}
