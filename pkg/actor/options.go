package actor

type Option func(*Options)

// Options Spawn 参数
type Options struct {
	Name       string
	Args       []interface{}
	Parent     *Ref
	Supervisor Supervisor
	Dispatcher Dispatcher
	Throughput int
}

func loadOptions(options ...Option) *Options {
	opts := &Options{}
	for _, option := range options {
		option(opts)
	}
	return opts
}

// WithName 在父 actor 下唯一，为空时使用 uuid
func WithName(name string) Option {
	return func(op *Options) {
		op.Name = name
	}
}

// WithArgs 传给每一次 OnInit，包括重启
func WithArgs(args ...interface{}) Option {
	return func(op *Options) {
		op.Args = args
	}
}

func WithParent(parent *Ref) Option {
	return func(op *Options) {
		op.Parent = parent
	}
}

// WithSupervisor 处理本 actor 失败的策略，默认 DefaultSupervisor
func WithSupervisor(supervisor Supervisor) Option {
	return func(op *Options) {
		op.Supervisor = supervisor
	}
}

// Unsupervised 失败即停止，不重启也不上报
func Unsupervised() Option {
	return WithSupervisor(StoppingSupervisor)
}

// WithDispatcher 默认使用 System 的 dispatcher
func WithDispatcher(dispatcher Dispatcher) Option {
	return func(op *Options) {
		op.Dispatcher = dispatcher
	}
}

// WithThroughput 单次调度最多处理的消息数，<=0 时使用 dispatcher 的值
func WithThroughput(n int) Option {
	return func(op *Options) {
		op.Throughput = n
	}
}
