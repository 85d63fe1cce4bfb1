// Package actor 轻量 actor 运行时
//
// 每个 actor 拥有一个 mpsc 邮箱，邮箱的消费被调度到 Dispatcher 上串行执行，
// 同一个 actor 任意时刻最多处理一条消息。actor 失败时由 Supervisor 决定
// 恢复、重启、停止还是上报给父 actor。
package actor

type (
	// Actor 消息处理行为，返回值作为 Ask 的结果
	Actor interface {
		OnMessage(ctx Context, msg interface{}) (interface{}, error)
	}

	// Initializer 构造后、开始处理消息前调用，args 为 WithArgs 传入的参数
	Initializer interface {
		OnInit(ctx Context, args []interface{}) error
	}

	// Stopper 重启或终止时调用
	Stopper interface {
		OnStop(ctx Context) error
	}

	// Matcher Handles 返回 false 的消息按 UnknownMessage 失败处理，不会进入 OnMessage
	Matcher interface {
		Handles(msg interface{}) bool
	}

	// ChildWatcher 接收子 actor 的生命周期事件
	ChildWatcher interface {
		OnChildEvent(ctx Context, ev Event)
	}

	// Producer 每次启动和重启都会调用，返回全新的行为
	Producer func() Actor
)

var (
	_ Actor       = (*BaseActor)(nil)
	_ Initializer = (*BaseActor)(nil)
	_ Stopper     = (*BaseActor)(nil)
)

// BaseActor 空实现，嵌入后只需重写关心的方法
type BaseActor struct{}

func (*BaseActor) OnInit(ctx Context, args []interface{}) error { return nil }
func (*BaseActor) OnStop(ctx Context) error                     { return nil }

func (*BaseActor) OnMessage(ctx Context, msg interface{}) (interface{}, error) {
	return nil, Unhandled(msg)
}

// Func 函数形式的行为
type Func func(ctx Context, msg interface{}) (interface{}, error)

func (f Func) OnMessage(ctx Context, msg interface{}) (interface{}, error) {
	return f(ctx, msg)
}

// FromFunc 以函数构造 Producer
func FromFunc(f Func) Producer {
	return func() Actor { return f }
}
