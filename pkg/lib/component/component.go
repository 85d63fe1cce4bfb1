package component

import (
	"context"
)

// IComponent 可按顺序启动、逆序停止的组件
type IComponent[T any] interface {
	Name() string
	Start(ctx context.Context, t T) error
	Stop(ctx context.Context) error
}

// BaseComponent 空实现，嵌入后只需实现需要的方法
type BaseComponent[T any] struct{}

func (*BaseComponent[T]) Start(ctx context.Context, t T) error { return nil }
func (*BaseComponent[T]) Stop(ctx context.Context) error       { return nil }
