package component

import (
	"context"
	"errors"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

var (
	ErrComponentCannotBeNil                = errors.New("component cannot be nil")
	ErrComponentNameCannotBeEmpty          = errors.New("component name cannot be empty")
	ErrCannotRegisterComponentAfterStarted = errors.New("cannot register component after started")
	ErrComponentAlreadyRegistered          = errors.New("component already registered")
	ErrManagerAlreadyStarted               = errors.New("component manager already started")
	ErrManagerStoppedCannotRestart         = errors.New("component manager stopped, cannot restart")
)

// Manager 按注册顺序启动组件，按逆序停止
type Manager[T any] struct {
	mu         sync.Mutex
	components []IComponent[T]
	started    []IComponent[T]
	isStarted  bool
	isStopped  bool
}

func NewManager[T any]() *Manager[T] {
	return &Manager[T]{}
}

// Register 注册组件，启动后不允许注册
func (cm *Manager[T]) Register(component IComponent[T]) error {
	if component == nil {
		return ErrComponentCannotBeNil
	}
	if component.Name() == "" {
		return ErrComponentNameCannotBeEmpty
	}
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.isStarted || cm.isStopped {
		return ErrCannotRegisterComponentAfterStarted
	}
	if slices.ContainsFunc(cm.components, func(c IComponent[T]) bool { return c.Name() == component.Name() }) {
		return ErrComponentAlreadyRegistered
	}
	cm.components = append(cm.components, component)
	return nil
}

// Get 按名字查找组件
func (cm *Manager[T]) Get(name string) IComponent[T] {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	index := slices.IndexFunc(cm.components, func(c IComponent[T]) bool { return c.Name() == name })
	if index < 0 {
		return nil
	}
	return cm.components[index]
}

// Names 按注册顺序返回组件名
func (cm *Manager[T]) Names() []string {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	names := make([]string, 0, len(cm.components))
	for _, c := range cm.components {
		names = append(names, c.Name())
	}
	return names
}

// Start 依次启动，任意组件失败时逆序停止已经启动的组件
func (cm *Manager[T]) Start(ctx context.Context, t T) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.isStarted {
		return ErrManagerAlreadyStarted
	}
	if cm.isStopped {
		return ErrManagerStoppedCannotRestart
	}
	for _, c := range cm.components {
		if err := c.Start(ctx, t); err != nil {
			_ = stopReverse(ctx, cm.started)
			cm.started = nil
			cm.isStopped = true
			return pkgerrors.Wrapf(err, "start component %s", c.Name())
		}
		cm.started = append(cm.started, c)
	}
	cm.isStarted = true
	return nil
}

// Stop 逆序停止所有已启动组件，返回最后一个错误
func (cm *Manager[T]) Stop(ctx context.Context) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if !cm.isStarted || cm.isStopped {
		return nil
	}
	cm.isStopped = true
	err := stopReverse(ctx, cm.started)
	cm.started = nil
	return err
}

// StopWithTimeout 使用超时停止所有组件
func (cm *Manager[T]) StopWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return cm.Stop(ctx)
}

func stopReverse[T any](ctx context.Context, components []IComponent[T]) error {
	var lastErr error
	for i := len(components) - 1; i >= 0; i-- {
		if err := components[i].Stop(ctx); err != nil {
			lastErr = pkgerrors.Wrapf(err, "stop component %s", components[i].Name())
		}
	}
	return lastErr
}
