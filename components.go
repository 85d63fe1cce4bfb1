package gconc

import (
	"context"

	"github.com/dzm2020/gconc/pkg/actor"
	"github.com/dzm2020/gconc/pkg/atomicx"
	"github.com/dzm2020/gconc/pkg/config"
	"github.com/dzm2020/gconc/pkg/executor"
	"github.com/dzm2020/gconc/pkg/glog"
	"github.com/dzm2020/gconc/pkg/lib/component"
	"go.uber.org/zap"
)

// atomicComponent 按配置固定 atomicx 的默认实现
type atomicComponent struct {
	component.BaseComponent[*config.Config]
	overridden bool
}

func (c *atomicComponent) Name() string { return "atomic" }

func (c *atomicComponent) Start(ctx context.Context, cfg *config.Config) error {
	strategy, explicit, err := atomicx.ParseStrategy(cfg.Atomic.Strategy)
	if err != nil {
		return err
	}
	if explicit {
		atomicx.SetDefaultStrategy(strategy)
		c.overridden = true
	}
	capability := atomicx.Probe()
	glog.Info("atomic strategy", zap.Stringer("default", atomicx.DefaultStrategy()),
		zap.Stringer("probed", capability.Strategy), zap.String("arch", capability.Arch))
	return nil
}

func (c *atomicComponent) Stop(ctx context.Context) error {
	if c.overridden {
		atomicx.ResetDefaultStrategy()
	}
	return nil
}

type executorComponent struct {
	component.BaseComponent[*config.Config]
	r *Runtime
}

func (c *executorComponent) Name() string { return "executor" }

func (c *executorComponent) Start(ctx context.Context, cfg *config.Config) error {
	e, err := executor.NewWithConfig(cfg.Executor, executor.WithMetrics(c.r.metrics))
	if err != nil {
		return err
	}
	c.r.executor = e
	return nil
}

func (c *executorComponent) Stop(ctx context.Context) error {
	return c.r.executor.ShutdownAndWait(ctx)
}

type actorComponent struct {
	component.BaseComponent[*config.Config]
	r    *Runtime
	ants *actor.AntsDispatcher
}

func (c *actorComponent) Name() string { return "actor" }

func (c *actorComponent) Start(ctx context.Context, cfg *config.Config) error {
	var dispatcher actor.Dispatcher
	switch cfg.Actor.Dispatcher {
	case config.DispatcherGoroutine:
		dispatcher = actor.NewGoroutineDispatcher()
	case config.DispatcherSynchronized:
		dispatcher = actor.NewSynchronizedDispatcher()
	case config.DispatcherAnts:
		d, err := actor.NewAntsDispatcher(cfg.Actor.AntsPoolSize)
		if err != nil {
			return err
		}
		c.ants = d
		dispatcher = d
	default:
		dispatcher = actor.NewExecutorDispatcher(c.r.executor)
	}
	system, err := actor.NewSystem(dispatcher,
		actor.WithAskTimeout(cfg.Actor.AskTimeout),
		actor.WithMetrics(c.r.metrics),
	)
	if err != nil {
		return err
	}
	c.r.system = system
	return nil
}

func (c *actorComponent) Stop(ctx context.Context) error {
	err := c.r.system.Shutdown(ctx)
	if c.ants != nil {
		c.ants.Release()
	}
	return err
}
