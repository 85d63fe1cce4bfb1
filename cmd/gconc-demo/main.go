package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/dzm2020/gconc"
	"github.com/dzm2020/gconc/pkg/actor"
	"github.com/dzm2020/gconc/pkg/atomicx"
	"github.com/dzm2020/gconc/pkg/config"
	"github.com/dzm2020/gconc/pkg/glog"
	"github.com/pkg/errors"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	path := flag.String("config", "", "yaml 配置文件，为空时使用默认配置")
	flag.Parse()

	if _, err := maxprocs.Set(maxprocs.Logger(glog.Infof)); err != nil {
		glog.Warn("set GOMAXPROCS failed", zap.Error(err))
	}

	var (
		r   *gconc.Runtime
		err error
	)
	if *path != "" {
		r, err = gconc.Init(*path)
	} else {
		r, err = gconc.InitWithConfig(config.Default())
	}
	if err != nil {
		glog.Error("init runtime failed", zap.Error(err))
		os.Exit(1)
	}

	err = run(r)
	if stopErr := gconc.ShutdownTimeout(10 * time.Second); stopErr != nil {
		glog.Error("shutdown runtime failed", zap.Error(stopErr))
	}
	if err != nil {
		glog.Error("demo failed", zap.Error(err))
		os.Exit(1)
	}
	glog.Info("demo finished")
}

func run(r *gconc.Runtime) error {
	for _, scenario := range []struct {
		name string
		fn   func(r *gconc.Runtime) error
	}{
		{"executor", submitAnswer},
		{"actor", askCounter},
		{"atomic", convergeCell},
	} {
		if err := scenario.fn(r); err != nil {
			return errors.WithMessagef(err, "scenario %s", scenario.name)
		}
		glog.Info("scenario passed", zap.String("scenario", scenario.name))
	}
	return nil
}

// submitAnswer 线程池任务的结果通过 future 取回
func submitAnswer(r *gconc.Runtime) error {
	f, err := r.Executor().Submit(func(ctx context.Context) (interface{}, error) {
		return 42, nil
	})
	if err != nil {
		return err
	}
	v, err := f.WaitTimeout(time.Second)
	if err != nil {
		return err
	}
	if v != 42 {
		return errors.Errorf("unexpected result %v", v)
	}
	return nil
}

type counter struct {
	actor.BaseActor
	n int
}

func (c *counter) OnMessage(ctx actor.Context, msg interface{}) (interface{}, error) {
	switch m := msg.(type) {
	case int:
		c.n += m
		return c.n, nil
	}
	return c.BaseActor.OnMessage(ctx, msg)
}

// askCounter 终止后的请求必须被拒绝
func askCounter(r *gconc.Runtime) error {
	ref, err := r.System().Spawn(func() actor.Actor { return &counter{n: 1} }, actor.WithName("counter"))
	if err != nil {
		return err
	}
	v, err := ref.Ask(5, time.Second).Wait()
	if err != nil {
		return err
	}
	if v != 6 {
		return errors.Errorf("unexpected reply %v", v)
	}

	ref.Terminate()
	select {
	case <-ref.Done():
	case <-time.After(time.Second):
		return errors.New("counter not terminated")
	}
	if _, err = ref.Ask(1, time.Second).Wait(); !errors.Is(err, actor.ErrActorTerminated) {
		return errors.Errorf("ask after terminate returned %v", err)
	}
	return nil
}

// convergeCell 10 个 goroutine 各自累加 1000 次
func convergeCell(r *gconc.Runtime) error {
	cell := atomicx.NewReference(0)
	var g errgroup.Group
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			for j := 0; j < 1000; j++ {
				cell.Update(func(v int) int { return v + 1 })
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if v := cell.Get(); v != 10000 {
		return errors.Errorf("cell converged to %d", v)
	}
	glog.Info("atomic cell converged", zap.Stringer("strategy", cell.Strategy()), zap.Int("value", cell.Get()))
	return nil
}
