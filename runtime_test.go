package gconc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dzm2020/gconc/pkg/actor"
	"github.com/dzm2020/gconc/pkg/atomicx"
	"github.com/dzm2020/gconc/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Glog.Path = ""
	cfg.Executor.MinSize = 1
	cfg.Executor.MaxSize = 4
	return cfg
}

func TestRuntime_StartAndShutdown(t *testing.T) {
	registry := prometheus.NewRegistry()
	r, err := New(testConfig(), WithRegisterer(registry))
	require.NoError(t, err)
	require.NoError(t, r.Start(context.Background()))

	f, err := r.Executor().Submit(func(ctx context.Context) (interface{}, error) { return 42, nil })
	require.NoError(t, err)
	v, err := f.WaitTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	ref, err := r.System().Spawn(actor.FromFunc(func(ctx actor.Context, msg interface{}) (interface{}, error) {
		return msg.(int) + 1, nil
	}))
	require.NoError(t, err)
	v, err = ref.Ask(5, time.Second).Wait()
	require.NoError(t, err)
	assert.Equal(t, 6, v)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(ctx))
	assert.True(t, ref.IsTerminated())
	assert.True(t, r.Executor().IsShutdown())
	assert.GreaterOrEqual(t, testutil.ToFloat64(r.Metrics().ActorMessages), 1.0)
	completed := testutil.ToFloat64(r.Metrics().PoolTasks.WithLabelValues("default", "completed"))
	assert.Equal(t, float64(r.Executor().CompletedTaskCount()), completed, "邮箱调度和 Submit 都计入线程池指标")
}

func TestRuntime_AtomicStrategyFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Atomic.Strategy = "mutex"
	r, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, r.Start(context.Background()))
	assert.Equal(t, atomicx.StrategyMutex, atomicx.DefaultStrategy())
	assert.Equal(t, atomicx.StrategyMutex, atomicx.NewReference(1).Strategy())

	require.NoError(t, r.Shutdown(context.Background()))
	assert.Equal(t, atomicx.Probe().Strategy, atomicx.DefaultStrategy())
}

func TestRuntime_Dispatchers(t *testing.T) {
	for _, name := range []string{config.DispatcherGoroutine, config.DispatcherAnts, config.DispatcherSynchronized} {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Actor.Dispatcher = name
			cfg.Actor.AntsPoolSize = 8
			r, err := New(cfg)
			require.NoError(t, err)
			require.NoError(t, r.Start(context.Background()))
			ref, err := r.System().Spawn(actor.FromFunc(func(ctx actor.Context, msg interface{}) (interface{}, error) {
				return msg, nil
			}))
			require.NoError(t, err)
			v, err := ref.Ask("echo", time.Second).Wait()
			require.NoError(t, err)
			assert.Equal(t, "echo", v)
			require.NoError(t, r.Shutdown(context.Background()))
		})
	}
}

func TestRuntime_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Actor.Dispatcher = "fibers"
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Executor.MaxSize = 0
	r, err := New(cfg)
	require.NoError(t, err)
	assert.Error(t, r.Start(context.Background()), "线程池配置错误应该让启动失败")
}

func TestInit_Once(t *testing.T) {
	r, err := InitWithConfig(testConfig())
	require.NoError(t, err)
	assert.Same(t, r, Get())

	_, err = InitWithConfig(testConfig())
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	require.NoError(t, ShutdownTimeout(5*time.Second))
	assert.Nil(t, Get())
	assert.ErrorIs(t, Shutdown(context.Background()), ErrNotInitialized)
}

func TestInit_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gconc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("glog:\n  path: \"\"\nexecutor:\n  minSize: 1\n  maxSize: 2\n"), 0o644))
	r, err := Init(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, ShutdownTimeout(5*time.Second)) }()
	assert.Equal(t, 2, r.Executor().Max())
	assert.Equal(t, 1, r.Executor().Min())
}
