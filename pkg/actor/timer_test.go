package actor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestTimer_SendAfter(t *testing.T) {
	s := newTestSystem(t)
	got := make(chan interface{}, 4)
	ref, err := s.Spawn(FromFunc(func(ctx Context, msg interface{}) (interface{}, error) {
		switch msg {
		case "start":
			return ctx.SendAfter(10*time.Millisecond, "tick"), nil
		case "tick":
			assert.Equal(t, ctx.Self(), ctx.Sender(), "定时消息的发送者是自身")
			got <- msg
		}
		return nil, nil
	}))
	require.NoError(t, err)

	id := mustAsk(t, ref, "start")
	assert.NotEqual(t, TimerID(0), id)
	select {
	case v := <-got:
		assert.Equal(t, "tick", v)
	case <-time.After(time.Second):
		t.Fatal("定时消息没有送达")
	}
	assert.Equal(t, 0, ref.cell.timers.len(), "一次性定时器送达后应该移除")
}

func TestTimer_SendEveryAndCancel(t *testing.T) {
	s := newTestSystem(t)
	ticks := atomic.NewInt64(0)
	var id TimerID
	ref, err := s.Spawn(FromFunc(func(ctx Context, msg interface{}) (interface{}, error) {
		switch msg {
		case "start":
			id = ctx.SendEvery(5*time.Millisecond, "tick")
		case "tick":
			if ticks.Inc() == 3 {
				assert.True(t, ctx.CancelTimer(id))
			}
		}
		return nil, nil
	}))
	require.NoError(t, err)

	mustAsk(t, ref, "start")
	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(3), ticks.Load(), "在 actor 线程取消后不应该再收到消息")
	assert.False(t, ref.cell.CancelTimer(id))
}

func TestTimer_CancelBeforeFire(t *testing.T) {
	s := newTestSystem(t)
	fired := atomic.NewBool(false)
	ref, err := s.Spawn(FromFunc(func(ctx Context, msg interface{}) (interface{}, error) {
		if msg == "tick" {
			fired.Store(true)
		}
		return nil, nil
	}))
	require.NoError(t, err)

	id := ref.cell.SendAfter(30*time.Millisecond, "tick")
	assert.True(t, ref.cell.CancelTimer(id))
	assert.False(t, ref.cell.CancelTimer(id))
	time.Sleep(80 * time.Millisecond)
	mustAsk(t, ref, "sync")
	assert.False(t, fired.Load())
}

func TestTimer_CancelledOnRestartAndTerminate(t *testing.T) {
	s := newTestSystem(t)
	ref, err := s.Spawn(FromFunc(func(ctx Context, msg interface{}) (interface{}, error) {
		switch msg {
		case "start":
			ctx.SendEvery(time.Hour, "tick")
			ctx.SendAfter(time.Hour, "tick")
		case "boom":
			return nil, errors.New("boom")
		}
		return nil, nil
	}))
	require.NoError(t, err)

	mustAsk(t, ref, "start")
	assert.Equal(t, 2, ref.cell.timers.len())
	_, err = ref.Ask("boom", time.Second).Wait()
	require.Error(t, err)
	mustAsk(t, ref, "sync")
	assert.Equal(t, 0, ref.cell.timers.len(), "重启应该取消所有定时器")

	mustAsk(t, ref, "start")
	ref.Terminate()
	waitDone(t, ref)
	assert.Equal(t, 0, ref.cell.timers.len())
	assert.Equal(t, TimerID(0), ref.cell.SendAfter(time.Millisecond, "tick"), "终止后不能再注册定时器")
}
