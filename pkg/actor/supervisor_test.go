package actor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSupervisor(t *testing.T) {
	err := errors.New("x")
	assert.Equal(t, Restart, DefaultSupervisor.Decide(Failure{Err: err, Phase: PhaseMessage}))
	assert.Equal(t, Restart, DefaultSupervisor.Decide(Failure{Err: err, Phase: PhaseChild}))
	assert.Equal(t, Escalate, DefaultSupervisor.Decide(Failure{Err: err, Phase: PhaseInit}))
	assert.Equal(t, Escalate, DefaultSupervisor.Decide(Failure{Err: err, Phase: PhaseRestart}))
	assert.Equal(t, Stop, StoppingSupervisor.Decide(Failure{Err: err}))
}

func TestOneForOne_Window(t *testing.T) {
	now := time.Unix(0, 0)
	s := NewOneForOne(2, time.Second, nil)
	s.now = func() time.Time { return now }
	ref := &Ref{path: "/a"}
	f := Failure{Ref: ref, Err: errors.New("x")}

	assert.Equal(t, Restart, s.Decide(f))
	assert.Equal(t, Restart, s.Decide(f))
	assert.Equal(t, Escalate, s.Decide(f), "窗口内超过次数应该上报")

	// 历史已清空，窗口外的重启不计数
	assert.Equal(t, Restart, s.Decide(f))
	now = now.Add(2 * time.Second)
	assert.Equal(t, Restart, s.Decide(f))
	assert.Equal(t, Restart, s.Decide(f))

	other := Failure{Ref: &Ref{path: "/b"}, Err: errors.New("x")}
	assert.Equal(t, Restart, s.Decide(other), "不同 actor 分别计数")

	assert.Equal(t, Escalate, s.Decide(Failure{Ref: ref, Phase: PhaseRestart}), "非重启决策原样返回")
}

func TestDirectiveAndPhaseString(t *testing.T) {
	assert.Equal(t, "restart", Restart.String())
	assert.Equal(t, "escalate", Escalate.String())
	assert.Equal(t, "child", PhaseChild.String())
	assert.Equal(t, "dead_letter", EventDeadLetter.String())
	assert.Equal(t, "terminating", StateTerminating.String())
}
