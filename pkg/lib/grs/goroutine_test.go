package grs

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTry_ReturnsError(t *testing.T) {
	want := errors.New("boom")
	err := Try(func() error { return want })
	assert.Same(t, want, err)
}

func TestTry_RecoversPanic(t *testing.T) {
	before := PanicCount()
	err := Try(func() error { panic("oops") })
	require.Error(t, err)

	var pe *PanicError
	require.True(t, errors.As(err, &pe), "panic 应该被转换为 *PanicError")
	assert.Equal(t, "oops", pe.Value)
	assert.NotEmpty(t, pe.Stack)
	assert.Equal(t, before+1, PanicCount())
}

func TestTry_PanicWithError(t *testing.T) {
	cause := errors.New("cause")
	err := Try(func() error { panic(cause) })
	assert.ErrorIs(t, err, cause)
}

func TestGo_PanicHandled(t *testing.T) {
	var mu sync.Mutex
	var got error
	done := make(chan struct{})
	Go(func() {
		defer close(done)
		panic("in goroutine")
	}, func(err error) {
		mu.Lock()
		got = err
		mu.Unlock()
	})
	<-done
	Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Error(t, got)
	assert.Contains(t, got.Error(), "in goroutine")
}

func TestGo_CountAndWait(t *testing.T) {
	before := Count()
	release := make(chan struct{})
	Go(func() { <-release }, nil)
	assert.Equal(t, before+1, Count())

	close(release)
	Wait()
	assert.Equal(t, before, Count())
}

func TestSetPanicHandler(t *testing.T) {
	var got *PanicError
	SetPanicHandler(func(pe *PanicError) { got = pe })
	defer SetPanicHandler(nil)

	require.Error(t, Try(func() error { panic("observed") }))
	require.NotNil(t, got)
	assert.Equal(t, "observed", got.Value)

	SetPanicHandler(nil)
	got = nil
	require.Error(t, Try(func() error { panic("ignored") }))
	assert.Nil(t, got, "清除后不应该再回调")
}
