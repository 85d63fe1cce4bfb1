package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListener_RegisterAndCancel(t *testing.T) {
	l := NewListener[int]()
	var a, b []int
	cancelA := l.Register(func(v int) { a = append(a, v) })
	l.Register(func(v int) { b = append(b, v) })
	assert.Equal(t, 2, l.Len())

	l.Notify(1)
	cancelA()
	cancelA() // 重复取消无副作用
	l.Notify(2)

	assert.Equal(t, []int{1}, a)
	assert.Equal(t, []int{1, 2}, b)
	assert.Equal(t, 1, l.Len())
}

func TestListener_PanicIsolated(t *testing.T) {
	l := NewListener[string]()
	var got []string
	l.Register(func(string) { panic("bad listener") })
	l.Register(func(s string) { got = append(got, s) })

	assert.NotPanics(t, func() { l.Notify("x") })
	assert.Equal(t, []string{"x"}, got)
}
