package lib

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMpsc_FIFO(t *testing.T) {
	q := NewMpsc[int]()
	assert.True(t, q.Empty())
	for i := 0; i < 10; i++ {
		q.Push(i)
	}
	assert.Equal(t, 10, q.Len())
	for i := 0; i < 10; i++ {
		v, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := q.Pop()
	assert.False(t, ok, "空队列 Pop 应该返回 false")
	assert.True(t, q.Empty())
}

func TestMpsc_ConcurrentProducers(t *testing.T) {
	const producers, perProducer = 8, 1000
	q := NewMpsc[[2]int]()

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push([2]int{p, i})
			}
		}(p)
	}
	wg.Wait()

	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	count := 0
	for {
		v, ok := q.Pop()
		if !ok {
			break
		}
		// 同一生产者的消息保持发送顺序
		require.Equal(t, last[v[0]]+1, v[1])
		last[v[0]] = v[1]
		count++
	}
	assert.Equal(t, producers*perProducer, count)
}

// 消费者交接期间，旧消费者的 Empty 检查与新消费者的 Pop 并发
func TestMpsc_EmptyConcurrentWithPop(t *testing.T) {
	const n = 10000
	q := NewMpsc[int]()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Push(i)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			_ = q.Empty()
		}
	}()

	got := 0
	for got < n {
		if v, ok := q.Pop(); ok {
			require.Equal(t, got, v)
			got++
		}
	}
	wg.Wait()
	assert.True(t, q.Empty())
	assert.Equal(t, 0, q.Len())
}
