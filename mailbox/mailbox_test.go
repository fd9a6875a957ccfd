package mailbox

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainPreservesPushOrder(t *testing.T) {
	m := New()
	var order []int
	for i := 0; i < 10; i++ {
		i := i
		m.Push(func() { order = append(order, i) })
	}
	m.Drain()
	require.Len(t, order, 10)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestDrainEmptiesMailbox(t *testing.T) {
	m := New()
	m.Push(func() {})
	m.Drain()
	assert.Equal(t, 0, m.Len())
}

func TestReentrantPushDuringDrainDoesNotDeadlock(t *testing.T) {
	m := New()
	done := make(chan struct{})
	m.Push(func() {
		m.Push(func() { close(done) })
	})
	m.Drain()
	// the inner task was queued during drain, not invoked by it.
	assert.Equal(t, 1, m.Len())
	m.Drain()
	<-done
}

func TestPushIsSafeForConcurrentSubmitters(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	const n = 200
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			m.Push(func() {})
		}()
	}
	wg.Wait()
	assert.Equal(t, n, m.Len())
}

func TestDrainNoPendingTasksIsNoop(t *testing.T) {
	m := New()
	m.Drain() // must not panic on an empty mailbox
	assert.Equal(t, 0, m.Len())
}
