package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFOOrder(t *testing.T) {
	q := NewRingQueue[int](4)
	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	for i := 1; i <= 3; i++ {
		v, err := q.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	assert.True(t, q.IsEmpty())
}

func TestRingQueueFullAndEmpty(t *testing.T) {
	q := NewRingQueue[string](2)
	require.NoError(t, q.Enqueue("a"))
	require.NoError(t, q.Enqueue("b"))
	assert.True(t, q.IsFull())
	assert.Error(t, q.Enqueue("c"))

	_, err := q.Dequeue()
	require.NoError(t, err)
	require.NoError(t, q.Enqueue("c"))

	q.Dequeue()
	q.Dequeue()
	_, err = q.Dequeue()
	assert.Error(t, err)
}

func TestRingQueuePeekDoesNotRemove(t *testing.T) {
	q := NewRingQueue[int](4)
	require.NoError(t, q.Enqueue(7))

	v, err := q.Peek()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, q.Count())
}

func TestRingQueueWrapsAround(t *testing.T) {
	q := NewRingQueue[int](3)
	for round := 0; round < 5; round++ {
		for i := 0; i < 3; i++ {
			require.NoError(t, q.Enqueue(round*10+i))
		}
		for i := 0; i < 3; i++ {
			v, err := q.Dequeue()
			require.NoError(t, err)
			assert.Equal(t, round*10+i, v)
		}
	}
}
