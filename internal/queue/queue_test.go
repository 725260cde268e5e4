package queue

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinQueue(t *testing.T) {
	pq := NewMin(4)
	for i, d := range []float64{3, 1, 2, 0.5} {
		pq.PushItem(PriorityQueueItem{Node: uint32(i), Distance: d})
	}

	top, ok := pq.TopItem()
	assert.True(t, ok)
	assert.Equal(t, uint32(3), top.Node)

	var got []float64
	for pq.Len() > 0 {
		it, _ := pq.PopItem()
		got = append(got, it.Distance)
	}
	assert.Equal(t, []float64{0.5, 1, 2, 3}, got)

	_, ok = pq.PopItem()
	assert.False(t, ok)
}

func TestMaxQueue(t *testing.T) {
	pq := NewMax(4)
	for i, d := range []float64{3, 1, 2} {
		pq.PushItem(PriorityQueueItem{Node: uint32(i), Distance: d})
	}

	top, _ := pq.TopItem()
	assert.Equal(t, 3.0, top.Distance)

	minItem, _ := pq.MinItem()
	assert.Equal(t, 1.0, minItem.Distance)
}

func TestTieBreakByNode(t *testing.T) {
	pq := NewMax(3)
	pq.PushItem(PriorityQueueItem{Node: 1, Distance: 1})
	pq.PushItem(PriorityQueueItem{Node: 7, Distance: 1})
	pq.PushItem(PriorityQueueItem{Node: 4, Distance: 1})

	// With equal distances the latest position is the worst.
	top, _ := pq.TopItem()
	assert.Equal(t, uint32(7), top.Node)

	out := pq.Drain()
	assert.Equal(t, []uint32{1, 4, 7}, []uint32{out[0].Node, out[1].Node, out[2].Node})
}

func TestPushBounded(t *testing.T) {
	pq := NewMax(2)
	assert.True(t, pq.PushBounded(PriorityQueueItem{Node: 0, Distance: 5}, 2))
	assert.True(t, pq.PushBounded(PriorityQueueItem{Node: 1, Distance: 3}, 2))
	assert.False(t, pq.PushBounded(PriorityQueueItem{Node: 2, Distance: 6}, 2))
	assert.True(t, pq.PushBounded(PriorityQueueItem{Node: 3, Distance: 1}, 2))
	// Equal distance, later position: not better than the worst.
	assert.False(t, pq.PushBounded(PriorityQueueItem{Node: 4, Distance: 3}, 2))

	out := pq.Drain()
	assert.Equal(t, []PriorityQueueItem{{Node: 3, Distance: 1}, {Node: 1, Distance: 3}}, out)

	assert.False(t, pq.PushBounded(PriorityQueueItem{Node: 5, Distance: 0}, 0))
}

func TestDrainMin(t *testing.T) {
	pq := NewMin(3)
	pq.PushItem(PriorityQueueItem{Node: 2, Distance: 2})
	pq.PushItem(PriorityQueueItem{Node: 1, Distance: 1})

	out := pq.Drain()
	assert.Equal(t, 1.0, out[0].Distance)
	assert.Equal(t, 2.0, out[1].Distance)
	assert.Equal(t, 0, pq.Len())
}

func TestHeapInterface(t *testing.T) {
	pq := NewMin(3)
	heap.Init(pq)
	heap.Push(pq, PriorityQueueItem{Node: 0, Distance: 2})
	heap.Push(pq, PriorityQueueItem{Node: 1, Distance: 1})

	it := heap.Pop(pq).(PriorityQueueItem)
	assert.Equal(t, uint32(1), it.Node)

	pq.Reset()
	assert.Equal(t, 0, pq.Len())
}
