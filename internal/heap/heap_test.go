package heap

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	key      int
	backlink int
}

func newTestHeap() *Heap[*testItem] {
	return New(
		func(a, b *testItem) int { return a.key - b.key },
		func(item *testItem) *int { return &item.backlink },
	)
}

// checkInvariants verifies the heap property and every backlink.
func checkInvariants(t *testing.T, h *Heap[*testItem]) {
	t.Helper()
	for i, item := range h.items.s {
		require.Equal(t, i, item.backlink, "backlink of item %d", i)
		if i > 0 {
			parent := h.items.s[(i-1)/2]
			require.LessOrEqual(t, parent.key, item.key, "heap order at %d", i)
		}
	}
}

func TestNew_nilArgsPanics(t *testing.T) {
	assert.Panics(t, func() { New[*testItem](nil, func(item *testItem) *int { return &item.backlink }) })
	assert.Panics(t, func() { New(func(a, b *testItem) int { return 0 }, nil) })
}

func TestHeap_empty(t *testing.T) {
	h := newTestHeap()
	assert.Equal(t, 0, h.Len())
	_, ok := h.Top()
	assert.False(t, ok)
	_, ok = h.Pop()
	assert.False(t, ok)
	_, ok = h.ReamKeep()
	assert.False(t, ok)
}

func TestHeap_pushPopOrdered(t *testing.T) {
	h := newTestHeap()
	r := rand.New(rand.NewSource(1))
	var keys []int
	for i := 0; i < 500; i++ {
		k := r.Intn(100)
		keys = append(keys, k)
		h.Push(&testItem{key: k})
		checkInvariants(t, h)
	}
	sort.Ints(keys)
	for _, want := range keys {
		top, ok := h.Top()
		require.True(t, ok)
		item, ok := h.Pop()
		require.True(t, ok)
		require.Same(t, top, item)
		require.Equal(t, want, item.key)
		require.Equal(t, -1, item.backlink)
	}
	assert.Equal(t, 0, h.Len())
}

func TestHeap_deleteArbitrary(t *testing.T) {
	h := newTestHeap()
	all := make([]*testItem, 64)
	for i := range all {
		all[i] = &testItem{key: (i * 37) % 64}
		h.Push(all[i])
	}
	for i := 0; i < len(all); i += 3 {
		h.Delete(all[i])
		assert.Equal(t, -1, all[i].backlink)
		assert.False(t, h.Contains(all[i]))
		checkInvariants(t, h)
	}
	for i, item := range all {
		assert.Equal(t, i%3 != 0, h.Contains(item))
	}
}

func TestHeap_update(t *testing.T) {
	h := newTestHeap()
	a, b, c := &testItem{key: 10}, &testItem{key: 5}, &testItem{key: 20}
	h.Push(a)
	h.Push(b)
	h.Push(c)

	top, _ := h.Top()
	require.Same(t, b, top)

	c.key = 1
	h.Update(c)
	checkInvariants(t, h)
	top, _ = h.Top()
	require.Same(t, c, top)

	c.key = 50
	h.Update(c)
	checkInvariants(t, h)
	top, _ = h.Top()
	require.Same(t, b, top)
}

func TestHeap_notInHeapPanics(t *testing.T) {
	h := newTestHeap()
	other := newTestHeap()
	item := &testItem{key: 1, backlink: -1}
	assert.PanicsWithValue(t, ErrNotInHeap, func() { h.Delete(item) })

	other.Push(item)
	h.Push(&testItem{key: 2})
	// index 0 is valid for h, but refers to a different element
	assert.PanicsWithValue(t, ErrNotInHeap, func() { h.Update(item) })
}

func TestHeap_reamKeep(t *testing.T) {
	h := newTestHeap()
	in := map[*testItem]bool{}
	for i := 0; i < 10; i++ {
		item := &testItem{key: i}
		in[item] = true
		h.Push(item)
	}
	for {
		item, ok := h.ReamKeep()
		if !ok {
			break
		}
		require.True(t, in[item])
		require.Equal(t, -1, item.backlink)
		delete(in, item)
	}
	assert.Empty(t, in)
	assert.Equal(t, 0, h.Len())

	// still usable
	h.Push(&testItem{key: 3})
	top, ok := h.Top()
	require.True(t, ok)
	assert.Equal(t, 3, top.key)
}
