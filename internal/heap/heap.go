// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package heap implements a backlinked binary min-heap.
//
// Each element carries its own heap index (the "backlink"), exposed to the
// heap via an accessor supplied at construction. This gives O(log n)
// removal and re-ordering of arbitrary elements, without a separate handle
// table. The heap is not safe for concurrent use.
package heap

import (
	"container/heap"
	"errors"
)

// ErrNotInHeap is the panic value when an operation is given an element
// that is not currently linked into the receiver.
var ErrNotInHeap = errors.New(`heap: item not in heap`)

// Heap is a min-heap of T, ordered by a three-way comparator.
//
// The zero value is not usable, see New.
type Heap[T comparable] struct {
	items items[T]
}

// items implements heap.Interface, maintaining backlinks on every move.
type items[T comparable] struct {
	s        []T
	cmp      func(a, b T) int
	backlink func(item T) *int
}

// New returns a heap ordered by cmp, which must return a negative value if
// a sorts before b, positive if after, and zero if they are unordered
// relative to each other. The backlink function must return a stable
// pointer to the int field, embedded in the element, which the heap
// exclusively owns while the element is linked.
func New[T comparable](cmp func(a, b T) int, backlink func(item T) *int) *Heap[T] {
	if cmp == nil || backlink == nil {
		panic(errors.New(`heap: nil cmp or backlink`))
	}
	return &Heap[T]{
		items: items[T]{cmp: cmp, backlink: backlink},
	}
}

// Len returns the number of linked elements.
func (x *Heap[T]) Len() int { return len(x.items.s) }

// Push links item into the heap.
func (x *Heap[T]) Push(item T) {
	heap.Push(&x.items, item)
}

// Top returns the least element without removing it.
func (x *Heap[T]) Top() (item T, ok bool) {
	if len(x.items.s) == 0 {
		return
	}
	return x.items.s[0], true
}

// Pop removes and returns the least element.
func (x *Heap[T]) Pop() (item T, ok bool) {
	if len(x.items.s) == 0 {
		return
	}
	return heap.Pop(&x.items).(T), true
}

// Delete unlinks item, which must be in the heap.
func (x *Heap[T]) Delete(item T) {
	heap.Remove(&x.items, x.index(item))
}

// Update restores the heap order after the key of item has changed.
func (x *Heap[T]) Update(item T) {
	heap.Fix(&x.items, x.index(item))
}

// Contains reports whether item is currently linked into the heap.
func (x *Heap[T]) Contains(item T) bool {
	i := *x.items.backlink(item)
	return i >= 0 && i < len(x.items.s) && x.items.s[i] == item
}

// ReamKeep detaches and returns an arbitrary element, without restoring the
// heap order, for use when discarding the contents in bulk. The heap itself
// remains usable (empty) once ReamKeep has returned false, but it must not be
// used for anything else until then.
func (x *Heap[T]) ReamKeep() (item T, ok bool) {
	n := len(x.items.s)
	if n == 0 {
		x.items.s = x.items.s[:0]
		return
	}
	item = x.items.s[n-1]
	var zero T
	x.items.s[n-1] = zero
	x.items.s = x.items.s[:n-1]
	*x.items.backlink(item) = -1
	return item, true
}

func (x *Heap[T]) index(item T) int {
	if !x.Contains(item) {
		panic(ErrNotInHeap)
	}
	return *x.items.backlink(item)
}

func (x *items[T]) Len() int { return len(x.s) }

func (x *items[T]) Less(i, j int) bool { return x.cmp(x.s[i], x.s[j]) < 0 }

func (x *items[T]) Swap(i, j int) {
	x.s[i], x.s[j] = x.s[j], x.s[i]
	*x.backlink(x.s[i]) = i
	*x.backlink(x.s[j]) = j
}

func (x *items[T]) Push(v any) {
	item := v.(T)
	*x.backlink(item) = len(x.s)
	x.s = append(x.s, item)
}

func (x *items[T]) Pop() any {
	n := len(x.s)
	item := x.s[n-1]
	var zero T
	x.s[n-1] = zero
	x.s = x.s[:n-1]
	*x.backlink(item) = -1
	return item
}
