// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package qtimer implements a collection of timers, ordered by deadline, that
// are dispatched one at a time.
//
// A [Timer] is linked into its [Pile] while set (active). [Pile.DispatchNext]
// calls the action of the earliest timer, if it has expired, leaving the
// timer linked until the action returns. The action may unset, re-set, or
// otherwise modify its own timer (or any other), and a timer that is neither
// unset nor re-set by its action is unset once the action returns. Timers
// are therefore one-shot, unless re-armed.
//
// Neither type is safe for concurrent use.
package qtimer

import (
	"cmp"

	"github.com/joeycumines/go-qdispatch/internal/heap"
	"github.com/joeycumines/go-qdispatch/qtime"
	"github.com/joeycumines/logiface"
)

// Pile is a min-heap of active timers, ordered by deadline. Timers with equal
// deadlines are dispatched in an unspecified order.
//
// The zero value is ready to use, with the default options.
type Pile struct {
	// Prevent copying
	_ [0]func()

	logger *logiface.Logger[logiface.Event]
	timers *heap.Heap[*Timer]

	// unsetPending is the timer under dispatch, which is unlinked after its
	// action returns, unless the action unset or re-set it
	unsetPending *Timer

	allocated bool
	reaming   bool
	released  bool
}

// NewPile initialises storage as an empty Pile, allocating one if storage is
// nil.
func NewPile(storage *Pile, opts ...Option) (*Pile, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	if storage == nil {
		storage = &Pile{allocated: true}
	} else {
		*storage = Pile{}
	}
	storage.logger = cfg.logger
	return storage, nil
}

// Len returns the number of active timers.
func (x *Pile) Len() int {
	if x.timers == nil {
		return 0
	}
	return x.timers.Len()
}

// Next returns the earliest deadline of any active timer.
func (x *Pile) Next() (qtime.Time, bool) {
	if x.timers == nil {
		return qtime.Never, false
	}
	t, ok := x.timers.Top()
	if !ok {
		return qtime.Never, false
	}
	return t.when, true
}

// DispatchNext calls the action of the earliest timer, if its deadline is not
// after upto, returning true if it did so. At most one timer is dispatched
// per call.
func (x *Pile) DispatchNext(upto qtime.Time) bool {
	x.mustUsable()

	if t := x.unsetPending; t != nil {
		// the previous action did not return normally
		x.unsetPending = nil
		x.unlink(t)
	}

	if x.timers == nil {
		return false
	}
	t, ok := x.timers.Top()
	if !ok || t.when.After(upto) {
		return false
	}

	x.logger.Trace().
		Int64(`when`, int64(t.when)).
		Dur(`late`, upto.Sub(t.when)).
		Log(`qtimer: dispatching`)

	x.unsetPending = t
	if t.action != nil {
		t.action(t, t.info, upto)
	}
	if x.unsetPending == t {
		x.unsetPending = nil
		x.unlink(t)
	}

	return true
}

// Ream detaches and returns one active timer, without calling it, for bulk
// teardown. It returns nil once the pile is empty. Until then, the pile must
// not be used for anything else.
//
// If release is true, and the pile was allocated by NewPile, the final call
// releases it, and it must not be used again. Otherwise, the pile is left
// empty and reusable.
func (x *Pile) Ream(release bool) *Timer {
	if x.released {
		panic(ErrPileReleased)
	}
	x.unsetPending = nil
	if x.timers != nil {
		if t, ok := x.timers.ReamKeep(); ok {
			x.reaming = true
			t.active = false
			return t
		}
	}
	x.reaming = false
	if release && x.allocated {
		x.released = true
		x.timers = nil
		x.logger.Debug().Log(`qtimer: pile released`)
	}
	return nil
}

func (x *Pile) link(t *Timer) {
	if x.timers == nil {
		x.timers = heap.New(compareTimers, timerIndex)
	}
	x.timers.Push(t)
	t.active = true
}

func (x *Pile) unlink(t *Timer) {
	x.timers.Delete(t)
	t.active = false
}

func (x *Pile) mustUsable() {
	if x.released {
		panic(ErrPileReleased)
	}
	if x.reaming {
		panic(ErrPileReaming)
	}
}

func compareTimers(a, b *Timer) int { return cmp.Compare(a.when, b.when) }

func timerIndex(t *Timer) *int { return &t.index }
