// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package qtimer

import (
	"time"

	"github.com/joeycumines/go-qdispatch/qtime"
)

// Action is called by Pile.DispatchNext, once the timer has expired. It
// receives the Timer, its info value, and the time the pile was dispatched
// up to.
type Action func(t *Timer, info any, upto qtime.Time)

// Timer is a single scheduled action, with a deadline. Timers are inactive
// until set, and are reusable indefinitely.
//
// The zero value is an inactive timer with no pile or action.
type Timer struct {
	// Prevent copying
	_ [0]func()

	pile   *Pile
	action Action
	info   any
	when   qtime.Time
	index  int
	active bool
	freed  bool
}

// NewTimer initialises storage as an inactive Timer, allocating one if
// storage is nil.
func NewTimer(storage *Timer, pile *Pile, action Action, info any) *Timer {
	if storage == nil {
		storage = new(Timer)
	}
	*storage = Timer{
		pile:   pile,
		action: action,
		info:   info,
		when:   qtime.Never,
		index:  -1,
	}
	return storage
}

// Free unsets the timer. It must not be used afterwards.
func (x *Timer) Free() {
	x.mustLive()
	x.Unset()
	*x = Timer{freed: true, index: -1}
}

// Set arms the timer to fire at when, replacing any existing deadline. An
// invalid (negative) time unsets the timer instead.
func (x *Timer) Set(when qtime.Time) {
	x.mustLive()
	if !when.Valid() {
		x.Unset()
		return
	}
	p := x.pile
	if p == nil {
		panic(ErrNoPile)
	}
	p.mustUsable()
	x.when = when
	if x.active {
		p.timers.Update(x)
	} else {
		p.link(x)
	}
	if p.unsetPending == x {
		p.unsetPending = nil
	}
}

// SetAfter arms the timer to fire d from now.
func (x *Timer) SetAfter(d time.Duration) {
	x.Set(qtime.Future(d))
}

// Unset disarms the timer, if it is active.
func (x *Timer) Unset() {
	x.mustLive()
	if !x.active {
		return
	}
	p := x.pile
	p.mustUsable()
	p.unlink(x)
	if p.unsetPending == x {
		p.unsetPending = nil
	}
}

// SetPile changes the pile the timer is linked into when set. An active
// timer is unset first, unless the pile is unchanged.
func (x *Timer) SetPile(pile *Pile) {
	x.mustLive()
	if x.active && pile != x.pile {
		x.Unset()
	}
	x.pile = pile
}

// SetAction replaces the action, effective from the next dispatch.
func (x *Timer) SetAction(action Action) {
	x.mustLive()
	x.action = action
}

// SetInfo replaces the info value passed to the action.
func (x *Timer) SetInfo(info any) {
	x.mustLive()
	x.info = info
}

// Active reports whether the timer is set.
func (x *Timer) Active() bool { return x.active }

// When returns the deadline, or qtime.Never if the timer is not active.
func (x *Timer) When() qtime.Time {
	if !x.active {
		return qtime.Never
	}
	return x.when
}

// Pile returns the pile the timer uses.
func (x *Timer) Pile() *Pile { return x.pile }

// Action returns the action, which may be nil.
func (x *Timer) Action() Action { return x.action }

// Info returns the info value.
func (x *Timer) Info() any { return x.info }

func (x *Timer) mustLive() {
	if x.freed {
		panic(ErrTimerFreed)
	}
}
