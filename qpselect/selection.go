// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package qpselect

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"golang.org/x/sys/unix"
)

// Selection manages a set of Files, waits for any of them to become ready,
// and dispatches the ready events one at a time.
//
// The zero value is ready to use, with the default options. A Selection must
// not be copied, and must only be used by a single goroutine.
type Selection struct {
	// Prevent copying
	_ [0]func()

	logger  *logiface.Logger[logiface.Event]
	limiter *catrate.Limiter
	waiter  Waiter

	files fileTable

	// fdLast is one more than the highest registered fd, valid unless
	// fdLastStale is set
	fdLast      int
	fdLastStale bool

	enabledCount [ModeCount]int
	enabled      [ModeCount]FDSet

	// snapshot as at the last wait
	triedFDLast int
	triedCount  [ModeCount]int
	results     [ModeCount]FDSet

	// the remaining results, and the dispatch cursor
	pendCount int
	pendMode  Mode
	pendFD    int

	sigmask unix.Sigset_t
	signum  unix.Signal
}

// NewSelection initialises storage as an empty Selection, allocating one if
// storage is nil.
func NewSelection(storage *Selection, opts ...Option) (*Selection, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	if storage == nil {
		storage = new(Selection)
	} else {
		*storage = Selection{}
	}
	storage.logger = cfg.logger
	storage.limiter = cfg.limiter
	storage.waiter = cfg.waiter
	storage.files.directLimit = cfg.directLimit
	return storage, nil
}

// AddFile registers f for fd, with the given info value. All modes start
// disabled, with no actions. It panics if fd is out of range or already
// registered, or if f is already registered.
func (x *Selection) AddFile(f *File, fd int, info any) {
	f.mustLive()
	if f.selection != nil {
		panic(fmt.Errorf(`%w: fd %d`, ErrFileRegistered, f.fd))
	}
	checkFD(fd)
	if x.files.get(fd) != nil {
		panic(fmt.Errorf(`%w: %d`, ErrFDAlreadyRegistered, fd))
	}

	x.files.put(fd, f)
	f.selection = x
	f.fd = fd
	f.info = info
	f.enabled = 0
	f.actions = [ModeCount]Action{}

	if !x.fdLastStale && fd >= x.fdLast {
		x.fdLast = fd + 1
	}

	x.logger.Debug().
		Int(`fd`, fd).
		Int(`files`, x.files.count).
		Log(`qpselect: added file`)
}

// RemoveFile disables all modes of f, and removes it. It does nothing if f is
// not registered with the receiver.
func (x *Selection) RemoveFile(f *File) {
	if f.selection != x {
		return
	}
	f.DisableModes(AllModes)

	x.files.del(f.fd)
	if f.fd+1 == x.fdLast {
		x.fdLastStale = true
	}
	f.selection = nil

	x.logger.Debug().
		Int(`fd`, f.fd).
		Int(`files`, x.files.count).
		Log(`qpselect: removed file`)
}

// File returns the File registered for fd, or nil.
func (x *Selection) File(fd int) *File {
	return x.files.get(fd)
}

// Len returns the number of registered files.
func (x *Selection) Len() int { return x.files.count }

// EnabledCount returns the number of files with mode enabled.
func (x *Selection) EnabledCount(mode Mode) int {
	mode.mustValid()
	return x.enabledCount[mode]
}

// IsEnabled reports whether fd is in the enabled set for mode.
func (x *Selection) IsEnabled(mode Mode, fd int) bool {
	mode.mustValid()
	return x.enabled[mode].IsSet(fd)
}

// Pending returns the number of events from the last wait that have not yet
// been dispatched (or discarded).
func (x *Selection) Pending() int { return x.pendCount }

// SetSignal configures the signal to unblock for the duration of each wait.
// The mask installed during the wait is sigmask (typically the current mask
// of the thread) with signum removed. A signum of 0 disables.
func (x *Selection) SetSignal(signum unix.Signal, sigmask unix.Sigset_t) {
	x.signum = signum
	if signum != 0 {
		sigdelset(&sigmask, signum)
		x.sigmask = sigmask
	} else {
		x.sigmask = unix.Sigset_t{}
	}
}

// Signal returns the signal configured by SetSignal, or 0.
func (x *Selection) Signal() unix.Signal { return x.signum }

// Wait blocks until at least one enabled fd is ready, the timeout elapses,
// or a signal is received. A negative timeout blocks indefinitely, and a
// zero timeout polls. If no modes are enabled, Wait just sleeps.
//
// Any events not yet dispatched, from a previous wait, are discarded.
//
// The result is the number of events that are now pending, see
// DispatchNext, which is zero on timeout. An error matching ErrInterrupted
// indicates a signal was received, and is not a failure. Any other error
// will be a *WaitError.
func (x *Selection) Wait(timeout time.Duration) (int, error) {
	x.pendCount = 0
	if x.fdLastStale {
		x.fdLast = x.files.highest() + 1
		x.fdLastStale = false
	}

	var sets [ModeCount]*unix.FdSet
	nfd := 0
	for m := Mode(0); m < ModeCount; m++ {
		x.triedCount[m] = x.enabledCount[m]
		x.results[m] = x.enabled[m]
		if x.triedCount[m] != 0 {
			sets[m] = x.results[m].Native()
			nfd = x.fdLast
		}
	}
	x.triedFDLast = nfd

	var ts *unix.Timespec
	if timeout >= 0 {
		v := unix.NsecToTimespec(int64(timeout))
		ts = &v
	}
	var sigmask *unix.Sigset_t
	if x.signum != 0 {
		sigmask = &x.sigmask
	}

	n, err := x.getWaiter().Wait(nfd, sets[ModeRead], sets[ModeWrite], sets[ModeError], ts, sigmask)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			if x.allowLog(`interrupted`) {
				x.logger.Debug().
					Int(`signal`, int(x.signum)).
					Log(`qpselect: wait interrupted`)
			}
			return 0, fmt.Errorf(`%w: %w`, ErrInterrupted, err)
		}
		err = &WaitError{Err: err, Op: waitOp, NFD: nfd}
		x.logger.Err().
			Err(err).
			Log(`qpselect: wait failed`)
		return 0, err
	}

	x.pendCount = n
	x.pendMode = ModeError
	x.pendFD = 0

	if n != 0 {
		x.logger.Trace().
			Int(`nfd`, nfd).
			Int(`ready`, n).
			Log(`qpselect: wait returned`)
	}

	return n, nil
}

// DispatchNext calls the action for the next pending event, returning true
// if it did so, or false if there are no more pending events.
//
// Events are dispatched in mode order (error, read, write) then fd order.
// Each event is dispatched at most once. Events for files that have since
// been removed are skipped.
func (x *Selection) DispatchNext() bool {
	for x.pendCount > 0 {
		mode, fd, ok := x.nextPending()
		if !ok {
			x.logger.Crit().
				Int(`pending`, x.pendCount).
				Log(`qpselect: pending count does not match results`)
			x.pendCount = 0
			return false
		}

		x.results[mode].Clear(fd)
		x.pendCount--
		x.pendMode = mode
		x.pendFD = fd + 1

		f := x.files.get(fd)
		if f == nil || f.actions[mode] == nil {
			if x.allowLog(`dropped`) {
				x.logger.Debug().
					Int(`fd`, fd).
					Str(`mode`, mode.String()).
					Log(`qpselect: dropped event for removed file`)
			}
			continue
		}

		f.actions[mode](f, f.info)
		return true
	}
	return false
}

// nextPending finds the next result bit at or after the cursor.
func (x *Selection) nextPending() (Mode, int, bool) {
	fd := x.pendFD
	for m := x.pendMode; m < ModeCount; m++ {
		if x.triedCount[m] != 0 {
			if fd = x.results[m].Next(fd, x.triedFDLast); fd >= 0 {
				return m, fd, true
			}
		}
		fd = 0
	}
	return 0, 0, false
}

func (x *Selection) enable(mode Mode, fd int) {
	x.enabled[mode].Set(fd)
	x.enabledCount[mode]++
}

func (x *Selection) disable(mode Mode, fd int) {
	x.enabled[mode].Clear(fd)
	x.enabledCount[mode]--
	if x.pendCount != 0 && x.results[mode].IsSet(fd) {
		x.results[mode].Clear(fd)
		x.pendCount--
	}
}

func (x *Selection) getWaiter() Waiter {
	if x.waiter != nil {
		return x.waiter
	}
	return DefaultWaiter
}

func (x *Selection) allowLog(category string) bool {
	_, ok := x.limiter.Allow(category)
	return ok
}
