// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package qpselect

import (
	"golang.org/x/sys/unix"
)

// Waiter is the blocking readiness wait primitive, with the same contract as
// pselect(2) (see [unix.Pselect]).
//
// The sets are mutated in place, to contain only the ready fds, and any of
// them may be nil. A nil timeout blocks indefinitely. If sigmask is not nil,
// it must be installed as the signal mask for the duration of the wait only.
// The result is the total number of bits set across the three sets. An
// error matching [unix.EINTR] indicates the wait was interrupted by a signal.
type Waiter interface {
	Wait(nfd int, r, w, e *unix.FdSet, timeout *unix.Timespec, sigmask *unix.Sigset_t) (int, error)
}

// WaiterFunc implements Waiter.
type WaiterFunc func(nfd int, r, w, e *unix.FdSet, timeout *unix.Timespec, sigmask *unix.Sigset_t) (int, error)

// Wait calls the receiver.
func (f WaiterFunc) Wait(nfd int, r, w, e *unix.FdSet, timeout *unix.Timespec, sigmask *unix.Sigset_t) (int, error) {
	return f(nfd, r, w, e, timeout, sigmask)
}
