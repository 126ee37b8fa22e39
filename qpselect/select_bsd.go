//go:build darwin || dragonfly || freebsd || netbsd || openbsd

// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package qpselect

import (
	"fmt"

	"golang.org/x/sys/unix"
)

const waitOp = `select`

// DefaultWaiter calls select(2), which cannot install a signal mask, so it
// fails if one is requested.
var DefaultWaiter Waiter = WaiterFunc(selectWait)

func selectWait(nfd int, r, w, e *unix.FdSet, timeout *unix.Timespec, sigmask *unix.Sigset_t) (int, error) {
	if sigmask != nil {
		return 0, fmt.Errorf(`%w: signal mask requires pselect`, ErrWaitUnsupported)
	}
	var tv *unix.Timeval
	if timeout != nil {
		v := unix.NsecToTimeval(timeout.Nano())
		tv = &v
	}
	return unix.Select(nfd, r, w, e, tv)
}

// sigdelset does nothing, signal masks are not supported by DefaultWaiter on
// this platform.
func sigdelset(*unix.Sigset_t, unix.Signal) {}
