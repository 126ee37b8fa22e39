//go:build unix && !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package qpselect

import (
	"golang.org/x/sys/unix"
)

const waitOp = `unsupported`

// DefaultWaiter always fails on this platform, see WithWaiter.
var DefaultWaiter Waiter = WaiterFunc(func(int, *unix.FdSet, *unix.FdSet, *unix.FdSet, *unix.Timespec, *unix.Sigset_t) (int, error) {
	return 0, ErrWaitUnsupported
})

// sigdelset does nothing, signal masks are not supported by DefaultWaiter on
// this platform.
func sigdelset(*unix.Sigset_t, unix.Signal) {}
