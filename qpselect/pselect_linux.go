//go:build linux

// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package qpselect

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

const waitOp = `pselect`

// DefaultWaiter calls pselect(2).
var DefaultWaiter Waiter = WaiterFunc(unix.Pselect)

// sigdelset removes signum from set, like sigdelset(3).
func sigdelset(set *unix.Sigset_t, signum unix.Signal) {
	n := uint(unsafe.Sizeof(set.Val[0])) * 8
	bit := uint(signum) - 1
	if signum < 1 || bit >= n*uint(len(set.Val)) {
		return
	}
	set.Val[bit/n] &^= 1 << (bit % n)
}
