// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package qpselect multiplexes file descriptors using pselect(2).
//
// A [Selection] owns a set of [File] registrations. Each File binds one file
// descriptor to up to three independent actions, one per [Mode] (error, read
// and write). Modes are enabled and disabled individually, and the
// Selection maintains the per-mode enabled sets, as [FDSet] values, that are
// passed to the wait primitive.
//
// # Wait and Dispatch
//
// [Selection.Wait] performs a single blocking wait, and captures the result
// sets. [Selection.DispatchNext] then delivers exactly one pending event per
// call, in the order error < read < write, ascending by file descriptor
// within each mode. The dispatch cursor only ever advances through the
// captured results, so actions may register, remove, enable or disable any
// File, including their own, without disturbing delivery of the remaining
// events. Events for a File that was removed (or a mode that was disabled)
// after the wait are dropped.
//
// # Signals
//
// [Selection.SetSignal] records a signal mask, installed atomically for the
// duration of each wait, so that a signal which is otherwise blocked may
// interrupt the wait without racing. An interrupted wait returns an error
// matching [ErrInterrupted], which is not a failure: the caller is expected
// to wait again.
//
// # Thread Safety
//
// None. A Selection, and the Files registered with it, must only be used
// from a single goroutine. Use [runtime.LockOSThread] if signal masks are
// relevant.
//
// # Platform Support
//
// Linux uses pselect(2) via [unix.Pselect]. Darwin and the BSDs fall back to
// select(2), which cannot install a signal mask. Alternative primitives may
// be supplied using [WithWaiter].
package qpselect
