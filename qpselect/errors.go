// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package qpselect

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Standard errors.
//
// Except for ErrInterrupted, these indicate a programming error, and are
// used as panic values.
var (
	ErrFDOutOfRange        = errors.New("qpselect: fd out of range")
	ErrFDAlreadyRegistered = errors.New("qpselect: fd already registered")
	ErrFileRegistered      = errors.New("qpselect: file already registered")
	ErrFileNotRegistered   = errors.New("qpselect: file not registered")
	ErrFileFreed           = errors.New("qpselect: file has been freed")
	ErrNilAction           = errors.New("qpselect: nil action")
	ErrInvalidMode         = errors.New("qpselect: invalid mode")

	// ErrInterrupted is returned by Selection.Wait if a signal was delivered
	// during the wait. It is not a failure.
	ErrInterrupted = errors.New("qpselect: wait interrupted")

	// ErrWaitUnsupported is returned by the default waiter on platforms
	// without a supported wait primitive.
	ErrWaitUnsupported = errors.New("qpselect: wait primitive unsupported")
)

// WaitError is returned by Selection.Wait for any failure of the wait
// primitive other than interruption. The Selection remains usable, but the
// failure usually indicates a bug (e.g. a closed file descriptor that is
// still enabled), and callers typically treat it as fatal.
type WaitError struct {
	// Err is the error from the Waiter, usually a unix.Errno.
	Err error
	// Op names the wait primitive.
	Op string
	// NFD is the scan bound that was passed to the wait primitive.
	NFD int
}

// Error implements the error interface.
func (e *WaitError) Error() string {
	return fmt.Sprintf("qpselect: %s (nfd=%d): %v", e.Op, e.NFD, e.Err)
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *WaitError) Unwrap() error {
	return e.Err
}

// Errno returns the OS error number, or 0 if the cause was not a
// [unix.Errno].
func (e *WaitError) Errno() unix.Errno {
	var errno unix.Errno
	if errors.As(e.Err, &errno) {
		return errno
	}
	return 0
}
