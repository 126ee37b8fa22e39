// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package qloop implements the main loop of a single-threaded daemon, on top
// of a [qpselect.Selection] and a [qtimer.Pile].
//
// Each iteration waits for I/O readiness, bounded by the earliest timer
// deadline, then dispatches the ready I/O events and the expired timers, one
// of each at a time, until both are drained.
package qloop

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/eapache/queue"
	"github.com/joeycumines/go-qdispatch/qpselect"
	"github.com/joeycumines/go-qdispatch/qtime"
	"github.com/joeycumines/go-qdispatch/qtimer"
	"github.com/joeycumines/logiface"
	"golang.org/x/sys/unix"
)

var (
	// ErrLoopRunning is returned by Run if the loop is already running.
	ErrLoopRunning = errors.New("qloop: loop is already running")

	// ErrLoopClosed is returned by Run after Close.
	ErrLoopClosed = errors.New("qloop: loop is closed")
)

// Loop drives a Selection and a Pile from a single goroutine.
type Loop struct {
	// Prevent copying
	_ [0]func()

	logger      *logiface.Logger[logiface.Event]
	selection   *qpselect.Selection
	pile        *qtimer.Pile
	onInterrupt func(signum unix.Signal)

	wake qpselect.File

	maxWait time.Duration

	wakeFd      int
	wakeWriteFd int
	wakeBuf     [8]byte

	running atomic.Bool
	stopped atomic.Bool

	// guards tasks and closed
	mu     sync.Mutex
	tasks  *queue.Queue
	closed bool
}

// New creates a Loop for the given Selection and Pile, registering a wake-up
// descriptor with the Selection. The Selection and Pile remain usable
// directly, but only from the goroutine calling Run, while it is running.
func New(selection *qpselect.Selection, pile *qtimer.Pile, opts ...Option) (*Loop, error) {
	if selection == nil || pile == nil {
		return nil, errors.New(`qloop: nil selection or pile`)
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	wakeFd, wakeWriteFd, err := createWakeFd()
	if err != nil {
		return nil, fmt.Errorf(`qloop: wake fd: %w`, err)
	}

	loop := &Loop{
		logger:      cfg.logger,
		selection:   selection,
		pile:        pile,
		onInterrupt: cfg.onInterrupt,
		maxWait:     cfg.maxWait,
		wakeFd:      wakeFd,
		wakeWriteFd: wakeWriteFd,
		tasks:       queue.New(),
	}

	if wakeFd >= qpselect.FDSetSize {
		loop.closeFDs()
		return nil, fmt.Errorf(`%w: wake fd %d`, qpselect.ErrFDOutOfRange, wakeFd)
	}
	if selection.File(wakeFd) != nil {
		loop.closeFDs()
		return nil, fmt.Errorf(`%w: wake fd %d`, qpselect.ErrFDAlreadyRegistered, wakeFd)
	}
	selection.AddFile(qpselect.NewFile(&loop.wake), wakeFd, nil)
	loop.wake.EnableMode(qpselect.ModeRead, func(*qpselect.File, any) {
		loop.drainWakeUpPipe()
		loop.runTasks()
	})

	return loop, nil
}

// Run runs the loop on the calling goroutine, until Stop is called, ctx is
// done, or a wait fails. The result is nil if stopped, ctx.Err() if ctx is
// done, or the wait error (a *qpselect.WaitError, in practice).
//
// The goroutine is locked to its OS thread, for the duration, so that any
// signal mask configured on the Selection applies consistently.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	closed, pending := l.closed, l.tasks.Length() != 0
	l.mu.Unlock()
	if closed {
		return ErrLoopClosed
	}
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	if pending {
		// tasks left over from a previous run
		_ = l.wakeup()
	}
	defer l.running.Store(false)
	defer l.stopped.Store(false)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// wakes the loop on cancellation
	ctxDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = l.wakeup()
		case <-ctxDone:
		}
	}()
	defer close(ctxDone)

	l.logger.Debug().
		Int(`files`, l.selection.Len()).
		Int(`timers`, l.pile.Len()).
		Log(`qloop: running`)

	err := l.run(ctx)

	l.logger.Debug().
		Err(err).
		Log(`qloop: stopped`)

	return err
}

func (l *Loop) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.stopped.Load() {
			return nil
		}

		_, err := l.selection.Wait(l.timeout())
		if err != nil {
			if errors.Is(err, qpselect.ErrInterrupted) {
				if l.onInterrupt != nil {
					l.onInterrupt(l.selection.Signal())
				}
				continue
			}
			return err
		}

		l.dispatch(qtime.Now())
	}
}

// dispatch alternates between I/O events and expired timers, until both are
// drained, or the loop is stopped.
func (l *Loop) dispatch(now qtime.Time) {
	for !l.stopped.Load() {
		io := l.selection.DispatchNext()
		if l.stopped.Load() {
			return
		}
		timer := l.pile.DispatchNext(now)
		if !io && !timer {
			return
		}
	}
}

// timeout returns the wait timeout, negative meaning indefinite.
func (l *Loop) timeout() time.Duration {
	d := time.Duration(-1)
	if next, ok := l.pile.Next(); ok {
		d = max(next.Sub(qtime.Now()), 0)
	}
	if l.maxWait > 0 && (d < 0 || d > l.maxWait) {
		d = l.maxWait
	}
	return d
}

// Stop causes Run to return nil, after the current action (if any), or
// immediately if it is called before Run. It is safe to call from any
// goroutine.
func (l *Loop) Stop() {
	l.stopped.Store(true)
	_ = l.wakeup()
}

// Submit queues fn to be called on the loop goroutine, in submission order.
// It is safe to call from any goroutine. Tasks submitted while the loop is
// not running are called once it runs.
func (l *Loop) Submit(fn func()) error {
	if fn == nil {
		return errors.New(`qloop: nil task`)
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.tasks.Add(fn)
	err := l.submitWakeup()
	l.mu.Unlock()
	return err
}

// runTasks calls the tasks queued at the time it was called.
func (l *Loop) runTasks() {
	l.mu.Lock()
	n := l.tasks.Length()
	l.mu.Unlock()
	for ; n > 0 && !l.stopped.Load(); n-- {
		l.mu.Lock()
		fn := l.tasks.Remove().(func())
		l.mu.Unlock()
		fn()
	}
}

// Close removes the wake-up descriptor from the Selection, and closes it.
// Queued tasks are discarded. It must not be called while the loop is
// running.
func (l *Loop) Close() error {
	if l.running.Load() {
		return ErrLoopRunning
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLoopClosed
	}
	l.closed = true
	for l.tasks.Length() != 0 {
		l.tasks.Remove()
	}
	l.wake.Remove()
	l.closeFDs()
	return nil
}

func (l *Loop) drainWakeUpPipe() {
	for {
		_, err := unix.Read(l.wakeFd, l.wakeBuf[:])
		if err != nil {
			break
		}
	}
}

// wakeup writes to the wake-up descriptor, unless the loop is closed.
func (l *Loop) wakeup() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLoopClosed
	}
	return l.submitWakeup()
}

// submitWakeup writes to the wake-up descriptor. The caller must hold mu.
func (l *Loop) submitWakeup() error {
	var one uint64 = 1
	buf := (*[8]byte)(unsafe.Pointer(&one))[:]
	_, err := unix.Write(l.wakeWriteFd, buf)
	return err
}

func (l *Loop) closeFDs() {
	_ = unix.Close(l.wakeFd)
	if l.wakeWriteFd != l.wakeFd {
		_ = unix.Close(l.wakeWriteFd)
	}
}
