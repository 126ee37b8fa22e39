// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package qloop

import (
	"errors"
	"time"

	"github.com/joeycumines/logiface"
	"golang.org/x/sys/unix"
)

// loopOptions holds configuration options for Loop creation.
type loopOptions struct {
	logger      *logiface.Logger[logiface.Event]
	onInterrupt func(signum unix.Signal)
	maxWait     time.Duration
}

// Option configures a Loop instance.
type Option interface {
	applyLoop(*loopOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyLoopFunc func(*loopOptions) error
}

func (o *optionImpl) applyLoop(opts *loopOptions) error {
	return o.applyLoopFunc(opts)
}

// WithLogger configures a structured logger, for the lifecycle of the loop.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *loopOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithMaxWait bounds the duration of each wait. Zero (the default) means
// waits are bounded only by the earliest timer.
func WithMaxWait(d time.Duration) Option {
	return &optionImpl{func(opts *loopOptions) error {
		if d < 0 {
			return errors.New(`qloop: negative max wait`)
		}
		opts.maxWait = d
		return nil
	}}
}

// WithOnInterrupt registers a function that is called on the loop goroutine
// each time a wait is interrupted by a signal. It receives the signal
// configured on the Selection, see qpselect.Selection.SetSignal.
func WithOnInterrupt(fn func(signum unix.Signal)) Option {
	return &optionImpl{func(opts *loopOptions) error {
		opts.onInterrupt = fn
		return nil
	}}
}

// resolveOptions applies Option instances to loopOptions.
func resolveOptions(opts []Option) (*loopOptions, error) {
	cfg := &loopOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyLoop(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
