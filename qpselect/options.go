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
)

// selectionOptions holds configuration options for Selection creation.
type selectionOptions struct {
	logger      *logiface.Logger[logiface.Event]
	waiter      Waiter
	limiter     *catrate.Limiter
	directLimit int
}

// Option configures a Selection instance.
type Option interface {
	applySelection(*selectionOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applySelectionFunc func(*selectionOptions) error
}

func (o *optionImpl) applySelection(opts *selectionOptions) error {
	return o.applySelectionFunc(opts)
}

// WithLogger configures a structured logger. Registration changes, waits and
// dispatch are logged at debug level, and wait failures at error level.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *selectionOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithWaiter replaces the wait primitive, which defaults to pselect(2).
func WithWaiter(waiter Waiter) Option {
	return &optionImpl{func(opts *selectionOptions) error {
		if waiter == nil {
			return errors.New(`qpselect: nil waiter`)
		}
		opts.waiter = waiter
		return nil
	}}
}

// WithLogRateLimits limits the rate of repetitive diagnostic logs (dropped
// events and interrupted waits), per category of message. The rates are as
// accepted by catrate.NewLimiter. By default these logs are not limited.
func WithLogRateLimits(rates map[time.Duration]int) Option {
	return &optionImpl{func(opts *selectionOptions) error {
		return newLimiter(rates, &opts.limiter)
	}}
}

// WithDirectLimit sets the fd below which registrations are always indexed
// directly, rather than via a btree. Above the limit, direct indexing is used
// only while the registered fds are densely packed.
func WithDirectLimit(limit int) Option {
	return &optionImpl{func(opts *selectionOptions) error {
		if limit < 0 {
			return errors.New(`qpselect: negative direct limit`)
		}
		opts.directLimit = limit
		return nil
	}}
}

func newLimiter(rates map[time.Duration]int, limiter **catrate.Limiter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf(`qpselect: invalid log rate limits: %v`, r)
		}
	}()
	*limiter = catrate.NewLimiter(rates)
	return nil
}

// resolveOptions applies Option instances to selectionOptions.
func resolveOptions(opts []Option) (*selectionOptions, error) {
	cfg := &selectionOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applySelection(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
