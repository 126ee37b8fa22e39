// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package qtimer

import (
	"github.com/joeycumines/logiface"
)

// pileOptions holds configuration options for Pile creation.
type pileOptions struct {
	logger *logiface.Logger[logiface.Event]
}

// Option configures a Pile instance.
type Option interface {
	applyPile(*pileOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyPileFunc func(*pileOptions) error
}

func (o *optionImpl) applyPile(opts *pileOptions) error {
	return o.applyPileFunc(opts)
}

// WithLogger configures a structured logger. Dispatch is logged at trace
// level, and teardown at debug level.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *pileOptions) error {
		opts.logger = logger
		return nil
	}}
}

// resolveOptions applies Option instances to pileOptions.
func resolveOptions(opts []Option) (*pileOptions, error) {
	cfg := &pileOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyPile(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
