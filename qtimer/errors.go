// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package qtimer

import (
	"errors"
)

// Standard errors, used as panic values. Each indicates a programming error.
var (
	ErrTimerFreed   = errors.New("qtimer: timer has been freed")
	ErrNoPile       = errors.New("qtimer: timer has no pile")
	ErrPileReleased = errors.New("qtimer: pile has been released")
	ErrPileReaming  = errors.New("qtimer: pile is being reamed")
)
