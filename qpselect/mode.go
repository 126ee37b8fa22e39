// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package qpselect

import (
	"fmt"
	"strings"
)

// Mode is one of the conditions a File may be watched for.
type Mode int

const (
	ModeError Mode = iota
	ModeRead
	ModeWrite

	// ModeCount is the number of modes.
	ModeCount
)

// ModeSet is a bitmask of modes, see Mode.Bit.
type ModeSet uint8

const (
	ErrorBit ModeSet = 1 << ModeError
	ReadBit  ModeSet = 1 << ModeRead
	WriteBit ModeSet = 1 << ModeWrite

	AllModes ModeSet = 1<<ModeCount - 1
)

// Valid reports whether m is one of ModeError, ModeRead or ModeWrite.
func (m Mode) Valid() bool { return m >= 0 && m < ModeCount }

// Bit returns the ModeSet containing only m.
func (m Mode) Bit() ModeSet {
	m.mustValid()
	return 1 << m
}

func (m Mode) String() string {
	switch m {
	case ModeError:
		return `error`
	case ModeRead:
		return `read`
	case ModeWrite:
		return `write`
	default:
		return fmt.Sprintf(`Mode(%d)`, int(m))
	}
}

func (m Mode) mustValid() {
	if !m.Valid() {
		panic(fmt.Errorf(`%w: %d`, ErrInvalidMode, int(m)))
	}
}

// Has reports whether m is in the set.
func (s ModeSet) Has(m Mode) bool {
	return m.Valid() && s&(1<<m) != 0
}

func (s ModeSet) String() string {
	if s&AllModes == 0 {
		return `none`
	}
	var b strings.Builder
	for m := Mode(0); m < ModeCount; m++ {
		if s.Has(m) {
			if b.Len() != 0 {
				b.WriteByte('|')
			}
			b.WriteString(m.String())
		}
	}
	return b.String()
}
