// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package qtime provides the monotonic time base used by qtimer and qloop.
//
// A [Time] is a count of nanoseconds since a process-wide anchor, captured
// when the package is initialised. Values are totally ordered, may be offset
// by a [time.Duration], and subtract to a [time.Duration]. Negative values
// are never produced by [Now], and are used as the "unset" sentinel, see
// [Never].
package qtime

import (
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// Time is a point on the monotonic clock, in nanoseconds since the anchor.
type Time int64

// Never is the conventional invalid Time. Any negative Time is invalid.
const Never Time = -1

var (
	// anchor is the reference time for monotonicity, it never changes
	anchor = time.Now()

	// used for testing
	timeNow = time.Now
)

// Now returns the current monotonic Time.
func Now() Time {
	return Time(timeNow().Sub(anchor))
}

// Future returns Now() + d.
func Future(d time.Duration) Time {
	return Now().Add(d)
}

// FromRealtime converts a wall clock instant to a Time, relative to the
// current wall clock reading. The result is Never if the instant falls
// before the anchor.
func FromRealtime(t time.Time) Time {
	wall := timeNow()
	v := Now().Add(t.Round(0).Sub(wall.Round(0)))
	if v < 0 {
		return Never
	}
	return v
}

// FromTimeOfDay converts a gettimeofday(2) style value, see FromRealtime.
func FromTimeOfDay(tv unix.Timeval) Time {
	sec, nsec := tv.Unix()
	return FromRealtime(time.Unix(sec, nsec))
}

// Valid reports whether t is not negative.
func (t Time) Valid() bool { return t >= 0 }

// Add returns t offset by d.
func (t Time) Add(d time.Duration) Time { return t + Time(d) }

// Sub returns the duration t-u.
func (t Time) Sub(u Time) time.Duration { return time.Duration(t - u) }

// Before reports whether t is before u.
func (t Time) Before(u Time) bool { return t < u }

// After reports whether t is after u.
func (t Time) After(u Time) bool { return t > u }

// Duration returns the elapsed time since the anchor.
func (t Time) Duration() time.Duration { return time.Duration(t) }

func (t Time) String() string {
	if t < 0 {
		return `never`
	}
	return strconv.FormatInt(int64(t), 10) + `ns`
}
