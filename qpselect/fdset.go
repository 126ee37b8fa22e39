// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package qpselect

import (
	"fmt"
	"math/bits"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	fdSetBytes = int(unsafe.Sizeof(unix.FdSet{}))

	// FDSetSize is the capacity of an FDSet, i.e. FD_SETSIZE.
	FDSetSize = fdSetBytes * 8

	fdWordBits = 32
	fdSetWords = fdSetBytes / 4
)

// the word overlay must cover the native set exactly
var _ [fdSetBytes % 4]struct{} = [0]struct{}{}

// The native set is an array of ints, of platform dependent size and
// endianness. Runs of 32 consecutive fds, aligned on 32, always share a
// single 32-bit word of the overlay, and runs of 8 share a byte, with the
// bits in fd order. These tables map from the fd order to the overlay.
var (
	// fdWordIndex[w] is the overlay word holding fds [w*32, w*32+32)
	fdWordIndex [fdSetWords]int
	// fdByteIndex[g] is the overlay byte holding fds [g*8, g*8+8)
	fdByteIndex [fdSetBytes]int
)

func init() {
	if err := probeFDSetMap(); err != nil {
		panic(err)
	}
}

// probeFDSetMap fills fdWordIndex and fdByteIndex by setting each bit via
// the native accessors, and observing where it lands.
func probeFDSetMap() error {
	var s FDSet
	b := s.Bytes()
	for fd := 0; fd < FDSetSize; fd++ {
		s.fds.Set(fd)
		found := -1
		for i, v := range b {
			if v == 0 {
				continue
			}
			if found != -1 || v != 1<<(fd%8) {
				return fmt.Errorf(`qpselect: unsupported fd_set layout at fd %d`, fd)
			}
			found = i
		}
		if found == -1 {
			return fmt.Errorf(`qpselect: unsupported fd_set layout at fd %d`, fd)
		}
		g := fd / 8
		if fd%8 == 0 {
			fdByteIndex[g] = found
		} else if fdByteIndex[g] != found {
			return fmt.Errorf(`qpselect: unsupported fd_set layout at fd %d`, fd)
		}
		w := fd / fdWordBits
		if fd%fdWordBits == 0 {
			fdWordIndex[w] = found / 4
		} else if fdWordIndex[w] != found/4 {
			return fmt.Errorf(`qpselect: unsupported fd_set layout at fd %d`, fd)
		}
		s.fds.Clear(fd)
	}
	return nil
}

// FDSet is a fixed capacity bit vector of file descriptors, overlaying
// 32-bit word and byte views on the native [unix.FdSet]. The word view allows
// scans to skip 32 clear bits at a time.
//
// The zero value is an empty set.
type FDSet struct {
	fds unix.FdSet
}

// Native returns the set as expected by the wait primitive.
func (x *FDSet) Native() *unix.FdSet { return &x.fds }

// Words returns the 32-bit word overlay. The order of fds within the words
// is platform dependent.
func (x *FDSet) Words() []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&x.fds)), fdSetWords)
}

// Bytes returns the byte overlay. The order of fds within the bytes is
// platform dependent.
func (x *FDSet) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&x.fds)), fdSetBytes)
}

// Set adds fd to the set. It panics if fd is out of range.
func (x *FDSet) Set(fd int) {
	checkFD(fd)
	x.fds.Set(fd)
}

// Clear removes fd from the set. It panics if fd is out of range.
func (x *FDSet) Clear(fd int) {
	checkFD(fd)
	x.fds.Clear(fd)
}

// IsSet reports whether fd is in the set. It panics if fd is out of range.
func (x *FDSet) IsSet(fd int) bool {
	checkFD(fd)
	return x.fds.IsSet(fd)
}

// Zero clears the set.
func (x *FDSet) Zero() { x.fds = unix.FdSet{} }

// Empty reports whether no fds are set.
func (x *FDSet) Empty() bool {
	for _, w := range x.Words() {
		if w != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of fds in the set.
func (x *FDSet) Count() (n int) {
	for _, w := range x.Words() {
		n += bits.OnesCount32(w)
	}
	return
}

// Next returns the lowest fd in the set that is >= fd and < limit, or -1.
// A limit > FDSetSize is treated as FDSetSize.
func (x *FDSet) Next(fd, limit int) int {
	if fd < 0 {
		fd = 0
	}
	if limit > FDSetSize {
		limit = FDSetSize
	}
	if fd >= limit {
		return -1
	}
	words, b := x.Words(), x.Bytes()
	for w := fd / fdWordBits; w*fdWordBits < limit; w++ {
		if words[fdWordIndex[w]] == 0 {
			continue
		}
		for g := w * 4; g < w*4+4; g++ {
			v := b[fdByteIndex[g]]
			if base := g * 8; fd > base {
				if fd-base >= 8 {
					continue
				}
				v &^= 1<<(fd-base) - 1
			}
			if v == 0 {
				continue
			}
			if found := g*8 + bits.TrailingZeros8(v); found < limit {
				return found
			}
			return -1
		}
	}
	return -1
}

func checkFD(fd int) {
	if fd < 0 || fd >= FDSetSize {
		panic(fmt.Errorf(`%w: %d (max %d)`, ErrFDOutOfRange, fd, FDSetSize-1))
	}
}
