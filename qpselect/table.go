// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package qpselect

import (
	"github.com/google/btree"
)

// defaultDirectLimit is the fd below which fileTable always indexes directly.
const defaultDirectLimit = 64

// sparseDegree is the btree degree used by sparse tables.
const sparseDegree = 8

// fileTable maps fd to File. While the fds are small, or densely packed, it
// indexes a slice directly, otherwise it uses a btree ordered by fd. It
// reverts to direct indexing once empty.
type fileTable struct {
	direct      []*File
	sparse      *btree.BTreeG[tableEntry]
	count       int
	directLimit int
}

type tableEntry struct {
	file *File
	fd   int
}

func lessTableEntry(a, b tableEntry) bool { return a.fd < b.fd }

func (x *fileTable) get(fd int) *File {
	if x.sparse != nil {
		v, _ := x.sparse.Get(tableEntry{fd: fd})
		return v.file
	}
	if fd >= 0 && fd < len(x.direct) {
		return x.direct[fd]
	}
	return nil
}

func (x *fileTable) put(fd int, f *File) {
	switch {
	case x.sparse != nil:
		x.sparse.ReplaceOrInsert(tableEntry{file: f, fd: fd})
	case fd < len(x.direct):
		x.direct[fd] = f
	case fd < x.limit() || (x.count+1)*2 > fd:
		n := 2 * len(x.direct)
		if n <= fd {
			n = fd + 1
		}
		direct := make([]*File, n)
		copy(direct, x.direct)
		x.direct = direct
		x.direct[fd] = f
	default:
		x.sparse = btree.NewG[tableEntry](sparseDegree, lessTableEntry)
		for i, v := range x.direct {
			if v != nil {
				x.sparse.ReplaceOrInsert(tableEntry{file: v, fd: i})
			}
		}
		x.direct = nil
		x.sparse.ReplaceOrInsert(tableEntry{file: f, fd: fd})
	}
	x.count++
}

func (x *fileTable) del(fd int) {
	if x.sparse != nil {
		x.sparse.Delete(tableEntry{fd: fd})
	} else {
		x.direct[fd] = nil
	}
	x.count--
	if x.count == 0 && x.sparse != nil {
		x.sparse = nil
	}
}

// highest returns the largest registered fd, or -1.
func (x *fileTable) highest() int {
	if x.sparse != nil {
		if v, ok := x.sparse.Max(); ok {
			return v.fd
		}
		return -1
	}
	for fd := len(x.direct) - 1; fd >= 0; fd-- {
		if x.direct[fd] != nil {
			return fd
		}
	}
	return -1
}

func (x *fileTable) isDirect() bool { return x.sparse == nil }

func (x *fileTable) limit() int {
	if x.directLimit > 0 {
		return x.directLimit
	}
	return defaultDirectLimit
}
