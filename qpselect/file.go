// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package qpselect

// Action is called by Selection.DispatchNext, when the wait reported the
// relevant mode for the file. It receives the File and its info value.
//
// During an action, files may be added, removed, enabled or disabled, and
// actions changed. There are no restrictions.
type Action func(f *File, info any)

// File binds a file descriptor to an action per Mode, and an arbitrary info
// value, for use with a Selection.
//
// A File may be added to and removed from Selections any number of times.
// The zero value is ready to use.
type File struct {
	// Prevent copying
	_ [0]func()

	selection *Selection
	info      any
	actions   [ModeCount]Action
	fd        int
	enabled   ModeSet
	freed     bool
}

// NewFile initialises storage as an unregistered File, allocating one if
// storage is nil.
func NewFile(storage *File) *File {
	if storage == nil {
		return new(File)
	}
	*storage = File{}
	return storage
}

// Free removes the file from its Selection, if any. The File must not be
// used afterwards.
func (x *File) Free() {
	x.mustLive()
	x.Remove()
	*x = File{freed: true}
}

// Selection returns the Selection the file is registered with, or nil.
func (x *File) Selection() *Selection { return x.selection }

// FD returns the registered file descriptor, or -1 if not registered.
func (x *File) FD() int {
	if x.selection == nil {
		return -1
	}
	return x.fd
}

// Info returns the info value.
func (x *File) Info() any { return x.info }

// SetInfo replaces the info value passed to actions.
func (x *File) SetInfo(info any) {
	x.mustLive()
	x.info = info
}

// Enabled returns the enabled modes.
func (x *File) Enabled() ModeSet { return x.enabled }

// Action returns the action for mode, which may be nil.
func (x *File) Action(mode Mode) Action {
	mode.mustValid()
	return x.actions[mode]
}

// SetAction replaces the action for mode, without changing whether the mode
// is enabled. Setting a nil action disables the mode.
func (x *File) SetAction(mode Mode, action Action) {
	x.mustLive()
	mode.mustValid()
	if action == nil && x.enabled.Has(mode) {
		x.DisableModes(mode.Bit())
	}
	x.actions[mode] = action
}

// EnableMode sets the action for mode, and enables it. The File must be
// registered, and the action must not be nil.
func (x *File) EnableMode(mode Mode, action Action) {
	x.mustLive()
	mode.mustValid()
	if action == nil {
		panic(ErrNilAction)
	}
	if x.selection == nil {
		panic(ErrFileNotRegistered)
	}
	x.actions[mode] = action
	if !x.enabled.Has(mode) {
		x.enabled |= mode.Bit()
		x.selection.enable(mode, x.fd)
	}
}

// DisableModes disables the given modes, leaving the actions in place. Modes
// that are not enabled are ignored. Any event for a disabled mode, that has
// not yet been dispatched, is discarded.
func (x *File) DisableModes(modes ModeSet) {
	x.mustLive()
	modes &= x.enabled
	if modes == 0 {
		return
	}
	x.enabled &^= modes
	for m := Mode(0); m < ModeCount; m++ {
		if modes.Has(m) {
			x.selection.disable(m, x.fd)
		}
	}
}

// Remove disables all modes, and removes the file from its Selection. It does
// nothing if the file is not registered.
func (x *File) Remove() {
	if x.selection != nil {
		x.selection.RemoveFile(x)
	}
}

func (x *File) mustLive() {
	if x.freed {
		panic(ErrFileFreed)
	}
}
