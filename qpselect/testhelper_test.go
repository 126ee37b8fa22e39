package qpselect

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// fakeWaiter behaves like pselect, against a configurable set of ready fds.
type fakeWaiter struct {
	err   error
	ready [ModeCount]map[int]bool
	calls []fakeWaitCall
}

type fakeWaitCall struct {
	timeout *unix.Timespec
	sigmask *unix.Sigset_t
	sets    [ModeCount]bool
	nfd     int
}

func newFakeWaiter() *fakeWaiter {
	var w fakeWaiter
	for m := range w.ready {
		w.ready[m] = make(map[int]bool)
	}
	return &w
}

func (w *fakeWaiter) setReady(mode Mode, fds ...int) {
	for _, fd := range fds {
		w.ready[mode][fd] = true
	}
}

func (w *fakeWaiter) reset() {
	for m := range w.ready {
		clear(w.ready[m])
	}
}

func (w *fakeWaiter) Wait(nfd int, r, wr, e *unix.FdSet, timeout *unix.Timespec, sigmask *unix.Sigset_t) (int, error) {
	call := fakeWaitCall{nfd: nfd, timeout: timeout, sigmask: sigmask}
	sets := [ModeCount]*unix.FdSet{ModeError: e, ModeRead: r, ModeWrite: wr}
	for m, set := range sets {
		call.sets[m] = set != nil
	}
	w.calls = append(w.calls, call)
	if w.err != nil {
		return 0, w.err
	}
	var n int
	for m, set := range sets {
		if set == nil {
			continue
		}
		for fd := 0; fd < FDSetSize; fd++ {
			if !set.IsSet(fd) {
				continue
			}
			if fd < nfd && w.ready[m][fd] {
				n++
			} else {
				set.Clear(fd)
			}
		}
	}
	return n, nil
}

func (w *fakeWaiter) lastCall(t *testing.T) fakeWaitCall {
	t.Helper()
	require.NotEmpty(t, w.calls)
	return w.calls[len(w.calls)-1]
}

func newTestSelection(t *testing.T, opts ...Option) (*Selection, *fakeWaiter) {
	t.Helper()
	w := newFakeWaiter()
	s, err := NewSelection(nil, append([]Option{WithWaiter(w)}, opts...)...)
	require.NoError(t, err)
	return s, w
}

// newTestLogger returns a JSON logger writing to the returned buffer.
func newTestLogger(level logiface.Level) (*logiface.Logger[logiface.Event], *bytes.Buffer) {
	var buf bytes.Buffer
	logger := stumpy.L.New(
		stumpy.L.WithStumpy(
			stumpy.WithWriter(&buf),
			stumpy.WithTimeField(``),
		),
		stumpy.L.WithLevel(level),
	)
	return logger.Logger(), &buf
}

// recorder tracks dispatched events, in order.
type recorder struct {
	events []string
}

func (r *recorder) action(mode Mode) Action {
	return func(f *File, info any) {
		r.events = append(r.events, fmt.Sprintf(`%s:%d:%v`, mode, f.FD(), info))
	}
}

func requirePanicsIs(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %#v is not an error", r)
		require.True(t, errors.Is(err, target), "panic %v is not %v", err, target)
	}()
	fn()
}
