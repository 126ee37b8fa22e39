package qtimer

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/joeycumines/go-qdispatch/qtime"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/require"
)

// recorder tracks dispatched timers, in order.
type recorder struct {
	events []string
}

func (r *recorder) action(t *Timer, info any, upto qtime.Time) {
	r.events = append(r.events, fmt.Sprintf(`%v@%d`, info, int64(upto)))
}

func newTestPile(t *testing.T, opts ...Option) *Pile {
	t.Helper()
	p, err := NewPile(nil, opts...)
	require.NoError(t, err)
	return p
}

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
