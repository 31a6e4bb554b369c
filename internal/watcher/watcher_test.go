package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opencode-ai/lorasched/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.txt")
	require.NoError(t, os.WriteFile(path, []byte("2 : 0.8\n3 : 0.4\n"), 0o644))

	w, err := New(path, Options{})
	require.NoError(t, err)

	res := w.Check()
	require.True(t, res.OK(), "unexpected error: %v", res.Err)
	assert.Equal(t, 2, res.Schedule.Len())

	require.NoError(t, os.WriteFile(path, []byte("2 : strong\n"), 0o644))
	res = w.Check()
	assert.False(t, res.OK())
	var syntaxErr *schedule.SyntaxError
	require.True(t, errors.As(res.Err, &syntaxErr))
	assert.Equal(t, 1, syntaxErr.Line)
}

func TestCheckRelative(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fade.txt")
	require.NoError(t, os.WriteFile(path, []byte("0.5 : 1\n0.5 : 0\n"), 0o644))

	w, err := New(path, Options{Relative: true})
	require.NoError(t, err)

	res := w.Check()
	require.True(t, res.OK())
	assert.True(t, res.Schedule.IsRelative())
}

func TestCheckMissingFile(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing.txt"), Options{})
	require.NoError(t, err)
	assert.Error(t, w.Check().Err)
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New("  ", Options{})
	assert.Error(t, err)
}

func TestRunReportsChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "style.txt")
	require.NoError(t, os.WriteFile(path, []byte("2 : 0.8\n"), 0o644))

	w, err := New(path, Options{Debounce: 20 * time.Millisecond})
	require.NoError(t, err)

	results := make(chan Result, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(r Result) { results <- r })
	}()

	next := func() Result {
		t.Helper()
		select {
		case r := <-results:
			return r
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for watcher result")
			return Result{}
		}
	}

	first := next()
	require.True(t, first.OK())

	require.NoError(t, os.WriteFile(path, []byte("2 : 0.8\n* : oops\n"), 0o644))
	broken := next()
	assert.False(t, broken.OK())

	require.NoError(t, os.WriteFile(path, []byte("2 : 0.8\n* : 0.2\n"), 0o644))
	fixed := next()
	require.True(t, fixed.OK())
	assert.True(t, fixed.Schedule.HasRemainder())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRunRequiresHandler(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "x.txt"), Options{})
	require.NoError(t, err)
	assert.Error(t, w.Run(context.Background(), nil))
}
