package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type reload struct {
	opts *Options
	err  error
}

func startWatcher(t *testing.T, ctx context.Context) (string, *Watcher, chan reload) {
	t.Helper()
	t.Setenv(EnvTheme, "")
	t.Setenv(EnvIntensity, "")
	t.Setenv(EnvBubbles, "")

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Default().Save(path))

	got := make(chan reload, 8)
	w, err := NewWatcher(path, func(o *Options, err error) { got <- reload{o, err} }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(ctx))
	return path, w, got
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	path, w, got := startWatcher(t, context.Background())
	defer w.Stop()

	opts := Default()
	opts.Theme = "dark"
	opts.Bubbles.Count = 9
	require.NoError(t, opts.Save(path))

	select {
	case r := <-got:
		require.NoError(t, r.err)
		assert.Equal(t, "dark", r.opts.Theme)
		assert.Equal(t, 9, r.opts.Bubbles.Count)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatcher_ReportsInvalidFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	path, w, got := startWatcher(t, context.Background())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("theme: sepia\n"), 0o644))

	select {
	case r := <-got:
		assert.ErrorIs(t, r.err, ErrInvalid)
		assert.Nil(t, r.opts)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatcher_StopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	_, w, _ := startWatcher(t, ctx)
	cancel()
	w.Stop()
	w.Stop()
}
