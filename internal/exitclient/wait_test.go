//go:build !windows

package exitclient

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWaitForSocketAlreadyPresent(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "daemon.socket")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	defer listener.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, WaitForSocket(ctx, socketPath))
}

func TestWaitForSocketAppears(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "daemon.socket")

	bound := make(chan net.Listener, 1)
	go func() {
		time.Sleep(50 * time.Millisecond)
		l, err := net.Listen("unix", socketPath)
		if err != nil {
			close(bound)
			return
		}
		bound <- l
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, WaitForSocket(ctx, socketPath))

	l, ok := <-bound
	require.True(t, ok, "listener goroutine failed to bind")
	require.NoError(t, l.Close())
}

func TestWaitForSocketIgnoresRegularFile(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "daemon.socket")
	require.NoError(t, os.WriteFile(socketPath, []byte("stale"), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, WaitForSocket(ctx, socketPath), context.DeadlineExceeded)
}

func TestWaitForSocketPollsWhenDirMissing(t *testing.T) {
	orig := pollInterval
	pollInterval = 10 * time.Millisecond
	t.Cleanup(func() { pollInterval = orig })

	dir := filepath.Join(t.TempDir(), "run")
	socketPath := filepath.Join(dir, "daemon.socket")

	bound := make(chan net.Listener, 1)
	go func() {
		time.Sleep(50 * time.Millisecond)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			close(bound)
			return
		}
		l, err := net.Listen("unix", socketPath)
		if err != nil {
			close(bound)
			return
		}
		bound <- l
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, WaitForSocket(ctx, socketPath))

	l, ok := <-bound
	require.True(t, ok, "listener goroutine failed to bind")
	require.NoError(t, l.Close())
}
