package exitclient

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"tools.zach/dev/exitd/internal/paths"
)

// pollInterval is the stat period used when fsnotify is unavailable.
var pollInterval = 100 * time.Millisecond

// ///////////////////////////////////////////////
// Socket Wait
// ///////////////////////////////////////////////

// WaitForSocket blocks until a socket file exists at path or ctx is done.
// It watches the socket's directory with fsnotify and falls back to polling
// when the directory cannot be watched (for example because it does not
// exist yet).
func WaitForSocket(ctx context.Context, path string) error {
	if isSocket(path) {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Debug("fsnotify unavailable, polling for socket", "error", err)
		return pollForSocket(ctx, path)
	}
	defer fsw.Close()

	if err := fsw.Add(paths.SocketDir(path)); err != nil {
		slog.Debug("cannot watch socket dir, polling for socket", "path", path, "error", err)
		return pollForSocket(ctx, path)
	}

	// The socket may have appeared between the first check and Add.
	if isSocket(path) {
		return nil
	}

	want := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return pollForSocket(ctx, path)
			}
			if event.Has(fsnotify.Create) && filepath.Clean(event.Name) == want && isSocket(path) {
				return nil
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return pollForSocket(ctx, path)
			}
			slog.Debug("fsnotify error, polling for socket", "error", err)
			return pollForSocket(ctx, path)
		}
	}
}

// pollForSocket stats path every pollInterval until it is a socket.
func pollForSocket(ctx context.Context, path string) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if isSocket(path) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// isSocket reports whether path currently names a socket file. A leftover
// regular file does not count.
func isSocket(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSocket != 0
}
