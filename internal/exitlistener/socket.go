// Package exitlistener implements the exit-control endpoint: a Unix domain
// socket speaking HTTP/1.1 whose only command, POST /exit, terminates the
// whole process with a caller-supplied exit code.
//
// The lifecycle is:
//
//  1. [Listen] removes any stale file at the socket path and binds.
//  2. [Server.Serve] accepts connections, one goroutine each.
//  3. A valid /exit request is answered with 204, the response is flushed,
//     and the [Terminator] ends the process.
package exitlistener

import (
	"errors"
	"fmt"
	"net"
	"os"

	"tools.zach/dev/exitd/internal/paths"
)

// ///////////////////////////////////////////////
// Socket Endpoint
// ///////////////////////////////////////////////

// ErrSocketPathIsDir is returned by [Listen] when the socket path names a
// directory. A directory is never a leftover socket, so it is not removed.
var ErrSocketPathIsDir = errors.New("socket path is a directory")

// Listen claims path for the exit listener. Any existing non-directory file at
// path (a socket left behind by a previous run, or anything else) is removed
// without confirmation, then a Unix domain socket is bound there. A non-zero
// mode is applied to the socket file after bind.
//
// The returned listener unlinks path when closed. A process terminated through
// /exit never closes it, so the file stays behind for the next run to clean up.
func Listen(path string, mode os.FileMode) (net.Listener, error) {
	if err := os.MkdirAll(paths.SocketDir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure socket dir: %w", err)
	}
	if err := removeStale(path); err != nil {
		return nil, err
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen unix %s: %w", path, err)
	}

	if mode != 0 {
		if err := os.Chmod(path, mode); err != nil {
			_ = listener.Close()
			return nil, fmt.Errorf("chmod socket %s: %w", path, err)
		}
	}
	return listener, nil
}

// removeStale deletes whatever file occupies path so bind can succeed.
func removeStale(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat socket path %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("remove stale socket %s: %w", path, ErrSocketPathIsDir)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket %s: %w", path, err)
	}
	return nil
}
