// Package paths centralizes file names and default locations used across the
// project. The daemon, the client, and the config defaults all read the
// socket location from here.
package paths

import "path/filepath"

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Binary names, used in usage text and log prefixes.
const (
	DaemonName = "exitd"
	ClientName = "exitctl"
)

// ExitRoute is the only route served on the control socket.
const ExitRoute = "/exit"

// ///////////////////////////////////////////////
// Socket
// ///////////////////////////////////////////////

// SocketDir returns the directory that holds the socket file at path.
func SocketDir(path string) string { return filepath.Dir(path) }

// PIDPath returns the lock file guarding the socket at path. A running
// daemon holds an exclusive lock on it.
func PIDPath(socketPath string) string { return socketPath + ".pid" }
