//go:build !windows

package paths

// DefaultSocketPath is where the exit listener binds when neither the config
// file nor a flag names another path.
const DefaultSocketPath = "/tmp/daemon.socket"
