// Windows has AF_UNIX support since Windows 10 1803, but no /tmp. The socket
// lives in the fixed system temp directory instead.

//go:build windows

package paths

// DefaultSocketPath is where the exit listener binds when neither the config
// file nor a flag names another path.
const DefaultSocketPath = `C:\Windows\Temp\daemon.socket`
