package paths

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestConstantValues(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"DaemonName", DaemonName, "exitd"},
		{"ClientName", ClientName, "exitctl"},
		{"ExitRoute", ExitRoute, "/exit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestDefaultSocketPath(t *testing.T) {
	want := "/tmp/daemon.socket"
	if runtime.GOOS == "windows" {
		want = `C:\Windows\Temp\daemon.socket`
	}
	if DefaultSocketPath != want {
		t.Errorf("DefaultSocketPath = %q, want %q", DefaultSocketPath, want)
	}
	if !filepath.IsAbs(DefaultSocketPath) {
		t.Errorf("DefaultSocketPath %q is not absolute", DefaultSocketPath)
	}
}

func TestSocketDir(t *testing.T) {
	path := filepath.Join("run", "exitd", "daemon.socket")
	if got, want := SocketDir(path), filepath.Join("run", "exitd"); got != want {
		t.Errorf("SocketDir(%q) = %q, want %q", path, got, want)
	}
	if got := SocketDir("daemon.socket"); got != "." {
		t.Errorf("SocketDir(bare name) = %q, want %q", got, ".")
	}
}

func TestPIDPath(t *testing.T) {
	if got := PIDPath("/tmp/daemon.socket"); got != "/tmp/daemon.socket.pid" {
		t.Errorf("PIDPath = %q, want %q", got, "/tmp/daemon.socket.pid")
	}
}
