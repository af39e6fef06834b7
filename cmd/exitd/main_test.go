package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	rootpkg "tools.zach/dev/exitd"
	"tools.zach/dev/exitd/internal/config"
)

// ///////////////////////////////////////////////
// resolveVersion Tests
// ///////////////////////////////////////////////

func TestResolveVersionWithLdflags(t *testing.T) {
	original := version
	defer func() { version = original }()

	version = "1.2.3"
	if got := resolveVersion(); got != "1.2.3" {
		t.Errorf("resolveVersion() = %q, want %q", got, "1.2.3")
	}
}

func TestResolveVersionDev(t *testing.T) {
	original := version
	defer func() { version = original }()

	// Test binaries may or may not carry VCS info.
	version = "dev"
	if got := resolveVersion(); !strings.HasPrefix(got, "dev") {
		t.Errorf("resolveVersion() = %q, expected to start with 'dev'", got)
	}
}

// ///////////////////////////////////////////////
// Flag Tests
// ///////////////////////////////////////////////

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer

	if code := run([]string{"-version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run(-version) = %d, stderr %q", code, stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "exitd ") {
		t.Errorf("version output = %q", stdout.String())
	}
}

func TestRunUsageErrors(t *testing.T) {
	tests := [][]string{
		{"-no-such-flag"},
		{"extra-arg"},
	}
	for _, args := range tests {
		var stdout, stderr bytes.Buffer
		if code := run(args, &stdout, &stderr); code != 2 {
			t.Errorf("run(%q) = %d, want 2", args, code)
		}
	}
}

func TestRunFatalOnInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exitd.toml")
	if err := os.WriteFile(path, []byte("[listener]\nmax_body_bytes = -1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	var stdout, stderr bytes.Buffer

	if code := run([]string{"-config", path}, &stdout, &stderr); code != 1 {
		t.Fatalf("run = %d, want 1", code)
	}
	if !strings.HasPrefix(stderr.String(), "fatal: load config:") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

// ///////////////////////////////////////////////
// loadConfig Tests
// ///////////////////////////////////////////////

func TestLoadConfigSeedsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "exitd.toml")
	var stderr bytes.Buffer

	cfg, err := loadConfig(path, "", &stderr)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("seeded config not written: %v", err)
	}
	if !bytes.Equal(data, rootpkg.DefaultConfigTOML) {
		t.Error("seeded config differs from the embedded default")
	}
	if runtime.GOOS != "windows" && *cfg != *config.DefaultConfig() {
		t.Errorf("config from seeded file = %+v, want defaults", cfg)
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected warnings: %q", stderr.String())
	}
}

func TestLoadConfigKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exitd.toml")
	custom := "[listener]\nsocket_path = \"/run/custom.socket\"\n"
	if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := loadConfig(path, "", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Listener.SocketPath != "/run/custom.socket" {
		t.Errorf("SocketPath = %q", cfg.Listener.SocketPath)
	}
	data, _ := os.ReadFile(path)
	if string(data) != custom {
		t.Errorf("existing config was rewritten: %q", data)
	}
}

func TestLoadConfigSocketOverride(t *testing.T) {
	cfg, err := loadConfig("", "/run/override.socket", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Listener.SocketPath != "/run/override.socket" {
		t.Errorf("SocketPath = %q, want override", cfg.Listener.SocketPath)
	}
}
