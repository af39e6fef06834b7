// Package main implements exitd, a daemon that waits for an exit command on
// a Unix socket and then terminates with the exit code it was given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"

	rootpkg "tools.zach/dev/exitd"
	"tools.zach/dev/exitd/internal/atomicfile"
	"tools.zach/dev/exitd/internal/config"
	"tools.zach/dev/exitd/internal/exitlistener"
	"tools.zach/dev/exitd/internal/logger"
	"tools.zach/dev/exitd/internal/paths"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time with -ldflags "-X main.version=...". Bare
// builds fall back to the VCS stamp embedded by the toolchain.
var version = "dev"

// resolveVersion returns [version] if it was set at link time, otherwise
// "dev+<hash>" (with ".dirty" for a modified tree) from the build info.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// ///////////////////////////////////////////////
// Configuration
// ///////////////////////////////////////////////

// loadConfig loads the config at configPath, seeding it from the embedded
// default first when the file does not exist. A non-empty socketOverride
// replaces the configured socket path.
func loadConfig(configPath, socketOverride string, stderr io.Writer) (*config.Config, error) {
	if configPath != "" {
		err := atomicfile.Seed(configPath, rootpkg.DefaultConfigTOML, 0o644)
		if err != nil && !errors.Is(err, atomicfile.ErrExists) {
			fmt.Fprintf(stderr, "warning: failed to write default config: %v\n", err)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if socketOverride != "" {
		cfg.Listener.SocketPath = socketOverride
	}
	return cfg, nil
}

// ///////////////////////////////////////////////
// Daemon
// ///////////////////////////////////////////////

// daemon holds the PID lock, binds the exit socket and serves it until ctx
// is cancelled or an exit command terminates the process. terminate may be
// nil for the real process exit.
func daemon(ctx context.Context, cfg *config.Config, log *slog.Logger, terminate exitlistener.Terminator) error {
	socket := cfg.Listener.SocketPath
	mode, err := cfg.Listener.Mode()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(paths.SocketDir(socket), 0o755); err != nil {
		return fmt.Errorf("ensure socket dir: %w", err)
	}
	lock, err := acquirePID(paths.PIDPath(socket))
	if err != nil {
		return err
	}
	defer lock.release()

	listener, err := exitlistener.Listen(socket, mode)
	if err != nil {
		return err
	}
	log.Info("listening", "socket", socket, "pid", os.Getpid())

	srv := exitlistener.NewServer(exitlistener.Options{
		Terminate:    terminate,
		Logger:       log,
		MaxBodyBytes: cfg.Listener.MaxBodyBytes,
	})
	if err := srv.Serve(ctx, listener); err != nil {
		return err
	}
	log.Info("shutting down", "socket", socket)
	return nil
}

// signalContext returns a context cancelled on the first shutdown signal.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigs := signalChannel()
	go func() {
		select {
		case sig := <-sigs:
			slog.Info("received signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigs)
		cancel()
	}
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

// run is main without the process exit, returning the exit status.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(paths.DaemonName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "TOML config file; created from defaults if missing")
	socketPath := fs.String("socket", "", "socket path (overrides config, default "+paths.DefaultSocketPath+")")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "%s: unexpected argument %q\n", paths.DaemonName, fs.Arg(0))
		fs.Usage()
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stdout, paths.DaemonName, resolveVersion())
		return 0
	}

	cfg, err := loadConfig(*configPath, *socketPath, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "fatal: load config: %v\n", err)
		return 1
	}

	log, logCloser := logger.New(cfg.LoggerOptions(), stderr)
	defer logCloser.Close()
	slog.SetDefault(log)
	log.Info("exitd starting", "version", resolveVersion())

	ctx, stop := signalContext(context.Background())
	defer stop()

	if err := daemon(ctx, cfg, log, nil); err != nil {
		fmt.Fprintf(stderr, "fatal: %v\n", err)
		if cfg.Log.File != "" {
			log.Error("daemon failed", "error", err)
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
