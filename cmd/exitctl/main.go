// Package main implements exitctl, which tells a running exitd to terminate
// with a given exit code.
//
// Usage:
//
//	exitctl [-socket PATH] [-wait DURATION] [-retries N] [CODE]
//
// CODE defaults to 0. The command exits 0 once the daemon has acknowledged
// the request, 1 when the request failed, and 2 on a usage error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"tools.zach/dev/exitd/internal/exitclient"
	"tools.zach/dev/exitd/internal/paths"
)

// usageError marks an invalid command line.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

// parseCode parses the optional CODE argument as a 32-bit signed integer.
func parseCode(args []string) (int, error) {
	switch len(args) {
	case 0:
		return 0, nil
	case 1:
		code, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return 0, usageError{fmt.Sprintf("invalid exit code %q: must be a 32-bit integer", args[0])}
		}
		return int(code), nil
	default:
		return 0, usageError{fmt.Sprintf("expected at most one CODE argument, got %d", len(args))}
	}
}

// send waits for the socket when wait is positive, then delivers the exit
// command.
func send(ctx context.Context, client *exitclient.Client, code int, wait time.Duration) error {
	if wait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, wait)
		defer cancel()
		if err := exitclient.WaitForSocket(waitCtx, client.SocketPath()); err != nil {
			return fmt.Errorf("wait for %s: %w", client.SocketPath(), err)
		}
	}
	return client.Exit(ctx, code)
}

// run is main without the process exit, returning the exit status.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet(paths.ClientName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s [-socket PATH] [-wait DURATION] [-retries N] [CODE]\n", paths.ClientName)
		fs.PrintDefaults()
	}
	socket := fs.String("socket", paths.DefaultSocketPath, "daemon socket path")
	wait := fs.Duration("wait", 0, "wait up to this long for the socket to appear")
	retries := fs.Int("retries", 4, "extra attempts while the socket refuses connections")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *retries < 0 {
		fmt.Fprintf(stderr, "%s: -retries must be >= 0\n", paths.ClientName)
		return 2
	}

	code, err := parseCode(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", paths.ClientName, err)
		fs.Usage()
		return 2
	}

	client := exitclient.New(*socket, exitclient.WithRetries(*retries))
	if err := send(ctx, client, code, *wait); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", paths.ClientName, err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}
