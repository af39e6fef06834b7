// Unix signal handling for daemon shutdown.
//
// SIGINT and SIGTERM both stop the daemon; the latter is what process
// managers and container runtimes send.

//go:build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// ///////////////////////////////////////////////
// Signal Handling
// ///////////////////////////////////////////////

// signalChannel returns a channel subscribed to SIGINT and SIGTERM. The
// buffer of 1 keeps a signal from being dropped while the receiver is busy.
func signalChannel() chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return ch
}
