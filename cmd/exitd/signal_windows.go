// Windows signal handling for daemon shutdown.
//
// Windows has no SIGTERM. The runtime delivers Ctrl+C, Ctrl+Break and
// console close as os.Interrupt.

//go:build windows

package main

import (
	"os"
	"os/signal"
)

// ///////////////////////////////////////////////
// Signal Handling
// ///////////////////////////////////////////////

// signalChannel returns a channel subscribed to os.Interrupt.
func signalChannel() chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	return ch
}
