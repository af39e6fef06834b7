package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ///////////////////////////////////////////////
// PID Lock
// ///////////////////////////////////////////////

// AlreadyRunningError reports that another daemon holds the PID lock for the
// same socket. PID is 0 when the holder's file could not be read.
type AlreadyRunningError struct {
	PID int
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("daemon already running (pid %d)", e.PID)
}

// pidLock is a held lock on a PID file. The file content is "PID:TOKEN"; the
// token lets release tell its own file from one rewritten by a successor.
type pidLock struct {
	path  string
	token string
	f     *os.File
}

// pidToken returns 16 random hex characters.
func pidToken() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// acquirePID opens or creates the PID file at path and locks it. A file left
// behind by a dead daemon is unlocked and gets reclaimed. When a live daemon
// holds it, the result is an [*AlreadyRunningError].
func acquirePID(path string) (*pidLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open PID file: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, &AlreadyRunningError{PID: readPID(path)}
	}

	l := &pidLock{path: path, token: pidToken(), f: f}
	if err := f.Truncate(0); err != nil {
		l.unlock()
		return nil, fmt.Errorf("truncate PID file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%d:%s", os.Getpid(), l.token); err != nil {
		l.unlock()
		return nil, fmt.Errorf("write PID file: %w", err)
	}
	return l, nil
}

// release unlocks the PID file and removes it if it still carries this
// lock's token.
func (l *pidLock) release() {
	l.unlock()
	data, err := os.ReadFile(l.path)
	if err != nil {
		return
	}
	if _, token, ok := strings.Cut(string(data), ":"); ok && token == l.token {
		os.Remove(l.path)
	}
}

func (l *pidLock) unlock() {
	_ = unlockFile(l.f)
	l.f.Close()
}

// readPID parses the PID field of the file at path, or returns 0.
func readPID(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	field, _, _ := strings.Cut(string(data), ":")
	pid, err := strconv.Atoi(field)
	if err != nil {
		return 0
	}
	return pid
}
