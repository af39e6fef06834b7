// Package exitclient sends the exit command to an exit listener over its Unix
// domain socket.
//
// Requests are retried only while the socket cannot be dialed, which covers a
// listener that is still starting up. Once a request has reached the listener
// it is never sent again: the listener may already have exited.
package exitclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"tools.zach/dev/exitd/internal/paths"
)

// ErrRejected is returned when the listener answers 400.
var ErrRejected = errors.New("exit request rejected")

// ///////////////////////////////////////////////
// Options
// ///////////////////////////////////////////////

// Option customizes a [Client].
type Option func(*Client)

// WithRetries sets how many extra dial attempts are made while the socket is
// unreachable.
func WithRetries(n int) Option {
	return func(c *Client) { c.http.RetryMax = n }
}

// WithRetryWait bounds the backoff between dial attempts.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.http.RetryWaitMin = minWait
		c.http.RetryWaitMax = maxWait
	}
}

// WithTimeout bounds each attempt, dial through response headers.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.HTTPClient.Timeout = d }
}

// ///////////////////////////////////////////////
// Client
// ///////////////////////////////////////////////

// Client talks to one exit listener socket.
type Client struct {
	socketPath string
	http       *retryablehttp.Client
}

// New returns a Client for the socket at socketPath. By default it makes 4
// extra dial attempts, waiting 50ms to 1s between them, with a 5s per-attempt
// timeout.
func New(socketPath string, opts ...Option) *Client {
	hc := retryablehttp.NewClient()
	hc.HTTPClient = &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socketPath)
			},
			DisableKeepAlives: true,
		},
		Timeout: 5 * time.Second,
	}
	hc.RetryMax = 4
	hc.RetryWaitMin = 50 * time.Millisecond
	hc.RetryWaitMax = time.Second
	hc.CheckRetry = retryUnreachable
	hc.Logger = nil

	c := &Client{socketPath: socketPath, http: hc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SocketPath returns the socket the client dials.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// Exit asks the listener to terminate its process with code. A nil error means
// the listener answered 204 and is exiting.
func (c *Client) Exit(ctx context.Context, code int) error {
	body, err := json.Marshal(struct {
		Code int `json:"code"`
	}{Code: code})
	if err != nil {
		return fmt.Errorf("encode exit request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, "http://unix"+paths.ExitRoute, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build exit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send exit request to %s: %w", c.socketPath, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusBadRequest:
		return ErrRejected
	default:
		return fmt.Errorf("exit request: unexpected status %d", resp.StatusCode)
	}
}

// ///////////////////////////////////////////////
// Retry Policy
// ///////////////////////////////////////////////

// retryUnreachable retries only when no listener could be reached: the socket
// file is missing or nothing accepts on it.
func retryUnreachable(ctx context.Context, _ *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil {
		return false, nil
	}
	return isUnreachable(err), nil
}

// isUnreachable reports dial failures that mean no listener is up yet.
func isUnreachable(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED)
}
