package exitlistener

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ///////////////////////////////////////////////
// Exit Request
// ///////////////////////////////////////////////

// Parse errors. Both are answered with 400 and leave the process running.
var (
	ErrMalformedBody = errors.New("malformed exit request body")
	ErrInvalidCode   = errors.New("invalid exit code")
)

// ExitRequest is the decoded body of one POST /exit.
type ExitRequest struct {
	// Code is the process exit status to terminate with. Zero when the body
	// omits it.
	Code int
}

// jsonNull is the literal a present-but-null code decodes from.
var jsonNull = []byte("null")

// ParseExitRequest decodes body as a JSON object with an optional integer
// "code" field. The code must be a plain integer literal that fits a C int;
// null, fractions, booleans and strings are rejected with [ErrInvalidCode].
// Anything that is not exactly one JSON object is [ErrMalformedBody].
// Unknown fields are ignored.
func ParseExitRequest(body []byte) (ExitRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ExitRequest{}, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	// A bare null unmarshals into a nil map without error.
	if fields == nil {
		return ExitRequest{}, fmt.Errorf("%w: body is not a JSON object", ErrMalformedBody)
	}

	raw, ok := fields["code"]
	if !ok {
		return ExitRequest{}, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return ExitRequest{}, fmt.Errorf("%w: code is null", ErrInvalidCode)
	}

	var code int32
	if err := json.Unmarshal(raw, &code); err != nil {
		return ExitRequest{}, fmt.Errorf("%w: %s: %v", ErrInvalidCode, raw, err)
	}
	return ExitRequest{Code: int(code)}, nil
}
