package client

import (
	"fmt"
	"strings"
)

const maxErrorBodyLength = 512

// ErrTransport is returned when the service could not be reached or the
// exchange broke off before a response was read.
type ErrTransport struct {
	error
}

func NewErrTransport(err error) *ErrTransport {
	return &ErrTransport{fmt.Errorf("failed to call analysis service: %w", err)}
}

func (e *ErrTransport) Unwrap() error {
	return e.error
}

// ErrService is returned when the service answered with a non-2xx status.
// Body holds the start of the response body, which is not guaranteed to be JSON.
type ErrService struct {
	error
	StatusCode int
	Body       string
}

func NewErrService(statusCode int, body []byte) *ErrService {
	b := strings.TrimSpace(string(body))
	if len(b) > maxErrorBodyLength {
		b = b[:maxErrorBodyLength] + "..."
	}
	msg := fmt.Sprintf("analysis service returned status %d", statusCode)
	if b != "" {
		msg = fmt.Sprintf("%s: %s", msg, b)
	}
	return &ErrService{
		error:      fmt.Errorf("%s", msg),
		StatusCode: statusCode,
		Body:       b,
	}
}

// ErrDecode is returned when a successful response body cannot be parsed.
type ErrDecode struct {
	error
}

func NewErrDecode(err error) *ErrDecode {
	return &ErrDecode{fmt.Errorf("failed to decode analysis response: %w", err)}
}

func (e *ErrDecode) Unwrap() error {
	return e.error
}
