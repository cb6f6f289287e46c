package analysis

import "fmt"

// ErrInvalidRequest is returned for an incomplete request. It never reaches
// the network: submission does not start.
type ErrInvalidRequest struct {
	error
}

func NewErrInvalidRequest(format string, args ...any) *ErrInvalidRequest {
	return &ErrInvalidRequest{fmt.Errorf("invalid analysis request: "+format, args...)}
}

func (e *ErrInvalidRequest) Unwrap() error {
	return e.error
}
