package workflow

import (
	"context"
	"errors"

	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
	"github.com/pitchpilot/pitch-analyzer/internal/client"
)

// ErrSubmissionInFlight is returned when a submission starts while another
// one is processing. The running submission is not affected.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// ErrNotCompleted is returned by HandOff outside the completed state.
var ErrNotCompleted = errors.New("no completed analysis to hand off")

// Kind classifies the error of a failed or cancelled submission.
type Kind string

const (
	KindNone       Kind = ""
	KindValidation Kind = "validation"
	KindTransport  Kind = "transport"
	KindService    Kind = "service"
	KindDecode     Kind = "decode"
	KindTimeout    Kind = "timeout"
	KindCancelled  Kind = "cancelled"
	KindUnknown    Kind = "unknown"
)

// ErrKind returns the kind of err. Context errors take precedence over the
// transport error wrapping them.
func ErrKind(err error) Kind {
	if err == nil {
		return KindNone
	}

	var (
		invalid      *analysis.ErrInvalidRequest
		serviceErr   *client.ErrService
		decodeErr    *client.ErrDecode
		transportErr *client.ErrTransport
	)

	switch {
	case errors.As(err, &invalid):
		return KindValidation
	case errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &serviceErr):
		return KindService
	case errors.As(err, &decodeErr):
		return KindDecode
	case errors.As(err, &transportErr):
		return KindTransport
	default:
		return KindUnknown
	}
}
