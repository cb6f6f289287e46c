package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
	"github.com/pitchpilot/pitch-analyzer/internal/events"
	"github.com/pitchpilot/pitch-analyzer/internal/transfer"
	"github.com/pitchpilot/pitch-analyzer/pkg/metrics"
	"github.com/pitchpilot/pitch-analyzer/pkg/requestid"
	"go.uber.org/zap"
)

const (
	opSubmit = "submit"
	opFetch  = "fetch"
)

// Submitter performs the analysis calls. *client.AnalysisClient implements it.
type Submitter interface {
	Submit(ctx context.Context, req *analysis.Request) (*analysis.Result, error)
	GetAnalysis(ctx context.Context, id string) (*analysis.Result, error)
}

// Publisher receives workflow events. *events.EventProducer implements it.
type Publisher interface {
	Write(ctx context.Context, kind string, body io.Reader) error
}

// Sharer stores a result and returns the token referencing it.
type Sharer interface {
	Share(ctx context.Context, result *analysis.Result) (string, error)
}

// Listener is called after every transition, outside the controller lock.
type Listener func(Snapshot)

type Option func(c *Controller)

// WithTimeout bounds each submission. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Controller) {
		c.timeout = timeout
	}
}

func WithPublisher(p Publisher) Option {
	return func(c *Controller) {
		c.publisher = p
	}
}

// Controller drives one analysis at a time through
// pending -> processing -> completed | failed | cancelled.
// Settled states are left by the next submission.
type Controller struct {
	lock      sync.Mutex
	submitter Submitter
	publisher Publisher
	timeout   time.Duration

	snapshot Snapshot
	cancel   context.CancelFunc

	listeners  map[int]Listener
	nextListen int
}

func New(submitter Submitter, opts ...Option) *Controller {
	c := &Controller{
		submitter: submitter,
		snapshot:  Snapshot{State: StatePending},
		listeners: map[int]Listener{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Submit runs req through the analysis service and blocks until the
// submission settles. An invalid request returns *analysis.ErrInvalidRequest
// and leaves the state untouched. A submission while processing returns
// ErrSubmissionInFlight. Otherwise the returned error is the one stored in
// the failed or cancelled snapshot.
func (c *Controller) Submit(ctx context.Context, req *analysis.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return c.run(ctx, opSubmit, req.Document.Name, req.Title, func(ctx context.Context) (*analysis.Result, error) {
		return c.submitter.Submit(ctx, req)
	})
}

// FetchByID loads a previously computed analysis through the same states as Submit.
func (c *Controller) FetchByID(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return analysis.NewErrInvalidRequest("analysis id is empty")
	}
	return c.run(ctx, opFetch, "", id, func(ctx context.Context) (*analysis.Result, error) {
		return c.submitter.GetAnalysis(ctx, id)
	})
}

// Cancel aborts the in-flight call, if any. It reports whether there was one.
func (c *Controller) Cancel() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.cancel == nil {
		return false
	}
	c.cancel()
	return true
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.snapshot
}

// CanSubmit reports whether a new submission would be accepted.
func (c *Controller) CanSubmit() bool {
	return c.Snapshot().State != StateProcessing
}

// Subscribe registers fn for every following transition. The returned func
// removes it.
func (c *Controller) Subscribe(fn Listener) func() {
	c.lock.Lock()
	defer c.lock.Unlock()

	id := c.nextListen
	c.nextListen++
	c.listeners[id] = fn

	return func() {
		c.lock.Lock()
		defer c.lock.Unlock()
		delete(c.listeners, id)
	}
}

// HandOff returns the results view URL carrying the completed result in its
// data parameter.
func (c *Controller) HandOff(resultsBase string) (string, error) {
	snap := c.Snapshot()
	if snap.State != StateCompleted || snap.Result == nil {
		return "", ErrNotCompleted
	}

	u, err := transfer.ResultsURL(resultsBase, snap.Result)
	if err != nil {
		return "", err
	}
	if transfer.TooLong(u) {
		zap.S().Named("workflow").Warnw("results URL exceeds the safe length, consider sharing by token",
			"length", len(u), "max", transfer.MaxURLLength)
	}
	return u, nil
}

// HandOffShared stores the completed result with sharer and returns the
// results view URL carrying only the token.
func (c *Controller) HandOffShared(ctx context.Context, resultsBase string, sharer Sharer) (string, error) {
	snap := c.Snapshot()
	if snap.State != StateCompleted || snap.Result == nil {
		return "", ErrNotCompleted
	}

	token, err := sharer.Share(ctx, snap.Result)
	if err != nil {
		return "", err
	}
	return transfer.TokenURL(resultsBase, token), nil
}

func (c *Controller) run(ctx context.Context, op, document, title string, call func(ctx context.Context) (*analysis.Result, error)) error {
	c.lock.Lock()
	if c.snapshot.State == StateProcessing {
		inFlight := c.snapshot.RequestID
		c.lock.Unlock()
		zap.S().Named("workflow").Debugw("submission rejected, another one is in flight", "request_id", inFlight)
		return ErrSubmissionInFlight
	}

	ctx, reqID := requestid.Ensure(ctx)
	callCtx, cancel := context.WithCancel(ctx)
	if c.timeout > 0 {
		callCtx, cancel = withTimeout(callCtx, cancel, c.timeout)
	}
	c.cancel = cancel

	transitions := []Snapshot{
		c.transition(Snapshot{State: StatePending, Operation: op, RequestID: reqID, Document: document, Title: title}),
	}
	next := c.snapshot
	next.State = StateProcessing
	next.StartedAt = time.Now()
	transitions = append(transitions, c.transition(next))
	c.lock.Unlock()

	c.notify(ctx, transitions...)
	metrics.IncreaseSubmissionsInFlight()

	result, err := call(callCtx)

	c.lock.Lock()
	cancel()
	c.cancel = nil

	next = c.snapshot
	next.FinishedAt = time.Now()
	if err != nil {
		kind := ErrKind(err)
		next.State = StateFailed
		if kind == KindCancelled {
			next.State = StateCancelled
		}
		next.Err = err
		next.ErrKind = kind
	} else {
		next.State = StateCompleted
		next.Result = result
	}
	settled := c.transition(next)
	c.lock.Unlock()

	metrics.ObserveSubmission(string(settled.State), settled.Duration().Seconds())
	c.notify(ctx, settled)

	return err
}

// transition installs next as the current snapshot. Callers hold the lock.
func (c *Controller) transition(next Snapshot) Snapshot {
	next.Previous = c.snapshot.State
	c.snapshot = next
	return next
}

func (c *Controller) notify(ctx context.Context, snaps ...Snapshot) {
	c.lock.Lock()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.lock.Unlock()

	for _, s := range snaps {
		logTransition(s)
		metrics.IncreaseWorkflowTransitionMetric(string(s.State), string(s.ErrKind))
		c.publish(ctx, s)
		for _, l := range listeners {
			l(s)
		}
	}
}

func (c *Controller) publish(ctx context.Context, s Snapshot) {
	if c.publisher == nil {
		return
	}

	ev := events.WorkflowEvent{
		RequestID:     s.RequestID,
		Operation:     s.Operation,
		State:         string(s.State),
		PreviousState: string(s.Previous),
		ErrorKind:     string(s.ErrKind),
		Document:      s.Document,
		Title:         s.Title,
		Timestamp:     time.Now(),
	}
	if s.Err != nil {
		ev.Error = s.Err.Error()
	}
	if s.Result != nil && s.Result.Score != nil {
		overall := s.Result.Score.Overall
		ev.OverallScore = &overall
	}

	data, err := json.Marshal(ev)
	if err != nil {
		zap.S().Named("workflow").Errorw("failed to encode workflow event", "error", err)
		return
	}
	if err := c.publisher.Write(context.WithoutCancel(ctx), events.TransitionMessageKind, bytes.NewReader(data)); err != nil {
		zap.S().Named("workflow").Errorw("failed to publish workflow event", "error", err)
	}
}

func logTransition(s Snapshot) {
	logger := zap.S().Named("workflow").With("request_id", s.RequestID, "operation", s.Operation, "from", s.Previous, "to", s.State)
	switch s.State {
	case StateFailed:
		logger.Errorw("analysis failed", "kind", s.ErrKind, "error", s.Err, "duration", s.Duration())
	case StateCancelled:
		logger.Infow("analysis cancelled", "duration", s.Duration())
	case StateCompleted:
		logger.Infow("analysis completed", "duration", s.Duration())
	default:
		logger.Debug("workflow transition")
	}
}

func withTimeout(ctx context.Context, cancel context.CancelFunc, timeout time.Duration) (context.Context, context.CancelFunc) {
	tctx, tcancel := context.WithTimeout(ctx, timeout)
	return tctx, func() {
		tcancel()
		cancel()
	}
}
