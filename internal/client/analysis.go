package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
	"github.com/pitchpilot/pitch-analyzer/pkg/requestid"
	"go.uber.org/zap"
)

const (
	analyzePath  = "/api/analyze"
	analysisPath = "/api/analysis/"
	healthPath   = "/health"
)

// RequestEditorFn is called on every outgoing request before it is sent.
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// AnalysisClient is an HTTP client for the pitch analysis service.
// It makes a single attempt per call and never retries.
type AnalysisClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	editors    []RequestEditorFn
}

type Option func(c *AnalysisClient)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *AnalysisClient) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds every call made by the client. Zero keeps the timeout
// of the HTTP client. The HTTP client passed with WithHTTPClient is never
// modified.
func WithTimeout(timeout time.Duration) Option {
	return func(c *AnalysisClient) {
		c.timeout = timeout
	}
}

func WithRequestEditorFn(fn RequestEditorFn) Option {
	return func(c *AnalysisClient) {
		c.editors = append(c.editors, fn)
	}
}

func NewAnalysisClient(baseURL string, opts ...Option) *AnalysisClient {
	c := &AnalysisClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: NewHTTPClient(),
	}
	c.editors = append(c.editors, setRequestID)

	for _, o := range opts {
		o(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// HealthStatus is the reply of the service health endpoint.
type HealthStatus struct {
	Status string `json:"status" yaml:"status"`
}

func (c *AnalysisClient) BaseURL() string {
	return c.baseURL
}

// Submit uploads the request and returns the analysis computed by the service.
func (c *AnalysisClient) Submit(ctx context.Context, req *analysis.Request) (*analysis.Result, error) {
	body, contentType, err := req.Encode()
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+analyzePath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	zap.S().Named("analysis_client").Debugw("submitting document", "document", req.Document.Name, "size", req.Document.Size, "title", req.Title)

	var result analysis.Result
	if err := c.do(ctx, httpReq, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAnalysis fetches a previously computed analysis.
func (c *AnalysisClient) GetAnalysis(ctx context.Context, id string) (*analysis.Result, error) {
	if strings.TrimSpace(id) == "" {
		return nil, analysis.NewErrInvalidRequest("analysis id is empty")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+analysisPath+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	var result analysis.Result
	if err := c.do(ctx, httpReq, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *AnalysisClient) Health(ctx context.Context) (*HealthStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var status HealthStatus
	if err := c.do(ctx, httpReq, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// do sends the request and decodes a successful JSON reply into out. On any
// error out must be discarded by the caller.
func (c *AnalysisClient) do(ctx context.Context, httpReq *http.Request, out any) error {
	for _, editor := range c.editors {
		if err := editor(ctx, httpReq); err != nil {
			return fmt.Errorf("failed to edit request: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return NewErrTransport(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewErrTransport(fmt.Errorf("failed to read response body: %w", err))
	}

	zap.S().Named("analysis_client").Debugw("response received",
		"method", httpReq.Method,
		"path", httpReq.URL.Path,
		"status", resp.StatusCode,
		"latency", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NewErrService(resp.StatusCode, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return NewErrDecode(err)
	}

	return nil
}

func setRequestID(ctx context.Context, req *http.Request) error {
	_, id := requestid.Ensure(ctx)
	req.Header.Set(requestid.Header, id)
	return nil
}
