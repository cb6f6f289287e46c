package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
	"go.uber.org/zap"
)

const sharePath = "/api/results"

// SharedResult is the viewer reply to a share request.
type SharedResult struct {
	Token     string     `json:"token" yaml:"token"`
	Title     string     `json:"title,omitempty" yaml:"title,omitempty"`
	URL       string     `json:"url" yaml:"url"`
	CreatedAt time.Time  `json:"createdAt" yaml:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
}

type shareRequest struct {
	Title  string           `json:"title,omitempty"`
	Result *analysis.Result `json:"result"`
}

// ResultsClient talks to the results viewer. It shares the transport and
// error types of AnalysisClient.
type ResultsClient struct {
	inner *AnalysisClient
	title string
}

// NewResultsClient returns a client for the viewer at baseURL, the part
// before /results.
func NewResultsClient(baseURL string, opts ...Option) *ResultsClient {
	return &ResultsClient{inner: NewAnalysisClient(baseURL, opts...)}
}

// WithTitle returns a copy of the client that labels shared results with title.
func (c *ResultsClient) WithTitle(title string) *ResultsClient {
	return &ResultsClient{inner: c.inner, title: title}
}

// Share stores result in the viewer and returns its token.
func (c *ResultsClient) Share(ctx context.Context, result *analysis.Result) (string, error) {
	shared, err := c.ShareResult(ctx, result)
	if err != nil {
		return "", err
	}
	return shared.Token, nil
}

func (c *ResultsClient) ShareResult(ctx context.Context, result *analysis.Result) (*SharedResult, error) {
	if result.IsEmpty() {
		return nil, analysis.NewErrInvalidRequest("no result to share")
	}

	body, err := json.Marshal(shareRequest{Title: c.title, Result: result})
	if err != nil {
		return nil, fmt.Errorf("failed to encode share request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.inner.baseURL+sharePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	var shared SharedResult
	if err := c.inner.do(ctx, httpReq, &shared); err != nil {
		return nil, err
	}
	zap.S().Named("results_client").Debugw("result shared", "token", shared.Token)
	return &shared, nil
}

type sharedResultReply struct {
	SharedResult
	Result *analysis.Result `json:"result"`
}

// GetShared reads back a shared result by token.
func (c *ResultsClient) GetShared(ctx context.Context, token string) (*analysis.Result, error) {
	if strings.TrimSpace(token) == "" {
		return nil, analysis.NewErrInvalidRequest("share token is empty")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.inner.baseURL+sharePath+"/"+token, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	var reply sharedResultReply
	if err := c.inner.do(ctx, httpReq, &reply); err != nil {
		return nil, err
	}
	return reply.Result, nil
}
