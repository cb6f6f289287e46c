package viewer

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
	"github.com/pitchpilot/pitch-analyzer/internal/store/model"
)

// ShareRequest is the body of POST /api/results.
type ShareRequest struct {
	Title  string           `json:"title" validate:"max=256"`
	Result *analysis.Result `json:"result" validate:"required"`
}

func (s *ShareRequest) Bind(r *http.Request) error {
	s.Title = strings.TrimSpace(s.Title)
	if err := shareValidator.Struct(s); err != nil {
		return err
	}
	if s.Result.IsEmpty() {
		return errors.New("result carries no pitch, feedback or score")
	}
	return nil
}

type ShareReply struct {
	Token     string     `json:"token"`
	Title     string     `json:"title,omitempty"`
	URL       string     `json:"url"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func (s ShareReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func newShareReply(baseURL string, s model.SharedResult) ShareReply {
	return ShareReply{
		Token:     s.Token,
		Title:     s.Title,
		URL:       resultsURL(baseURL, s.Token),
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

type ShareListReply struct {
	Results []ShareReply `json:"results"`
}

func (s ShareListReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type SharedResultReply struct {
	ShareReply
	Result *analysis.Result `json:"result"`
}

func (s SharedResultReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type ResultReply struct {
	Result *analysis.Result `json:"result"`
}

func (s ResultReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type HealthReply struct {
	Status string `json:"status"`
}

func (s HealthReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type ErrorReply struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	RequestID  string `json:"requestId,omitempty"`
}

func (e ErrorReply) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}
