package viewer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
	"github.com/pitchpilot/pitch-analyzer/internal/events"
	"github.com/pitchpilot/pitch-analyzer/internal/presenter"
	"github.com/pitchpilot/pitch-analyzer/internal/presenter/csv"
	"github.com/pitchpilot/pitch-analyzer/internal/presenter/html"
	"github.com/pitchpilot/pitch-analyzer/internal/store"
	"github.com/pitchpilot/pitch-analyzer/internal/store/model"
	"github.com/pitchpilot/pitch-analyzer/internal/transfer"
	"github.com/pitchpilot/pitch-analyzer/internal/validator"
	"github.com/pitchpilot/pitch-analyzer/pkg/metrics"
	"github.com/pitchpilot/pitch-analyzer/pkg/requestid"
	"go.uber.org/zap"
)

const (
	resultsPath = "/results"
	formatParam = "format"

	sourceData  = "data"
	sourceToken = "token"
	sourceNone  = "none"
)

var shareValidator = validator.NewValidator().Register(validator.NewShareValidationRules()...)

// Publisher receives viewer events. It is satisfied by events.EventProducer.
type Publisher interface {
	Write(ctx context.Context, kind string, body io.Reader) error
}

type Handler struct {
	store     store.Store
	baseURL   string
	shareTTL  time.Duration
	publisher Publisher
	renderers map[presenter.Format]presenter.Renderer
}

func NewHandler(s store.Store, baseURL string, shareTTL time.Duration, publisher Publisher) *Handler {
	h := &Handler{
		store:     s,
		baseURL:   strings.TrimRight(baseURL, "/"),
		shareTTL:  shareTTL,
		publisher: publisher,
		renderers: make(map[presenter.Format]presenter.Renderer),
	}
	for _, r := range []presenter.Renderer{html.NewRenderer(), csv.NewRenderer()} {
		h.renderers[r.SupportedFormat()] = r
	}
	return h
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	_ = render.Render(w, r, HealthReply{Status: "healthy"})
}

// GetResults renders the result carried by the data parameter, or the stored
// result referenced by the id parameter. A missing or unreadable result gives
// the empty page, never an error page.
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if token := query.Get(transfer.TokenParam); token != "" {
		h.renderShared(w, r, token)
		return
	}

	source := sourceData
	result, err := transfer.FromQuery(query)
	if err != nil {
		source = sourceNone
		result = nil
		zap.S().Named("viewer").Debugw("no result in results URL", "error", err, "request_id", requestid.FromRequest(r))
	}

	h.renderResult(w, r, source, result)
}

func (h *Handler) GetSharedResults(w http.ResponseWriter, r *http.Request) {
	h.renderShared(w, r, chi.URLParam(r, "token"))
}

func (h *Handler) renderShared(w http.ResponseWriter, r *http.Request, token string) {
	shared, err := h.lookup(r.Context(), token)
	if err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			zap.S().Named("viewer").Errorw("failed to read shared result", "token", token, "error", err)
		}
		h.renderResult(w, r, sourceNone, nil)
		return
	}

	result, err := shared.Result()
	if err != nil {
		zap.S().Named("viewer").Errorw("stored result is unreadable", "token", token, "error", err)
		h.renderResult(w, r, sourceNone, nil)
		return
	}

	metrics.UniqueResultViews.Record(token)
	h.renderResult(w, r, sourceToken, result)
}

func (h *Handler) renderResult(w http.ResponseWriter, r *http.Request, source string, result *analysis.Result) {
	if wantsJSON(r) {
		metrics.IncreaseResultsRenderedMetric(source, "json")
		if result == nil {
			h.renderError(w, r, http.StatusNotFound, presenter.EmptyMessage)
			return
		}
		_ = render.Render(w, r, ResultReply{Result: result})
		return
	}

	format := presenter.Format(r.URL.Query().Get(formatParam))
	renderer, ok := h.renderers[format]
	if !ok {
		format = presenter.FormatHTML
		renderer = h.renderers[format]
	}

	body, err := renderer.Render(presenter.Present(result))
	if err != nil {
		zap.S().Named("viewer").Errorw("failed to render results", "format", format, "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "failed to render results")
		return
	}

	metrics.IncreaseResultsRenderedMetric(source, string(format))

	switch format {
	case presenter.FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="pitch-analysis.csv"`)
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// Share stores a result under a new token and returns the results URL
// referencing it.
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if err := render.Bind(r, &req); err != nil {
		h.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	shared, err := model.NewSharedResult(uuid.NewString(), req.Title, req.Result, h.shareTTL)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.store.Results().Create(r.Context(), shared)
	if err != nil {
		zap.S().Named("viewer").Errorw("failed to store shared result", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "failed to store result")
		return
	}

	metrics.IncreaseSharedResultsMetric()
	publish(r.Context(), h.publisher, events.ShareMessageKind, events.ShareEvent{
		Token:     created.Token,
		Title:     created.Title,
		ExpiresAt: created.ExpiresAt,
		Timestamp: time.Now(),
	})

	zap.S().Named("viewer").Infow("result shared", "token", created.Token, "request_id", requestid.FromRequest(r))

	render.Status(r, http.StatusCreated)
	_ = render.Render(w, r, newShareReply(h.baseURL, *created))
}

func (h *Handler) ListShared(w http.ResponseWriter, r *http.Request) {
	filter := store.NewResultQueryFilter().Active(time.Now())
	if title := strings.TrimSpace(r.URL.Query().Get("title")); title != "" {
		filter = filter.ByTitle(title)
	}
	if since := r.URL.Query().Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			h.renderError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid since %q: expected RFC3339", since))
			return
		}
		filter = filter.CreatedAfter(t)
	}

	list, err := h.store.Results().List(r.Context(), filter, store.NewResultQueryOptions().WithSortOrder(store.SortByCreatedTime))
	if err != nil {
		zap.S().Named("viewer").Errorw("failed to list shared results", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "failed to list results")
		return
	}

	reply := ShareListReply{Results: make([]ShareReply, 0, len(list))}
	for _, s := range list {
		reply.Results = append(reply.Results, newShareReply(h.baseURL, s))
	}
	_ = render.Render(w, r, reply)
}

func (h *Handler) GetShared(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	shared, err := h.lookup(r.Context(), token)
	if err != nil {
		h.renderLookupError(w, r, token, err)
		return
	}

	result, err := shared.Result()
	if err != nil {
		zap.S().Named("viewer").Errorw("stored result is unreadable", "token", token, "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "stored result is unreadable")
		return
	}

	_ = render.Render(w, r, SharedResultReply{
		ShareReply: newShareReply(h.baseURL, *shared),
		Result:     result,
	})
}

func (h *Handler) DeleteShared(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := validateToken(token); err != nil {
		h.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Results().Delete(r.Context(), token); err != nil {
		h.renderLookupError(w, r, token, err)
		return
	}

	publish(r.Context(), h.publisher, events.DeleteMessageKind, events.DeleteEvent{Token: token, Timestamp: time.Now()})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) lookup(ctx context.Context, token string) (*model.SharedResult, error) {
	if err := validateToken(token); err != nil {
		return nil, store.ErrRecordNotFound
	}
	return h.store.Results().GetByToken(ctx, token)
}

func (h *Handler) renderLookupError(w http.ResponseWriter, r *http.Request, token string, err error) {
	if errors.Is(err, store.ErrRecordNotFound) {
		h.renderError(w, r, http.StatusNotFound, fmt.Sprintf("shared result %q not found", token))
		return
	}
	zap.S().Named("viewer").Errorw("failed to read shared result", "token", token, "error", err)
	h.renderError(w, r, http.StatusInternalServerError, "failed to read shared result")
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	_ = render.Render(w, r, ErrorReply{StatusCode: code, Message: msg, RequestID: requestid.FromRequest(r)})
}

func publish(ctx context.Context, p Publisher, kind string, event any) {
	if p == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		zap.S().Named("viewer").Warnw("failed to encode event", "kind", kind, "error", err)
		return
	}
	if err := p.Write(context.WithoutCancel(ctx), kind, bytes.NewReader(data)); err != nil {
		zap.S().Named("viewer").Warnw("failed to publish event", "kind", kind, "error", err)
	}
}

func resultsURL(baseURL, token string) string {
	return transfer.TokenURL(baseURL+resultsPath, token)
}

type tokenParam struct {
	Token string `validate:"share_token"`
}

func validateToken(token string) error {
	return shareValidator.Struct(tokenParam{Token: token})
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get(formatParam) == "json" {
		return true
	}
	return render.GetAcceptedContentType(r) == render.ContentTypeJSON
}
