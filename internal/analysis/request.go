package analysis

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/pitchpilot/pitch-analyzer/internal/intake"
	"github.com/pitchpilot/pitch-analyzer/internal/validator"
)

// Multipart field names expected by the analysis service.
const (
	FieldFile        = "file"
	FieldTitle       = "pitch_title"
	FieldDescription = "description"
	FieldUserQuery   = "user_query"
)

var requestValidator = validator.NewValidator().Register(validator.NewAnalysisRequestValidationRules()...)

// Request is a submittable analysis request. Use Build to obtain one.
type Request struct {
	Document    *intake.Document `validate:"required"`
	Title       string           `validate:"notblank"`
	Description string
	// Focus is the free-text analysis focus. It is sent as user_query.
	Focus string `validate:"notblank"`
}

// Build assembles a request from the form state. It returns nil when the
// request is not submittable: no document, or a blank title or focus.
// The description may be empty. Build never modifies doc.
func Build(doc *intake.Document, title, description, focus string) *Request {
	req := &Request{
		Document:    doc,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Focus:       strings.TrimSpace(focus),
	}
	if err := req.Validate(); err != nil {
		return nil
	}
	return req
}

// Validate reports whether the request is submittable.
func (r *Request) Validate() error {
	if r == nil {
		return NewErrInvalidRequest("no request")
	}
	if err := requestValidator.Struct(r); err != nil {
		return &ErrInvalidRequest{error: err}
	}
	return nil
}

// Encode writes the request as a multipart form. The returned content type
// carries the multipart boundary.
func (r *Request) Encode() (io.Reader, string, error) {
	if err := r.Validate(); err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreatePart(filePartHeader(r.Document))
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(r.Document.Content); err != nil {
		return nil, "", fmt.Errorf("copying document into multipart: %w", err)
	}

	fields := []struct {
		name  string
		value string
	}{
		{FieldTitle, r.Title},
		{FieldDescription, r.Description},
		{FieldUserQuery, r.Focus},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", f.name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return &buf, mw.FormDataContentType(), nil
}

func filePartHeader(doc *intake.Document) textproto.MIMEHeader {
	contentType := string(doc.MediaType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FieldFile, escapeQuotes(doc.Name)))
	h.Set("Content-Type", contentType)
	return h
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
