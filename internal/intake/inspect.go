package intake

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

type WarningCode string

const (
	WarningUnsupportedType WarningCode = "unsupported-type"
	WarningTooLarge        WarningCode = "too-large"
	WarningEmpty           WarningCode = "empty"
	WarningUnreadablePDF   WarningCode = "unreadable-pdf"
)

// Warning is an advisory finding about a selected document. Warnings are
// shown to the user but never prevent the selection.
type Warning struct {
	Code    WarningCode
	Message string
}

func (w Warning) String() string {
	return w.Message
}

// Validate returns the advisory warnings for d.
func Validate(d *Document) []Warning {
	if d == nil {
		return nil
	}

	warnings := []Warning{}
	if !IsValidType(d) {
		warnings = append(warnings, Warning{
			Code:    WarningUnsupportedType,
			Message: fmt.Sprintf("%s has unsupported type %q: supported types are PDF, PPTX, DOCX, TXT", d.Name, d.MediaType),
		})
	}
	if !IsWithinSizeLimit(d) {
		warnings = append(warnings, Warning{
			Code:    WarningTooLarge,
			Message: fmt.Sprintf("%s is %s: the maximum size is %s", d.Name, FormatSize(d.Size), FormatSize(MaxDocumentSize)),
		})
	}
	if d.Size == 0 {
		warnings = append(warnings, Warning{
			Code:    WarningEmpty,
			Message: fmt.Sprintf("%s is empty", d.Name),
		})
	}
	if normalize(d.MediaType) == MediaTypePDF && d.Size > 0 && d.PageCount == 0 {
		warnings = append(warnings, Warning{
			Code:    WarningUnreadablePDF,
			Message: fmt.Sprintf("%s could not be read as a PDF document", d.Name),
		})
	}

	return warnings
}

// DetectMediaType resolves the media type from the file extension and falls
// back to content sniffing for unknown extensions.
func DetectMediaType(name string, content []byte) MediaType {
	if mt, ok := MediaTypeFromExtension(name); ok {
		return mt
	}
	return normalize(MediaType(http.DetectContentType(content)))
}

// countPages returns the number of pages of a PDF document or 0 when pdfcpu
// cannot parse it.
func countPages(content []byte) int {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed

	pageCount, err := api.PageCount(bytes.NewReader(content), cfg)
	if err != nil {
		return 0
	}
	return pageCount
}

// inspect fills in the derived fields of a freshly read document.
func inspect(d *Document) {
	if normalize(d.MediaType) == MediaTypePDF && d.Size > 0 {
		d.PageCount = countPages(d.Content)
	}
}
