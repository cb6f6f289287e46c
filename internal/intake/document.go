package intake

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// MaxDocumentSize is the largest document accepted without a warning.
	// It is a usability guard only; the analysis service enforces its own limits.
	MaxDocumentSize int64 = 10 * 1024 * 1024
)

type MediaType string

const (
	MediaTypePDF  MediaType = "application/pdf"
	MediaTypePPTX MediaType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MediaTypeDOCX MediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeTXT  MediaType = "text/plain"
)

type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypePPTX FileType = "pptx"
	FileTypeDOCX FileType = "docx"
	FileTypeTXT  FileType = "txt"
)

var (
	fileTypes = map[FileType]MediaType{
		FileTypePDF:  MediaTypePDF,
		FileTypePPTX: MediaTypePPTX,
		FileTypeDOCX: MediaTypeDOCX,
		FileTypeTXT:  MediaTypeTXT,
	}

	// AcceptedExtensions lists the extensions offered by the file picker.
	AcceptedExtensions = []string{".pdf", ".pptx", ".docx", ".txt"}
)

// Document is a file selected for analysis. Content is held in memory; nothing
// is uploaded until the document is submitted.
type Document struct {
	Name      string
	Size      int64
	MediaType MediaType
	Content   []byte

	// PageCount is only set for PDF documents that could be parsed.
	PageCount int
}

func NewDocument(name string, mediaType MediaType, content []byte) *Document {
	return &Document{
		Name:      name,
		Size:      int64(len(content)),
		MediaType: mediaType,
		Content:   content,
	}
}

// FileType returns the short type name of the document or an empty string
// when its media type is not one we accept.
func (d *Document) FileType() FileType {
	for ft, mt := range fileTypes {
		if normalize(d.MediaType) == mt {
			return ft
		}
	}
	return ""
}

func (d *Document) String() string {
	return fmt.Sprintf("%s (%s, %s)", d.Name, d.MediaType, FormatSize(d.Size))
}

// IsValidType reports whether the document's declared media type is one of
// PDF, PPTX, DOCX or TXT.
func IsValidType(d *Document) bool {
	if d == nil {
		return false
	}
	return d.FileType() != ""
}

func IsWithinSizeLimit(d *Document) bool {
	if d == nil {
		return false
	}
	return d.Size <= MaxDocumentSize
}

// MediaTypeFromExtension maps a file name to its media type using the
// accepted extensions. ok is false for any other extension.
func MediaTypeFromExtension(name string) (MediaType, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	mt, ok := fileTypes[FileType(ext)]
	return mt, ok
}

func HasAcceptedExtension(name string) bool {
	_, ok := MediaTypeFromExtension(name)
	return ok
}

// FormatSize renders a byte count the way the upload form shows it,
// e.g. "1.5 MB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	const k = 1024
	sizes := []string{"Bytes", "KB", "MB", "GB"}
	value := float64(bytes)
	i := 0
	for value >= k && i < len(sizes)-1 {
		value /= k
		i++
	}
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", value), "0"), ".")
	return s + " " + sizes[i]
}

// normalize drops media type parameters such as "; charset=utf-8".
func normalize(mt MediaType) MediaType {
	s, _, _ := strings.Cut(string(mt), ";")
	return MediaType(strings.TrimSpace(strings.ToLower(s)))
}
