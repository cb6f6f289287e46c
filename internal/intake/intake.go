package intake

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Reader loads documents from the local file system.
type Reader struct {
	// rootDir is prepended to every path, useful for testing
	rootDir string
}

func NewReader() *Reader {
	return &Reader{}
}

// SetRootdir sets the root directory for the reader, useful for testing
func (r *Reader) SetRootdir(path string) {
	r.rootDir = path
}

func (r *Reader) PathFor(filePath string) string {
	return path.Join(r.rootDir, filePath)
}

// ReadDocument reads the file at filePath into a Document. Files larger than
// MaxDocumentSize are still read; the size warning is reported by Validate.
func (r *Reader) ReadDocument(filePath string) (*Document, error) {
	f, err := os.Open(r.PathFor(filePath))
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading document info: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%s is a directory", filePath)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading document contents: %w", err)
	}

	name := filepath.Base(filePath)
	doc := NewDocument(name, DetectMediaType(name, content), content)
	inspect(doc)

	return doc, nil
}

// Intake holds the single document currently selected by the user.
type Intake struct {
	lock     sync.Mutex
	reader   *Reader
	document *Document
	warnings []Warning
}

func New(reader *Reader) *Intake {
	if reader == nil {
		reader = NewReader()
	}
	return &Intake{reader: reader}
}

// SetDocument replaces the current document. Validation is advisory: an
// invalid document is still selected and the warnings are returned.
func (i *Intake) SetDocument(d *Document) []Warning {
	i.lock.Lock()
	defer i.lock.Unlock()

	i.document = d
	i.warnings = Validate(d)
	for _, w := range i.warnings {
		zap.S().Named("intake").Warnw("document selected with warning", "document", d.Name, "code", w.Code, "message", w.Message)
	}

	return i.warnings
}

func (i *Intake) Clear() {
	i.lock.Lock()
	defer i.lock.Unlock()

	i.document = nil
	i.warnings = nil
}

func (i *Intake) Document() *Document {
	i.lock.Lock()
	defer i.lock.Unlock()
	return i.document
}

func (i *Intake) Warnings() []Warning {
	i.lock.Lock()
	defer i.lock.Unlock()
	return append([]Warning(nil), i.warnings...)
}

// Browse selects the file at filePath.
func (i *Intake) Browse(filePath string) ([]Warning, error) {
	doc, err := i.reader.ReadDocument(filePath)
	if err != nil {
		return nil, err
	}
	return i.SetDocument(doc), nil
}

// Drop selects the first of the dropped files. Any further files are ignored.
func (i *Intake) Drop(filePaths ...string) ([]Warning, error) {
	if len(filePaths) == 0 {
		return nil, nil
	}
	if len(filePaths) > 1 {
		zap.S().Named("intake").Debugw("ignoring extra dropped files", "selected", filePaths[0], "ignored", len(filePaths)-1)
	}
	return i.Browse(filePaths[0])
}
