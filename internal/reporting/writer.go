// internal/reporting/writer.go
package reporting

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/JeeveshRajan/formscope/api/schemas"
)

// Writer serializes scan artifacts to a file or stdout.
type Writer struct {
	path   string
	logger *zap.Logger
}

// NewWriter creates a writer for the given output path. An empty path or
// "stdout" writes to standard output.
func NewWriter(path string, logger *zap.Logger) *Writer {
	return &Writer{path: path, logger: logger.Named("reporting")}
}

// WriteSchema emits the final form schema document.
func (w *Writer) WriteSchema(schema *schemas.FormSchema) error {
	if err := w.writeDocument(schema); err != nil {
		return fmt.Errorf("writing schema: %w", err)
	}
	w.logger.Info("Schema written",
		zap.String("path", w.destination()),
		zap.Int("steps", len(schema.Steps)),
		zap.Int("fields", schema.FieldCount()))
	return nil
}

// WriteError emits the fatal-run document in place of a schema.
func (w *Writer) WriteError(runErr error) error {
	doc := schemas.ErrorDocument{Error: runErr.Error()}
	if err := w.writeDocument(doc); err != nil {
		return fmt.Errorf("writing error document: %w", err)
	}
	return nil
}

func (w *Writer) destination() string {
	if w.path == "" || w.path == "stdout" {
		return "stdout"
	}
	return w.path
}

// writeDocument serializes v with two-space indentation and HTML escaping
// disabled, so every character round-trips verbatim.
func (w *Writer) writeDocument(v interface{}) error {
	var out io.Writer = os.Stdout
	if dest := w.destination(); dest != "stdout" {
		f, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("creating output file %s: %w", dest, err)
		}
		defer f.Close()
		out = f
	}

	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
