package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/crawley/internal/model"
)

// JSONWriter outputs journal data as JSON.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string

	// version is embedded in summary documents when set.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output with the given prefix and indent.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the crawler version in summary documents.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to output.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport is the document written for a summary.
type JSONReport struct {
	Version     string            `json:"version,omitempty"`
	SuccessRate float64           `json:"success_rate"`
	Summary     *model.RunSummary `json:"summary"`
}

// Write outputs summary wrapped in a JSONReport.
func (w *JSONWriter) Write(summary *model.RunSummary) (int, error) {
	return w.writeJSON(&JSONReport{
		Version:     w.version,
		SuccessRate: summary.SuccessRate(),
		Summary:     summary,
	})
}

// WriteRuns outputs runs as a JSON array.
func (w *JSONWriter) WriteRuns(runs []model.Run) (int, error) {
	if runs == nil {
		runs = []model.Run{}
	}
	return w.writeJSON(runs)
}

// WriteFetches outputs fetches as a JSON array.
func (w *JSONWriter) WriteFetches(fetches []model.Fetch) (int, error) {
	if fetches == nil {
		fetches = []model.Fetch{}
	}
	return w.writeJSON(fetches)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
