package report

import (
	"io"
	"time"

	"github.com/nao1215/crawley/internal/model"
)

// Writer renders journal data.
type Writer interface {
	// Write renders the summary of one run.
	Write(summary *model.RunSummary) (int, error)

	// WriteRuns renders a list of runs, newest first.
	WriteRuns(runs []model.Run) (int, error)

	// WriteFetches renders the fetch attempts of one run in order.
	WriteFetches(fetches []model.Fetch) (int, error)
}

// MultiWriter writes to several Writers in order and stops at the first
// error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders summary with every writer.
func (m *MultiWriter) Write(summary *model.RunSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteRuns renders runs with every writer.
func (m *MultiWriter) WriteRuns(runs []model.Run) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteRuns(runs)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteFetches renders fetches with every writer.
func (m *MultiWriter) WriteFetches(fetches []model.Fetch) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteFetches(fetches)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
	now    func() time.Time
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output, now: time.Now}
}

// timeLayout is used for every timestamp in text and Markdown output.
const timeLayout = "2006-01-02 15:04:05 MST"

func runStatus(run model.Run) string {
	if run.Finished() {
		return "finished"
	}
	return "running or interrupted"
}

func finishedAt(run model.Run) string {
	if run.FinishedAt == nil {
		return "-"
	}
	return run.FinishedAt.Format(timeLayout)
}

// failureRows returns reason name and count for every reason with failures,
// in reason order.
func failureRows(summary *model.RunSummary) [][2]string {
	var rows [][2]string
	for _, r := range model.Reasons {
		if n := summary.Failures[r]; n > 0 {
			rows = append(rows, [2]string{r.String(), itoa(n)})
		}
	}
	return rows
}

// fetchStatus is the HTTP status of f, or "-" when no response arrived.
func fetchStatus(f model.Fetch) string {
	if f.StatusCode == 0 {
		return "-"
	}
	return itoa(f.StatusCode)
}

// truncateString shortens s to maxLen bytes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
