package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/crawley/internal/model"
)

// SimpleWriter outputs plain text for terminals.
type SimpleWriter struct {
	baseWriter

	// verbose adds the most failing URLs and fetch errors.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose includes the most failing URLs.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to output.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary.
func (w *SimpleWriter) Write(summary *model.RunSummary) (int, error) {
	var sb strings.Builder

	rule := strings.Repeat("=", 70)
	sb.WriteString("\n" + rule + "\n")
	sb.WriteString("                           CRAWL REPORT\n")
	sb.WriteString(rule + "\n\n")

	run := summary.Run
	fmt.Fprintf(&sb, "Run:        #%d\n", run.ID)
	fmt.Fprintf(&sb, "Seed:       %s\n", run.Seed)
	fmt.Fprintf(&sb, "Started:    %s\n", run.StartedAt.Format(timeLayout))
	fmt.Fprintf(&sb, "Finished:   %s\n", finishedAt(run))
	fmt.Fprintf(&sb, "Duration:   %s\n", run.Duration(w.now()).Round(time.Second))
	fmt.Fprintf(&sb, "Status:     %s\n\n", runStatus(run))

	sb.WriteString(strings.Repeat("-", 70) + "\nFETCHES\n" + strings.Repeat("-", 70) + "\n\n")
	fmt.Fprintf(&sb, "  Attempts:         %d\n", summary.Attempts)
	fmt.Fprintf(&sb, "  Visited:          %d (%.1f%%)\n", summary.Visited, summary.SuccessRate()*100)
	fmt.Fprintf(&sb, "  Failed:           %d\n", summary.FailureCount())
	fmt.Fprintf(&sb, "  Links found:      %d\n", summary.LinksFound)
	fmt.Fprintf(&sb, "  Bytes read:       %d\n", summary.Bytes)
	fmt.Fprintf(&sb, "  Duplicate bodies: %d\n", summary.DuplicateBodies)
	fmt.Fprintf(&sb, "  Average fetch:    %s\n\n", summary.AverageElapsed)

	if rows := failureRows(summary); len(rows) > 0 {
		sb.WriteString("Failures by reason:\n")
		for _, row := range rows {
			fmt.Fprintf(&sb, "  %-8s %s\n", row[0], row[1])
		}
		sb.WriteString("\n")
	}

	if w.verbose && len(summary.TopFailing) > 0 {
		sb.WriteString("Most failing URLs:\n")
		for _, uc := range summary.TopFailing {
			fmt.Fprintf(&sb, "  %4d  %s\n", uc.Count, truncateString(uc.URL, 100))
		}
		sb.WriteString("\n")
	}

	return w.output.Write([]byte(sb.String()))
}

// WriteRuns outputs one line per run.
func (w *SimpleWriter) WriteRuns(runs []model.Run) (int, error) {
	var sb strings.Builder
	if len(runs) == 0 {
		sb.WriteString("No crawl runs recorded.\n")
		return w.output.Write([]byte(sb.String()))
	}
	fmt.Fprintf(&sb, "%-6s %-24s %-24s %s\n", "ID", "STARTED", "FINISHED", "SEED")
	for _, run := range runs {
		fmt.Fprintf(&sb, "%-6s %-24s %-24s %s\n",
			strconv.FormatInt(run.ID, 10), run.StartedAt.Format(timeLayout), finishedAt(run), run.Seed)
	}
	return w.output.Write([]byte(sb.String()))
}

// WriteFetches outputs one line per fetch attempt.
func (w *SimpleWriter) WriteFetches(fetches []model.Fetch) (int, error) {
	var sb strings.Builder
	if len(fetches) == 0 {
		sb.WriteString("No fetches recorded.\n")
		return w.output.Write([]byte(sb.String()))
	}
	fmt.Fprintf(&sb, "%-8s %-7s %-6s %-10s %-6s %s\n", "TIME", "RESULT", "STATUS", "BYTES", "LINKS", "URL")
	for _, f := range fetches {
		fmt.Fprintf(&sb, "%-8s %-7s %-6s %-10s %-6s %s\n",
			f.FetchedAt.Format("15:04:05"), f.Reason, fetchStatus(f), itoa(f.Bytes), itoa(f.LinksFound), f.URL)
		if w.verbose && f.Error != "" {
			fmt.Fprintf(&sb, "         %s\n", truncateString(f.Error, 120))
		}
	}
	return w.output.Write([]byte(sb.String()))
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
