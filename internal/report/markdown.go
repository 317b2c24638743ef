package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/crawley/internal/model"
)

// MarkdownWriter outputs GitHub flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the summary.
func (w *MarkdownWriter) Write(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeFetches(md, summary)
	w.writeFailures(md, summary)
	w.writeTopFailing(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.RunSummary) {
	run := summary.Run
	md.H1("Crawl Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run", "#" + strconv.FormatInt(run.ID, 10)},
			{"Seed", "`" + run.Seed + "`"},
			{"Started", run.StartedAt.Format(timeLayout)},
			{"Finished", finishedAt(run)},
			{"Duration", run.Duration(w.now()).Round(time.Second).String()},
			{"Status", runStatus(run)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFetches(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Fetches")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Attempts", itoa(summary.Attempts)},
			{"Visited", itoa(summary.Visited)},
			{"Failed", itoa(summary.FailureCount())},
			{"Success rate", strconv.FormatFloat(summary.SuccessRate()*100, 'f', 1, 64) + "%"},
			{"Links found", itoa(summary.LinksFound)},
			{"Bytes read", strconv.FormatInt(summary.Bytes, 10)},
			{"Duplicate bodies", itoa(summary.DuplicateBodies)},
			{"Average fetch", summary.AverageElapsed.String()},
		},
	})
	md.PlainText("")

	switch {
	case summary.Attempts == 0:
		md.Note("No fetches were recorded for this run.")
	case summary.Visited == 0:
		md.Cautionf("All %d fetch attempt(s) failed.", summary.Attempts)
	case summary.SuccessRate() < 0.5:
		md.Warningf("More than half of the fetches failed (%d of %d).", summary.FailureCount(), summary.Attempts)
	default:
		md.Tip("Most fetches succeeded.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, summary *model.RunSummary) {
	rows := failureRows(summary)
	if len(rows) == 0 {
		return
	}

	md.H2("Failures by Reason")
	md.PlainText("")
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{row[0], row[1]})
	}
	md.Table(markdown.TableSet{Header: []string{"Reason", "Count"}, Rows: table})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Failure Reasons"),
		piechart.WithShowData(true),
	)
	for _, r := range model.Reasons {
		if n := summary.Failures[r]; n > 0 {
			chart.LabelAndIntValue(r.String(), uint64(n))
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeTopFailing(md *markdown.Markdown, summary *model.RunSummary) {
	if len(summary.TopFailing) == 0 {
		return
	}
	md.H2("Most Failing URLs")
	md.PlainText("")
	rows := make([][]string, 0, len(summary.TopFailing))
	for _, uc := range summary.TopFailing {
		rows = append(rows, []string{"`" + truncateString(uc.URL, 80) + "`", itoa(uc.Count)})
	}
	md.Table(markdown.TableSet{Header: []string{"URL", "Failures"}, Rows: rows})
	md.PlainText("")
}

// WriteRuns outputs a table of runs.
func (w *MarkdownWriter) WriteRuns(runs []model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Crawl Runs")
	md.PlainText("")
	if len(runs) == 0 {
		md.Note("No crawl runs recorded.")
	} else {
		rows := make([][]string, 0, len(runs))
		for _, run := range runs {
			rows = append(rows, []string{
				strconv.FormatInt(run.ID, 10),
				run.StartedAt.Format(timeLayout),
				finishedAt(run),
				"`" + run.Seed + "`",
			})
		}
		md.Table(markdown.TableSet{Header: []string{"ID", "Started", "Finished", "Seed"}, Rows: rows})
	}
	return len(md.String()), md.Build()
}

// WriteFetches outputs a table of fetch attempts.
func (w *MarkdownWriter) WriteFetches(fetches []model.Fetch) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Fetches")
	md.PlainText("")
	if len(fetches) == 0 {
		md.Note("No fetches recorded.")
		return len(md.String()), md.Build()
	}
	rows := make([][]string, 0, len(fetches))
	for _, f := range fetches {
		rows = append(rows, []string{
			f.FetchedAt.Format(timeLayout),
			f.Reason.String(),
			fetchStatus(f),
			itoa(f.Bytes),
			itoa(f.LinksFound),
			"`" + f.URL + "`",
		})
	}
	md.Table(markdown.TableSet{Header: []string{"Time", "Result", "Status", "Bytes", "Links", "URL"}, Rows: rows})
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [crawley](https://github.com/nao1215/crawley)*")
}
