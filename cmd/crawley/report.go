package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/crawley/internal/config"
	"github.com/nao1215/crawley/internal/database"
	"github.com/nao1215/crawley/internal/report"
	"github.com/spf13/cobra"
)

// errNoRuns is returned when the journal holds no crawl runs.
var errNoRuns = errors.New("no crawl runs recorded")

// defaultRunListLimit bounds the --list output.
const defaultRunListLimit = 20

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize crawl runs from the journal",
		Long: `Report reads the crawl journal and summarizes one run: fetch counts,
failures by reason, duplicate bodies and the URLs that failed most often.

Examples:
  # Summarize the latest run
  crawley report

  # Summarize run 3 as Markdown into a file
  crawley report --run 3 --markdown -o reports/run3.md

  # List recent runs as JSON
  crawley report --list --json

  # Show every fetch of the latest run, with errors
  crawley report --fetches -v`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	cmd.Flags().Int64P("run", "r", 0, "Run ID to summarize (default: latest run)")
	cmd.Flags().BoolP("list", "l", false, "List recent runs instead of summarizing one")
	cmd.Flags().BoolP("fetches", "f", false, "List every fetch attempt of the run instead of summarizing it")
	cmd.Flags().IntP("limit", "n", defaultRunListLimit, "Maximum number of runs listed by --list")
	cmd.Flags().BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "", "Write the report to this file (creates directories if needed)")
	cmd.Flags().String("db-dir", "", "Journal database directory (default: $XDG_DATA_HOME/crawley)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
	cmd.MarkFlagsMutuallyExclusive("list", "fetches")

	return cmd
}

// reportOptions holds the parsed report flags.
type reportOptions struct {
	runID    int64
	list     bool
	fetches  bool
	limit    int
	json     bool
	markdown bool
	output   string
	dbDir    string
	verbose  bool
}

func parseReportOptions(cmd *cobra.Command) (*reportOptions, error) {
	flags := cmd.Flags()
	opts := &reportOptions{verbose: getVerboseFlag(cmd)}

	var err error
	if opts.runID, err = flags.GetInt64("run"); err != nil {
		return nil, err
	}
	if opts.list, err = flags.GetBool("list"); err != nil {
		return nil, err
	}
	if opts.fetches, err = flags.GetBool("fetches"); err != nil {
		return nil, err
	}
	if opts.limit, err = flags.GetInt("limit"); err != nil {
		return nil, err
	}
	if opts.json, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if opts.markdown, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if opts.output, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if opts.dbDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if opts.dbDir == "" {
		opts.dbDir = config.XDGDataDir()
	}
	return opts, nil
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	opts, err := parseReportOptions(cmd)
	if err != nil {
		return err
	}

	db, err := database.Open(opts.dbDir, database.ReadOnlyOptions())
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	if opts.output != "" {
		f, err := createReportFile(opts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return writeReport(cmd.Context(), db, out, opts)
}

func writeReport(ctx context.Context, db *database.CrawlDB, out io.Writer, opts *reportOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	w := newReportWriter(out, opts)

	if opts.list {
		runs, err := db.ListRuns(ctx, opts.limit)
		if err != nil {
			return err
		}
		_, err = w.WriteRuns(runs)
		return err
	}

	runID := opts.runID
	if runID == 0 {
		run, err := db.LatestRun(ctx)
		if err != nil {
			return err
		}
		if run == nil {
			return errNoRuns
		}
		runID = run.ID
	}

	if opts.fetches {
		fetches, err := db.ListFetches(ctx, runID)
		if err != nil {
			return err
		}
		if len(fetches) == 0 {
			// ListFetches cannot tell an unknown run from an empty one.
			if _, err := db.GetRun(ctx, runID); err != nil {
				return err
			}
		}
		_, err = w.WriteFetches(fetches)
		return err
	}

	summary, err := db.Summarize(ctx, runID)
	if err != nil {
		return err
	}
	_, err = w.Write(summary)
	return err
}

func newReportWriter(out io.Writer, opts *reportOptions) report.Writer {
	switch {
	case opts.json:
		return report.NewJSONWriter(out, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case opts.markdown:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(opts.verbose))
	}
}

// createReportFile creates path with owner-only permissions.
func createReportFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // output path is user supplied
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
