package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/crawley/internal/config"
	"github.com/nao1215/crawley/internal/crawler"
	"github.com/nao1215/crawley/internal/database"
	"github.com/nao1215/crawley/internal/fetcher"
	"github.com/nao1215/crawley/internal/log"
	"github.com/nao1215/crawley/internal/transport"
	"github.com/nao1215/crawley/internal/validator"
	"github.com/nao1215/crawley/internal/visited"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed]",
		Short: "Crawl breadth-first from a seed URL",
		Long: `Crawl fetches the seed, then every queued link in breadth-first order,
until interrupted or until --max-pages pages have been fetched.

Examples:
  # Crawl from the default seed, appending to crawler-list.txt
  crawley crawl

  # Crawl from a different seed with four workers
  crawley crawl -w 4 https://example.com

  # Crawl through an embedded Tor daemon, without the journal
  crawley crawl --tor --no-journal

  # Skip URLs listed in an exclusion file
  MANUAL_EXCLUSIONS_FILE=exclusions.json crawley crawl`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}
	addCrawlFlags(cmd)
	return cmd
}

func addCrawlFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("seed", "s", config.DefaultSeed, "First URL of the crawl")
	f.StringP("output", "o", config.DefaultOutputPath, "Visited list file")
	f.StringP("user-agent", "u", config.DefaultUserAgent, "User-Agent header")
	f.String("user-agent-file", "", "Read the User-Agent from the first line of this file")
	f.DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each request")
	f.IntP("workers", "w", config.DefaultWorkers, "Number of concurrent fetches")
	f.Duration("delay", 0, "Pause before every fetch")
	f.Duration("idle-delay", config.DefaultIdleDelay, "Wait after a pass that fetched nothing")
	f.IntP("max-pages", "p", 0, "Stop after this many pages (0 = until interrupted)")
	f.Int64("max-body-size", config.DefaultMaxBodySize, "Largest response body accepted, in bytes")
	f.StringP("proxy", "x", "", "SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	f.Bool("tor", false, "Route requests through an embedded Tor daemon")
	f.DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout, "Timeout for embedded Tor startup")
	f.StringToString("header", nil, "Extra request header, as name=value (repeatable)")
	f.StringP("exclusions", "e", "", "Exclusion list file (default: $"+config.ExclusionsEnv+")")
	f.StringSlice("ignore", nil, "Glob pattern of URLs never queued (repeatable)")
	f.StringP("config", "c", "", "Configuration file path (default: .crawley in current or home directory)")
	f.String("db-dir", "", "Journal database directory (default: $XDG_DATA_HOME/crawley)")
	f.Bool("no-journal", false, "Do not record fetches in the journal database")
	f.String("log-file", config.DefaultLogFile, "Copy the log to this file (empty disables)")
	f.String("log-format", config.DefaultLogFormat, "Log record format: text or json")
}

func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Resolve(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	format, err := log.ParseFormat(cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	logger, closer, err := log.OpenFileLogger(cmd.ErrOrStderr(), cfg.LogFile, cfg.Verbose, format)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, stopping crawl...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cmd.OutOrStdout(), cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig layers defaults, the config file and explicitly set flags,
// in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.ApplyFile(file)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	stringFlags := map[string]*string{
		"seed":            &cfg.Seed,
		"output":          &cfg.OutputPath,
		"user-agent":      &cfg.UserAgent,
		"user-agent-file": &cfg.UserAgentFile,
		"proxy":           &cfg.ProxyAddress,
		"exclusions":      &cfg.ExclusionsFile,
		"db-dir":          &cfg.DBDir,
		"log-file":        &cfg.LogFile,
		"log-format":      &cfg.LogFormat,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	durationFlags := map[string]*time.Duration{
		"timeout":     &cfg.Timeout,
		"delay":       &cfg.Delay,
		"idle-delay":  &cfg.IdleDelay,
		"tor-timeout": &cfg.TorStartupTimeout,
	}
	for name, dst := range durationFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetDuration(name); err != nil {
			return nil, err
		}
	}

	intFlags := map[string]*int{
		"workers":   &cfg.Workers,
		"max-pages": &cfg.MaxPages,
	}
	for name, dst := range intFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetInt(name); err != nil {
			return nil, err
		}
	}

	if flags.Changed("max-body-size") {
		if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("tor") {
		if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
			return nil, err
		}
	}
	if cfg.NoJournal, err = flags.GetBool("no-journal"); err != nil {
		return nil, err
	}
	if flags.Changed("header") {
		headers, err := flags.GetStringToString("header")
		if err != nil {
			return nil, err
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			cfg.Headers[k] = v
		}
	}
	if flags.Changed("ignore") {
		patterns, err := flags.GetStringSlice("ignore")
		if err != nil {
			return nil, err
		}
		cfg.IgnorePatterns = append(cfg.IgnorePatterns, patterns...)
	}

	if len(args) > 0 {
		cfg.Seed = args[0]
	}
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// runCrawl wires the crawl components together and runs one session.
func runCrawl(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger) error {
	client, stopTor, err := newHTTPClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stopTor()

	record, err := visited.Open(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to open visited list: %w", err)
	}
	defer func() {
		if err := record.Close(); err != nil {
			logger.Error("failed to close visited list", "error", err)
		}
	}()

	v, err := validator.New(record,
		validator.WithExclusions(cfg.Exclusions),
		validator.WithIgnorePatterns(cfg.IgnorePatterns),
	)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	f := fetcher.New(client,
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithLogger(logger),
	)

	opts := []crawler.Option{
		crawler.WithWorkers(cfg.Workers),
		crawler.WithDelay(cfg.Delay),
		crawler.WithIdleDelay(cfg.IdleDelay),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithLogger(logger),
	}

	var (
		db      *database.CrawlDB
		journal *database.RunJournal
	)
	if !cfg.NoJournal {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer db.Close()

		run, err := db.StartRun(ctx, cfg.Seed)
		if err != nil {
			return fmt.Errorf("failed to start run: %w", err)
		}
		journal = db.Journal(run.ID)
		opts = append(opts, crawler.WithJournal(journal))
		logger.Debug("journal opened", "path", db.Path(), "run", run.ID)
	}

	session := crawler.NewSession(f, v, record, opts...)
	start := time.Now()
	runErr := session.Run(ctx, cfg.Seed)

	if journal != nil {
		if err := db.FinishRun(context.WithoutCancel(ctx), journal.RunID()); err != nil {
			logger.Error("failed to finish run", "run", journal.RunID(), "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	printStats(out, session.Stats(), time.Since(start))
	return nil
}

// newHTTPClient builds the client for the configured egress. The returned
// function stops the embedded Tor daemon, if one was started.
func newHTTPClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*http.Client, func(), error) {
	opts := transport.Options{
		Timeout:      cfg.Timeout,
		ProxyAddress: cfg.ProxyAddress,
		Headers:      cfg.Headers,
	}
	stop := func() {}

	switch {
	case cfg.UseTor:
		tor := transport.NewEmbeddedTor(transport.WithStartupTimeout(cfg.TorStartupTimeout))
		logger.Info("starting embedded Tor daemon (this may take a few minutes)...")
		if err := tor.Start(ctx); err != nil {
			return nil, stop, err
		}
		stop = func() {
			logger.Info("stopping embedded Tor daemon...")
			if err := tor.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}
		var err error
		if opts, err = tor.Options(opts); err != nil {
			stop()
			return nil, func() {}, err
		}
		logger.Info("embedded Tor ready", "socks", tor.SocksAddr())
	case cfg.ProxyAddress != "":
		if err := transport.CheckProxy(ctx, cfg.ProxyAddress); err != nil {
			return nil, stop, fmt.Errorf("proxy check failed (make sure a SOCKS5 proxy is running at %s): %w",
				cfg.ProxyAddress, err)
		}
	}

	client, err := transport.NewHTTPClient(opts)
	if err != nil {
		stop()
		return nil, func() {}, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return client, stop, nil
}

func printStats(out io.Writer, stats crawler.Stats, elapsed time.Duration) {
	failures := 0
	for _, n := range stats.Failures {
		failures += n
	}
	fmt.Fprintf(out, "Crawl stopped after %s\n", elapsed.Round(time.Second))
	fmt.Fprintf(out, "  visited:  %d\n", stats.Visited)
	fmt.Fprintf(out, "  attempts: %d\n", stats.Attempts)
	fmt.Fprintf(out, "  failures: %d\n", failures)
	fmt.Fprintf(out, "  frontier: %d\n", stats.Frontier)
}
