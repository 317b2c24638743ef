package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/crawley/internal/config"
	"github.com/nao1215/crawley/internal/database"
)

func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"seed", "s", config.DefaultSeed},
		{"output", "o", config.DefaultOutputPath},
		{"timeout", "t", config.DefaultTimeout.String()},
		{"workers", "w", "1"},
		{"max-pages", "p", "0"},
		{"proxy", "x", ""},
		{"tor", "", "false"},
		{"exclusions", "e", ""},
		{"config", "c", ""},
		{"no-journal", "", "false"},
		{"log-file", "", config.DefaultLogFile},
		{"log-format", "", config.DefaultLogFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("shorthand = %q, want %q", flag.Shorthand, tt.shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("default = %q, want %q", flag.DefValue, tt.defValue)
			}
		})
	}
}

// writeConfig writes a YAML config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crawley.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func parseCrawlConfig(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	cmd := NewCrawlCmd()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return buildConfig(cmd, cmd.Flags().Args())
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("file overrides defaults", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "seed: http://file.example\nworkers: 3\ntimeout: 5s\n")

		cfg, err := parseCrawlConfig(t, "-c", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Seed != "http://file.example" {
			t.Errorf("seed = %q", cfg.Seed)
		}
		if cfg.Workers != 3 {
			t.Errorf("workers = %d, want 3", cfg.Workers)
		}
		if cfg.Timeout != 5*time.Second {
			t.Errorf("timeout = %v, want 5s", cfg.Timeout)
		}
		if cfg.OutputPath != config.DefaultOutputPath {
			t.Errorf("output = %q, want default", cfg.OutputPath)
		}
	})

	t.Run("explicit flags override file", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "seed: http://file.example\nworkers: 3\n")

		cfg, err := parseCrawlConfig(t, "-c", path, "-w", "5", "--seed", "http://flag.example")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Workers != 5 {
			t.Errorf("workers = %d, want 5", cfg.Workers)
		}
		if cfg.Seed != "http://flag.example" {
			t.Errorf("seed = %q", cfg.Seed)
		}
	})

	t.Run("positional seed wins", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "seed: http://file.example\n")

		cfg, err := parseCrawlConfig(t, "-c", path, "--seed", "http://flag.example", "http://arg.example")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Seed != "http://arg.example" {
			t.Errorf("seed = %q, want positional argument", cfg.Seed)
		}
	})

	t.Run("headers and ignore patterns merge", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "headers:\n  Accept-Language: en\nignorePatterns:\n  - \"*/a/*\"\n")

		cfg, err := parseCrawlConfig(t, "-c", path, "--header", "X-Test=1", "--ignore", "*/b/*")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Headers["Accept-Language"] != "en" || cfg.Headers["X-Test"] != "1" {
			t.Errorf("headers = %v", cfg.Headers)
		}
		if len(cfg.IgnorePatterns) != 2 {
			t.Errorf("ignore patterns = %v, want 2 entries", cfg.IgnorePatterns)
		}
	})

	t.Run("log format from file and flag", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "logFormat: json\n")

		cfg, err := parseCrawlConfig(t, "-c", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.LogFormat != "json" {
			t.Errorf("log format = %q, want json from file", cfg.LogFormat)
		}

		cfg, err = parseCrawlConfig(t, "-c", path, "--log-format", "text")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.LogFormat != "text" {
			t.Errorf("log format = %q, want text from flag", cfg.LogFormat)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()
		_, err := parseCrawlConfig(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"))
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})
}

// newSite serves three pages that link to each other with absolute URLs.
func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch r.URL.Path {
		case "/":
			fmt.Fprintf(w, `<html><body><a href="%[1]s/a">a</a><a href="%[1]s/b">b</a></body></html>`, srv.URL)
		case "/a":
			fmt.Fprintf(w, `<html><body><a href="%[1]s/b">b</a><a href="%[1]s/">home</a></body></html>`, srv.URL)
		case "/b":
			fmt.Fprint(w, `<html><body>leaf</body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunCrawl(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	dir := t.TempDir()

	cfg := config.NewConfig()
	cfg.Seed = srv.URL + "/"
	cfg.OutputPath = filepath.Join(dir, "visited.txt")
	cfg.DBDir = filepath.Join(dir, "db")
	cfg.LogFile = ""
	cfg.Timeout = 5 * time.Second
	cfg.IdleDelay = 10 * time.Millisecond
	cfg.MaxPages = 3
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out := new(bytes.Buffer)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := runCrawl(ctx, out, cfg, logger); err != nil {
		t.Fatalf("runCrawl: %v", err)
	}

	if !strings.Contains(out.String(), "visited:  3") {
		t.Errorf("unexpected stats output:\n%s", out.String())
	}

	data, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{srv.URL + "/", srv.URL + "/a", srv.URL + "/b"}
	if len(lines) != len(want) {
		t.Fatalf("visited list = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}

	db, err := database.Open(cfg.DBDir, database.ReadOnlyOptions())
	if err != nil {
		t.Fatalf("journal not created: %v", err)
	}
	defer db.Close()

	run, err := db.LatestRun(ctx)
	if err != nil || run == nil {
		t.Fatalf("latest run = %v, %v", run, err)
	}
	if !run.Finished() {
		t.Error("expected run to be finished")
	}
	summary, err := db.Summarize(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Visited != 3 {
		t.Errorf("journal visited = %d, want 3", summary.Visited)
	}
}

func TestRunCrawlEmptiesVisitedList(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	dir := t.TempDir()
	output := filepath.Join(dir, "visited.txt")

	stale := "http://stale.example/\n" + srv.URL + "/a\n"
	if err := os.WriteFile(output, []byte(stale), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := config.NewConfig()
	cfg.Seed = srv.URL + "/"
	cfg.OutputPath = output
	cfg.NoJournal = true
	cfg.LogFile = ""
	cfg.Timeout = 5 * time.Second
	cfg.IdleDelay = 10 * time.Millisecond
	cfg.MaxPages = 3

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := runCrawl(ctx, io.Discard, cfg, logger); err != nil {
		t.Fatalf("runCrawl: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "stale.example") {
		t.Errorf("expected previous contents to be discarded, got:\n%s", data)
	}
	if got := strings.Count(string(data), srv.URL+"/a\n"); got != 1 {
		t.Errorf("/a recorded %d times, want 1", got)
	}
}
