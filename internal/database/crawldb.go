package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/crawley/internal/model"
)

// FileName is the database file created inside the journal directory.
const FileName = "crawley.db"

// topFailingLimit bounds RunSummary.TopFailing.
const topFailingLimit = 10

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("crawl run not found")

// CrawlDB is the crawl journal.
type CrawlDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if needed.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the crawl command.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// ReadOnlyOptions opens an existing journal without creating it.
func ReadOnlyOptions() Options {
	return Options{}
}

// Open opens or creates the journal in dbDir.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

func (cdb *CrawlDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT
	);

	CREATE TABLE IF NOT EXISTS fetches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		url TEXT NOT NULL,
		reason TEXT NOT NULL,
		status_code INTEGER NOT NULL DEFAULT 0,
		content_type TEXT NOT NULL DEFAULT '',
		charset TEXT NOT NULL DEFAULT '',
		bytes INTEGER NOT NULL DEFAULT 0,
		links_found INTEGER NOT NULL DEFAULT 0,
		digest TEXT NOT NULL DEFAULT '',
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		fetched_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_fetches_run ON fetches(run_id);
	CREATE INDEX IF NOT EXISTS idx_fetches_url ON fetches(url);
	CREATE INDEX IF NOT EXISTS idx_fetches_reason ON fetches(run_id, reason);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// NewFetchRecord converts an outcome into a record of run runID.
func NewFetchRecord(runID int64, out model.Outcome, linksFound int) *model.Fetch {
	rec := &model.Fetch{
		RunID:       runID,
		URL:         out.URL,
		Reason:      out.Reason,
		StatusCode:  out.StatusCode,
		ContentType: out.ContentType,
		Charset:     out.Charset,
		Bytes:       out.RawSize,
		LinksFound:  linksFound,
		Digest:      out.Digest,
		Elapsed:     out.Elapsed,
		FetchedAt:   time.Now().UTC(),
	}
	if out.Err != nil {
		rec.Error = out.Err.Error()
	}
	return rec
}

// StartRun opens a new run for seed.
func (cdb *CrawlDB) StartRun(ctx context.Context, seed string) (*model.Run, error) {
	now := time.Now().UTC()
	result, err := cdb.db.ExecContext(ctx,
		`INSERT INTO runs (seed, started_at) VALUES (?, ?)`,
		seed, formatTimestamp(now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get run id: %w", err)
	}
	return &model.Run{ID: id, Seed: seed, StartedAt: now}, nil
}

// FinishRun closes run id.
func (cdb *CrawlDB) FinishRun(ctx context.Context, id int64) error {
	result, err := cdb.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		formatTimestamp(time.Now().UTC()), id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	return nil
}

// RecordFetch stores one fetch attempt.
func (cdb *CrawlDB) RecordFetch(ctx context.Context, rec *model.Fetch) error {
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = time.Now().UTC()
	}
	result, err := cdb.db.ExecContext(ctx, `
	INSERT INTO fetches (run_id, url, reason, status_code, content_type, charset, bytes,
		links_found, digest, elapsed_ms, error, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.URL, rec.Reason.String(), rec.StatusCode, rec.ContentType, rec.Charset,
		rec.Bytes, rec.LinksFound, rec.Digest, rec.Elapsed.Milliseconds(), rec.Error,
		formatTimestamp(rec.FetchedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}
	rec.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get fetch id: %w", err)
	}
	return nil
}

// ListFetches returns the fetches of run runID in insertion order.
func (cdb *CrawlDB) ListFetches(ctx context.Context, runID int64) ([]model.Fetch, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT id, run_id, url, reason, status_code, content_type, charset, bytes,
		links_found, digest, elapsed_ms, error, fetched_at
	FROM fetches WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fetches: %w", err)
	}
	defer rows.Close()

	var records []model.Fetch
	for rows.Next() {
		var (
			rec       model.Fetch
			reason    string
			elapsedMS int64
			fetchedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.URL, &reason, &rec.StatusCode,
			&rec.ContentType, &rec.Charset, &rec.Bytes, &rec.LinksFound, &rec.Digest,
			&elapsedMS, &rec.Error, &fetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fetch: %w", err)
		}
		if rec.Reason, err = model.ParseReason(reason); err != nil {
			return nil, err
		}
		rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		rec.FetchedAt = parseTimestamp(fetchedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetRun returns run id, or ErrRunNotFound.
func (cdb *CrawlDB) GetRun(ctx context.Context, id int64) (*model.Run, error) {
	row := cdb.db.QueryRowContext(ctx,
		`SELECT id, seed, started_at, finished_at FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	return run, err
}

// LatestRun returns the most recent run, or nil when the journal is empty.
func (cdb *CrawlDB) LatestRun(ctx context.Context) (*model.Run, error) {
	row := cdb.db.QueryRowContext(ctx,
		`SELECT id, seed, started_at, finished_at FROM runs ORDER BY id DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (cdb *CrawlDB) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := cdb.db.QueryContext(ctx,
		`SELECT id, seed, started_at, finished_at FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Summarize aggregates the fetches of run runID.
func (cdb *CrawlDB) Summarize(ctx context.Context, runID int64) (*model.RunSummary, error) {
	run, err := cdb.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	summary := &model.RunSummary{
		Run:      *run,
		Failures: make(map[model.Reason]int),
	}

	var (
		bytes      sql.NullInt64
		links      sql.NullInt64
		avgElapsed sql.NullFloat64
	)
	err = cdb.db.QueryRowContext(ctx, `
	SELECT COUNT(*),
		SUM(CASE WHEN reason = 'OK' THEN bytes ELSE 0 END),
		SUM(links_found),
		AVG(elapsed_ms)
	FROM fetches WHERE run_id = ?`, runID).Scan(&summary.Attempts, &bytes, &links, &avgElapsed)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize run: %w", err)
	}
	summary.Bytes = bytes.Int64
	summary.LinksFound = int(links.Int64)
	summary.AverageElapsed = time.Duration(avgElapsed.Float64 * float64(time.Millisecond))

	if err := cdb.countReasons(ctx, runID, summary); err != nil {
		return nil, err
	}

	err = cdb.db.QueryRowContext(ctx, `
	SELECT COUNT(*) - COUNT(DISTINCT digest)
	FROM fetches WHERE run_id = ? AND reason = 'OK' AND digest != ''`, runID).Scan(&summary.DuplicateBodies)
	if err != nil {
		return nil, fmt.Errorf("failed to count duplicate bodies: %w", err)
	}

	summary.TopFailing, err = cdb.topFailing(ctx, runID)
	if err != nil {
		return nil, err
	}

	return summary, nil
}

func (cdb *CrawlDB) countReasons(ctx context.Context, runID int64, summary *model.RunSummary) error {
	rows, err := cdb.db.QueryContext(ctx,
		`SELECT reason, COUNT(*) FROM fetches WHERE run_id = ? GROUP BY reason`, runID)
	if err != nil {
		return fmt.Errorf("failed to count reasons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name  string
			count int
		)
		if err := rows.Scan(&name, &count); err != nil {
			return fmt.Errorf("failed to scan reason count: %w", err)
		}
		reason, err := model.ParseReason(name)
		if err != nil {
			return err
		}
		if reason.IsFailure() {
			summary.Failures[reason] = count
		} else {
			summary.Visited = count
		}
	}
	return rows.Err()
}

func (cdb *CrawlDB) topFailing(ctx context.Context, runID int64) ([]model.URLCount, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT url, COUNT(*) AS n FROM fetches
	WHERE run_id = ? AND reason != 'OK'
	GROUP BY url ORDER BY n DESC, url LIMIT ?`, runID, topFailingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list failing urls: %w", err)
	}
	defer rows.Close()

	var out []model.URLCount
	for rows.Next() {
		var uc model.URLCount
		if err := rows.Scan(&uc.URL, &uc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan failing url: %w", err)
		}
		out = append(out, uc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.Run, error) {
	var (
		run       model.Run
		startedAt string
		finished  sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Seed, &startedAt, &finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.StartedAt = parseTimestamp(startedAt)
	if finished.Valid {
		t := parseTimestamp(finished.String)
		run.FinishedAt = &t
	}
	return &run, nil
}

// timestampFormats are tried in order by parseTimestamp.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
	"2006-01-02T15:04:05",
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
