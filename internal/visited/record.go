package visited

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// DefaultFileName is the output file used when no path is configured.
const DefaultFileName = "crawler-list.txt"

// ErrUnencodable is returned by Add for URLs that cannot be written as a
// single line of UTF-8 text.
var ErrUnencodable = errors.New("url cannot be encoded as a line of text")

// ErrClosed is returned by operations on a closed Record.
var ErrClosed = errors.New("visited record is closed")

// Record is the append-only set of accepted URLs, backed by a file.
// It is safe for concurrent use.
type Record struct {
	path string
	file *os.File

	mu   sync.RWMutex
	urls map[string]struct{}

	// size and modTime describe the file as of the last read or write,
	// so Refresh can skip re-reading an unchanged file.
	size    int64
	modTime time.Time
}

// Open truncates (or creates) the file at path and returns an empty Record.
func Open(path string) (*Record, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC|os.O_APPEND, 0600) //nolint:gosec // output path is user supplied
	if err != nil {
		return nil, fmt.Errorf("failed to open visited record: %w", err)
	}

	r := &Record{
		path: path,
		file: f,
		urls: make(map[string]struct{}),
	}
	r.stamp()

	return r, nil
}

// Path returns the path of the backing file.
func (r *Record) Path() string {
	return r.path
}

// Contains reports whether url has been recorded.
func (r *Record) Contains(url string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.urls[url]
	return ok
}

// Len returns the number of recorded URLs.
func (r *Record) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.urls)
}

// URLs returns the recorded URLs in no particular order.
func (r *Record) URLs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.urls))
	for u := range r.urls {
		out = append(out, u)
	}
	return out
}

// Add appends url to the file and syncs it before returning.
// Adding a URL that is already present is a no-op.
func (r *Record) Add(url string) error {
	if !Encodable(url) {
		return fmt.Errorf("%w: %q", ErrUnencodable, url)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return ErrClosed
	}
	if _, ok := r.urls[url]; ok {
		return nil
	}

	line := url + "\n"
	expected := r.size + int64(len(line))
	if _, err := r.file.WriteString(line); err != nil {
		return fmt.Errorf("failed to write visited record: %w", err)
	}
	if err := r.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync visited record: %w", err)
	}

	r.urls[url] = struct{}{}
	r.stamp()
	if r.size != expected {
		// Someone else wrote to the file too; make the next Refresh read it.
		r.size = -1
	}

	return nil
}

// Refresh re-reads the file if it changed since it was last read or
// written. The in-memory set is replaced by the file contents, so URLs
// removed from the file by someone else are forgotten.
func (r *Record) Refresh() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return ErrClosed
	}

	info, err := os.Stat(r.path)
	if err != nil {
		return fmt.Errorf("failed to stat visited record: %w", err)
	}
	if info.Size() == r.size && info.ModTime().Equal(r.modTime) {
		return nil
	}

	urls, err := readLines(r.path)
	if err != nil {
		return err
	}

	r.urls = urls
	r.size = info.Size()
	r.modTime = info.ModTime()

	return nil
}

// Close closes the backing file. The recorded set stays readable.
func (r *Record) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// stamp records the current size and mtime of the file. Callers hold mu.
func (r *Record) stamp() {
	if info, err := os.Stat(r.path); err == nil {
		r.size = info.Size()
		r.modTime = info.ModTime()
	}
}

// Encodable reports whether url can be stored as one line of the record.
func Encodable(url string) bool {
	return utf8.ValidString(url) && !strings.ContainsAny(url, "\r\n")
}

// readLines loads the non-empty lines of path into a set.
func readLines(path string) (map[string]struct{}, error) {
	f, err := os.Open(path) //nolint:gosec // output path is user supplied
	if err != nil {
		return nil, fmt.Errorf("failed to read visited record: %w", err)
	}
	defer f.Close()

	urls := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			urls[line] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read visited record: %w", err)
	}

	return urls, nil
}
