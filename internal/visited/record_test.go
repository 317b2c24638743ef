package visited

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// openTestRecord opens a Record in a temporary directory.
func openTestRecord(t *testing.T) *Record {
	t.Helper()

	r, err := Open(filepath.Join(t.TempDir(), DefaultFileName))
	if err != nil {
		t.Fatalf("failed to open record: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// TestOpen tests record creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("truncates an existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "list.txt")
		if err := os.WriteFile(path, []byte("http://old.example.com\n"), 0600); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		r, err := Open(path)
		if err != nil {
			t.Fatalf("failed to open record: %v", err)
		}
		defer r.Close()

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if len(data) != 0 {
			t.Errorf("expected empty file, got %q", data)
		}
		if r.Len() != 0 {
			t.Errorf("expected empty record, got %d entries", r.Len())
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a", "b", "list.txt")
		r, err := Open(path)
		if err != nil {
			t.Fatalf("failed to open record: %v", err)
		}
		defer r.Close()

		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected file to exist: %v", err)
		}
		if r.Path() != path {
			t.Errorf("expected path %q, got %q", path, r.Path())
		}
	})
}

// TestRecordAdd tests appending URLs.
func TestRecordAdd(t *testing.T) {
	t.Parallel()

	t.Run("persists one URL per line", func(t *testing.T) {
		t.Parallel()

		r := openTestRecord(t)
		for _, u := range []string{"http://a.example.com", "http://b.example.com"} {
			if err := r.Add(u); err != nil {
				t.Fatalf("failed to add %q: %v", u, err)
			}
		}

		data, err := os.ReadFile(r.Path())
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		expected := "http://a.example.com\nhttp://b.example.com\n"
		if string(data) != expected {
			t.Errorf("got %q, expected %q", data, expected)
		}
		if !r.Contains("http://a.example.com") {
			t.Error("expected record to contain added URL")
		}
	})

	t.Run("duplicates are written once", func(t *testing.T) {
		t.Parallel()

		r := openTestRecord(t)
		for range 3 {
			if err := r.Add("http://a.example.com"); err != nil {
				t.Fatalf("failed to add: %v", err)
			}
		}

		data, err := os.ReadFile(r.Path())
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if string(data) != "http://a.example.com\n" {
			t.Errorf("unexpected content %q", data)
		}
	})

	t.Run("rejects unencodable URLs", func(t *testing.T) {
		t.Parallel()

		r := openTestRecord(t)
		for _, u := range []string{"http://a.example.com/\nx", "http://a.example.com/\r", "http://a.example.com/\xff"} {
			err := r.Add(u)
			if !errors.Is(err, ErrUnencodable) {
				t.Errorf("expected ErrUnencodable for %q, got %v", u, err)
			}
			if r.Contains(u) {
				t.Errorf("unencodable URL %q should not be recorded", u)
			}
		}
	})

	t.Run("fails after close", func(t *testing.T) {
		t.Parallel()

		r := openTestRecord(t)
		if err := r.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if err := r.Add("http://a.example.com"); !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
	})
}

// TestRecordRefresh tests re-reading the backing file.
func TestRecordRefresh(t *testing.T) {
	t.Parallel()

	t.Run("observes lines appended externally", func(t *testing.T) {
		t.Parallel()

		r := openTestRecord(t)
		if err := r.Add("http://a.example.com"); err != nil {
			t.Fatalf("add: %v", err)
		}

		f, err := os.OpenFile(r.Path(), os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if _, err := f.WriteString("http://external.example.com\n"); err != nil {
			t.Fatalf("write: %v", err)
		}
		_ = f.Close()

		if r.Contains("http://external.example.com") {
			t.Fatal("external URL visible before refresh")
		}
		if err := r.Refresh(); err != nil {
			t.Fatalf("refresh: %v", err)
		}

		got := r.URLs()
		sort.Strings(got)
		expected := []string{"http://a.example.com", "http://external.example.com"}
		if len(got) != len(expected) || got[0] != expected[0] || got[1] != expected[1] {
			t.Errorf("got %v, expected %v", got, expected)
		}
	})

	t.Run("observes external truncation", func(t *testing.T) {
		t.Parallel()

		r := openTestRecord(t)
		if err := r.Add("http://a.example.com"); err != nil {
			t.Fatalf("add: %v", err)
		}
		if err := os.Truncate(r.Path(), 0); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		if err := r.Refresh(); err != nil {
			t.Fatalf("refresh: %v", err)
		}
		if r.Contains("http://a.example.com") {
			t.Error("expected truncated URL to be forgotten")
		}
	})

	t.Run("external append before own add is picked up", func(t *testing.T) {
		t.Parallel()

		r := openTestRecord(t)
		f, err := os.OpenFile(r.Path(), os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if _, err := f.WriteString("http://external.example.com\n"); err != nil {
			t.Fatalf("write: %v", err)
		}
		_ = f.Close()

		if err := r.Add("http://own.example.com"); err != nil {
			t.Fatalf("add: %v", err)
		}
		if err := r.Refresh(); err != nil {
			t.Fatalf("refresh: %v", err)
		}
		if !r.Contains("http://external.example.com") || !r.Contains("http://own.example.com") {
			t.Errorf("expected both URLs after refresh, got %v", r.URLs())
		}
	})

	t.Run("keeps own writes when unchanged", func(t *testing.T) {
		t.Parallel()

		r := openTestRecord(t)
		if err := r.Add("http://a.example.com"); err != nil {
			t.Fatalf("add: %v", err)
		}
		if err := r.Refresh(); err != nil {
			t.Fatalf("refresh: %v", err)
		}
		if !r.Contains("http://a.example.com") {
			t.Error("expected own write to survive refresh")
		}
	})
}
