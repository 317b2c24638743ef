package crawler

import (
	"slices"
	"strings"
	"testing"
)

// TestFrontier tests the queue operations.
func TestFrontier(t *testing.T) {
	t.Parallel()

	t.Run("append skips empty and duplicates", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("http://a.example")
		added := f.Append("http://b.example", "", "http://a.example", "http://b.example", "http://c.example")
		if added != 2 {
			t.Errorf("expected 2 added, got %d", added)
		}
		want := []string{"http://a.example", "http://b.example", "http://c.example"}
		if got := f.Snapshot(); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("remove keeps order", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("1", "2", "3")
		if !f.Remove("2") {
			t.Error("expected 2 to be removed")
		}
		if f.Remove("2") {
			t.Error("expected second remove to report false")
		}
		if got := f.Snapshot(); !slices.Equal(got, []string{"1", "3"}) {
			t.Errorf("unexpected frontier %v", got)
		}
		if f.Contains("2") {
			t.Error("removed url still reported as contained")
		}
	})

	t.Run("filter drops consecutive rejects", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("keep1", "drop1", "drop2", "keep2", "drop3")
		dropped := f.Filter(func(u string) bool { return strings.HasPrefix(u, "keep") })
		if dropped != 3 {
			t.Errorf("expected 3 dropped, got %d", dropped)
		}
		if got := f.Snapshot(); !slices.Equal(got, []string{"keep1", "keep2"}) {
			t.Errorf("unexpected frontier %v", got)
		}
		if f.Len() != 2 {
			t.Errorf("expected len 2, got %d", f.Len())
		}
		// A dropped url can be queued again.
		if f.Append("drop1") != 1 {
			t.Error("expected dropped url to be appendable")
		}
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("x")
		snap := f.Snapshot()
		snap[0] = "y"
		if !f.Contains("x") || f.Snapshot()[0] != "x" {
			t.Error("snapshot mutation leaked into frontier")
		}
	})
}
