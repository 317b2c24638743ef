package crawler

import "sync"

// Frontier is the ordered queue of URLs waiting to be fetched.
// It never holds an empty string or the same URL twice.
type Frontier struct {
	mu    sync.Mutex
	urls  []string
	index map[string]struct{}
}

// NewFrontier creates a Frontier holding urls in order.
func NewFrontier(urls ...string) *Frontier {
	f := &Frontier{index: make(map[string]struct{})}
	f.Append(urls...)
	return f
}

// Append adds the URLs that are neither empty nor already queued, keeping
// their order. It returns the number added.
func (f *Frontier) Append(urls ...string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	added := 0
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := f.index[u]; ok {
			continue
		}
		f.index[u] = struct{}{}
		f.urls = append(f.urls, u)
		added++
	}
	return added
}

// Remove deletes url and reports whether it was queued.
func (f *Frontier) Remove(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.index[url]; !ok {
		return false
	}
	delete(f.index, url)
	for i, u := range f.urls {
		if u == url {
			f.urls = append(f.urls[:i], f.urls[i+1:]...)
			break
		}
	}
	return true
}

// Filter keeps only the URLs for which keep returns true and returns the
// number dropped. keep must not call back into the Frontier.
func (f *Frontier) Filter(keep func(string) bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.urls[:0]
	dropped := 0
	for _, u := range f.urls {
		if keep(u) {
			kept = append(kept, u)
			continue
		}
		delete(f.index, u)
		dropped++
	}
	// Clear the tail so dropped strings can be collected.
	for i := len(kept); i < len(f.urls); i++ {
		f.urls[i] = ""
	}
	f.urls = kept
	return dropped
}

// Snapshot returns a copy of the queued URLs in order.
func (f *Frontier) Snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.urls))
	copy(out, f.urls)
	return out
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.urls)
}

// Contains reports whether url is queued.
func (f *Frontier) Contains(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.index[url]
	return ok
}
