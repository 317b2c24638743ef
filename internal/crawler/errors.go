package crawler

import "errors"

// ErrNoSeed is returned by Run when the seed URL is empty.
var ErrNoSeed = errors.New("seed URL is empty")

// ErrSessionRunning is returned by Run when the session is already running.
var ErrSessionRunning = errors.New("crawl session is already running")
