package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers can match them with errors.Is.
var (
	// ErrNoSeed is returned when the seed URL is empty.
	ErrNoSeed = errors.New("no seed URL specified")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidDelay is returned when the delay between fetches is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidIdleDelay is returned when the idle delay is not positive.
	ErrInvalidIdleDelay = errors.New("invalid idle delay: must be positive")

	// ErrInvalidMaxPages is returned when the page limit is negative.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrNoOutput is returned when the visited record path is empty.
	ErrNoOutput = errors.New("no output file specified")

	// ErrConflictingProxy is returned when both an external proxy and the
	// embedded Tor daemon are requested.
	ErrConflictingProxy = errors.New("conflicting proxy settings: --proxy and --tor cannot be used together")

	// ErrInvalidLogFormat is returned when the log format is neither text
	// nor json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrEmptyUserAgentFile is returned when the user agent file has no
	// non-empty first line.
	ErrEmptyUserAgentFile = errors.New("user agent file is empty")
)
