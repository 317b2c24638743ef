package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "crawley"

	// DefaultSeed is the directory site the crawl starts from.
	DefaultSeed = "http://dmoz-odp.org"

	// DefaultOutputPath is the visited record, truncated on every run.
	DefaultOutputPath = "crawler-list.txt"

	// DefaultLogFile receives a copy of the log output.
	DefaultLogFile = "log.txt"

	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_9_3) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/35.0.1916.47 Safari/537.36"

	// DefaultTimeout bounds one fetch, body included.
	DefaultTimeout = 30 * time.Second

	// DefaultWorkers of 1 keeps the crawl sequential in frontier order.
	DefaultWorkers = 1

	// DefaultIdleDelay is the wait after a pass that fetched nothing.
	DefaultIdleDelay = 5 * time.Second

	// DefaultMaxBodySize limits how much of a response is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultLogFormat is the log record encoding.
	DefaultLogFormat = "text"

	// ExclusionsEnv names the environment variable holding the path of the
	// exclusion list.
	ExclusionsEnv = "MANUAL_EXCLUSIONS_FILE"
)

// Config holds every option of a crawl. It is populated from defaults, the
// config file and flags, then passed down explicitly.
type Config struct {
	// Seed is the first URL fetched. It is not validated.
	Seed string

	// OutputPath is the visited record file.
	OutputPath string

	// UserAgent is the literal User-Agent header.
	UserAgent string

	// UserAgentFile, when set, replaces UserAgent with the first line of
	// the file.
	UserAgentFile string

	// Timeout bounds one fetch.
	Timeout time.Duration

	// Workers is the number of concurrent fetches.
	Workers int

	// Delay is a pause before each fetch. Zero disables it.
	Delay time.Duration

	// IdleDelay is the wait after a pass that made no progress.
	IdleDelay time.Duration

	// MaxPages stops the crawl after this many successful fetches.
	// Zero means the crawl runs until interrupted.
	MaxPages int

	// MaxBodySize limits response bodies in bytes.
	MaxBodySize int64

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and routes the crawl through it.
	UseTor bool

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// Headers are extra request headers.
	Headers map[string]string

	// ExclusionsFile is the JSON exclusion list. Defaults to the value of
	// MANUAL_EXCLUSIONS_FILE.
	ExclusionsFile string

	// Exclusions are the substrings loaded from ExclusionsFile plus any
	// listed in the config file.
	Exclusions []string

	// IgnorePatterns are glob patterns of URLs never queued.
	IgnorePatterns []string

	// DBDir is the directory of the crawl journal database.
	DBDir string

	// NoJournal disables the crawl journal.
	NoJournal bool

	// LogFile receives a copy of the log. Empty disables it.
	LogFile string

	// LogFormat is "text" or "json".
	LogFormat string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is an explicit config file path.
	ConfigFilePath string
}

// NewConfig returns a Config with defaults applied.
func NewConfig() *Config {
	return &Config{
		Seed:              DefaultSeed,
		OutputPath:        DefaultOutputPath,
		UserAgent:         DefaultUserAgent,
		Timeout:           DefaultTimeout,
		Workers:           DefaultWorkers,
		IdleDelay:         DefaultIdleDelay,
		MaxBodySize:       DefaultMaxBodySize,
		TorStartupTimeout: DefaultTorStartupTimeout,
		DBDir:             XDGDataDir(),
		LogFile:           DefaultLogFile,
		LogFormat:         DefaultLogFormat,
	}
}

// XDGDataDir returns the data directory, e.g. ~/.local/share/crawley.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the config directory, e.g. ~/.config/crawley.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate returns the first invalid setting found.
func (c *Config) Validate() error {
	if c.Seed == "" {
		return ErrNoSeed
	}
	if c.OutputPath == "" {
		return ErrNoOutput
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.IdleDelay <= 0 {
		return ErrInvalidIdleDelay
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.UseTor && c.ProxyAddress != "" {
		return ErrConflictingProxy
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return ErrInvalidLogFormat
	}
	return nil
}
