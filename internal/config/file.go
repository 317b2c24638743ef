package config

import "time"

// File is the YAML configuration file. Zero values leave the
// corresponding Config field untouched.
type File struct {
	Seed           string            `yaml:"seed,omitempty"`
	Output         string            `yaml:"output,omitempty"`
	UserAgent      string            `yaml:"userAgent,omitempty"`
	UserAgentFile  string            `yaml:"userAgentFile,omitempty"`
	Timeout        time.Duration     `yaml:"timeout,omitempty"`
	Workers        int               `yaml:"workers,omitempty"`
	Delay          time.Duration     `yaml:"delay,omitempty"`
	IdleDelay      time.Duration     `yaml:"idleDelay,omitempty"`
	MaxPages       int               `yaml:"maxPages,omitempty"`
	MaxBodySize    int64             `yaml:"maxBodySize,omitempty"`
	Proxy          string            `yaml:"proxy,omitempty"`
	Tor            bool              `yaml:"tor,omitempty"`
	Headers        map[string]string `yaml:"headers,omitempty"`
	ExclusionsFile string            `yaml:"exclusionsFile,omitempty"`
	Exclusions     []string          `yaml:"exclusions,omitempty"`
	IgnorePatterns []string          `yaml:"ignorePatterns,omitempty"`
	DBDir          string            `yaml:"dbDir,omitempty"`
	LogFile        string            `yaml:"logFile,omitempty"`
	LogFormat      string            `yaml:"logFormat,omitempty"`
}

// ApplyFile copies the non-zero settings of f into c.
// Lists are appended, headers are merged with f taking precedence.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	setString(&c.Seed, f.Seed)
	setString(&c.OutputPath, f.Output)
	setString(&c.UserAgent, f.UserAgent)
	setString(&c.UserAgentFile, f.UserAgentFile)
	setString(&c.ProxyAddress, f.Proxy)
	setString(&c.ExclusionsFile, f.ExclusionsFile)
	setString(&c.DBDir, f.DBDir)
	setString(&c.LogFile, f.LogFile)
	setString(&c.LogFormat, f.LogFormat)

	if f.Timeout > 0 {
		c.Timeout = f.Timeout
	}
	if f.Workers > 0 {
		c.Workers = f.Workers
	}
	if f.Delay > 0 {
		c.Delay = f.Delay
	}
	if f.IdleDelay > 0 {
		c.IdleDelay = f.IdleDelay
	}
	if f.MaxPages > 0 {
		c.MaxPages = f.MaxPages
	}
	if f.MaxBodySize > 0 {
		c.MaxBodySize = f.MaxBodySize
	}
	if f.Tor {
		c.UseTor = true
	}

	if len(f.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(f.Headers))
		}
		for k, v := range f.Headers {
			c.Headers[k] = v
		}
	}
	c.Exclusions = append(c.Exclusions, f.Exclusions...)
	c.IgnorePatterns = append(c.IgnorePatterns, f.IgnorePatterns...)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
