package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadUserAgentFile returns the first line of path, without the line ending.
func ReadUserAgentFile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return "", fmt.Errorf("failed to open user agent file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read user agent file: %w", err)
		}
		return "", ErrEmptyUserAgentFile
	}
	ua := strings.TrimRight(scanner.Text(), "\r")
	if strings.TrimSpace(ua) == "" {
		return "", ErrEmptyUserAgentFile
	}
	return ua, nil
}

// Resolve loads the external inputs referenced by c: the user agent file
// and the exclusion file. It is called once after flags are applied.
func (c *Config) Resolve() error {
	if c.UserAgentFile != "" {
		ua, err := ReadUserAgentFile(c.UserAgentFile)
		if err != nil {
			return err
		}
		c.UserAgent = ua
	}

	if c.ExclusionsFile == "" {
		c.ExclusionsFile = ExclusionsFileFromEnv()
	}
	exclusions, err := LoadExclusions(c.ExclusionsFile)
	if err != nil {
		return err
	}
	c.Exclusions = append(c.Exclusions, exclusions...)
	return nil
}
