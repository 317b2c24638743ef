package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// exclusionList is the on-disk shape of the exclusion file:
//
//	{"no_scan": ["spamdomain", "ads."]}
type exclusionList struct {
	NoScan []string `json:"no_scan"`
}

// LoadExclusions reads the substrings of a JSON exclusion file.
// An empty path yields no exclusions.
func LoadExclusions(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read exclusion file: %w", err)
	}

	var list exclusionList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse exclusion file %s: %w", path, err)
	}
	return list.NoScan, nil
}

// ExclusionsFileFromEnv returns the exclusion file named by
// MANUAL_EXCLUSIONS_FILE.
func ExclusionsFileFromEnv() string {
	return os.Getenv(ExclusionsEnv)
}
