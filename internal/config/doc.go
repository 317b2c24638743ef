// Package config holds the crawler configuration: defaults, the optional
// YAML file, the exclusion list and the user agent source.
//
// Precedence, highest first: command line flags, the YAML file, defaults.
// The command layer applies flags after ApplyFile.
package config
