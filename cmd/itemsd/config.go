// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/z5labs/items/config"
)

// FileConfig is the layout of the file given to serve with --config.
// Every field is optional.
type FileConfig struct {
	HTTP      HTTPConfig      `yaml:"http" toml:"http" json:"http"`
	API       APIConfig       `yaml:"api" toml:"api" json:"api"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry" json:"telemetry"`
}

// HTTPConfig configures the HTTP server. Durations use [time.ParseDuration] syntax.
type HTTPConfig struct {
	Addr              string `yaml:"addr" toml:"addr" json:"addr"`
	ReadTimeout       string `yaml:"read_timeout" toml:"read_timeout" json:"read_timeout"`
	ReadHeaderTimeout string `yaml:"read_header_timeout" toml:"read_header_timeout" json:"read_header_timeout"`
	WriteTimeout      string `yaml:"write_timeout" toml:"write_timeout" json:"write_timeout"`
	IdleTimeout       string `yaml:"idle_timeout" toml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout   string `yaml:"shutdown_timeout" toml:"shutdown_timeout" json:"shutdown_timeout"`
}

// APIConfig configures the REST API.
type APIConfig struct {
	ProblemTypeBase string `yaml:"problem_type_base" toml:"problem_type_base" json:"problem_type_base"`
}

// TelemetryConfig configures the OpenTelemetry resource and local logging.
// LogLevels overrides LogLevel for a logger and every logger nested below it,
// e.g. "github.com/z5labs/items/rest".
type TelemetryConfig struct {
	ServiceName    string            `yaml:"service_name" toml:"service_name" json:"service_name"`
	ServiceVersion string            `yaml:"service_version" toml:"service_version" json:"service_version"`
	LogLevel       string            `yaml:"log_level" toml:"log_level" json:"log_level"`
	LogLevels      map[string]string `yaml:"log_levels" toml:"log_levels" json:"log_levels"`
}

// UnsupportedConfigFormatError is returned for a config file whose extension
// is not one of .yaml, .yml, .toml or .json.
type UnsupportedConfigFormatError struct {
	Path string
}

func (e UnsupportedConfigFormatError) Error() string {
	return fmt.Sprintf("unsupported config file format: %s", e.Path)
}

func readFileConfig(ctx context.Context, path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, nil
	}

	file := config.File(config.ReaderOf(path))

	var r config.Reader[FileConfig]
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		r = config.UnmarshalYAML[FileConfig](file)
	case ".toml":
		r = config.UnmarshalTOML[FileConfig](file)
	case ".json":
		r = config.UnmarshalJSON[FileConfig](file)
	default:
		return FileConfig{}, UnsupportedConfigFormatError{Path: path}
	}
	return config.Read(ctx, r)
}

// nonEmpty treats the zero string as unset.
func nonEmpty(s string) config.Reader[string] {
	if s == "" {
		return config.EmptyReader[string]()
	}
	return config.ReaderOf(s)
}

func durationOf(s string) config.Reader[time.Duration] {
	return config.DurationFromString(nonEmpty(s))
}
