// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

// Package config provides process configuration for the mailforge CLI.
// Environment variables act as defaults that command line flags can still
// override, so containerized invocations do not need to repeat flags.
package config

import (
	"os"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix for all mailforge environment variables.
const EnvPrefix = "MAILFORGE"

// CLIConfig contains the process level settings of the mailforge CLI.
type CLIConfig struct {
	// Logging configuration.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Output is the path the manifest stream is written to, "-" for stdout.
	Output string `json:"output" yaml:"output"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `json:"level" yaml:"level"`
	// Encoding is the log encoding (json, console).
	Encoding string `json:"encoding" yaml:"encoding"`
	// Development enables development mode.
	Development bool `json:"development" yaml:"development"`
}

// DefaultCLIConfig returns a CLIConfig with sensible defaults.
func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		Logging: LoggingConfig{
			Level:       "info",
			Encoding:    "console",
			Development: false,
		},
		Output: "-",
	}
}

// EnvLoader loads configuration values from environment variables.
type EnvLoader struct {
	prefix string
}

// NewEnvLoader creates a new EnvLoader with the given prefix.
// Environment variables will be looked up as PREFIX_KEY
// (e.g., MAILFORGE_LOG_LEVEL).
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{prefix: strings.ToUpper(prefix)}
}

// GetString returns the string value for the given key, or the default if not set.
func (l *EnvLoader) GetString(key, defaultValue string) string {
	if value := os.Getenv(l.envKey(key)); value != "" {
		return value
	}
	return defaultValue
}

// GetBool returns the bool value for the given key, or the default if not set or invalid.
func (l *EnvLoader) GetBool(key string, defaultValue bool) bool {
	if value := os.Getenv(l.envKey(key)); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func (l *EnvLoader) envKey(key string) string {
	key = strings.ToUpper(key)
	key = strings.ReplaceAll(key, ".", "_")
	key = strings.ReplaceAll(key, "-", "_")
	if l.prefix != "" {
		return l.prefix + "_" + key
	}
	return key
}

// LoadCLIConfigFromEnv loads CLIConfig from environment variables.
func LoadCLIConfigFromEnv() CLIConfig {
	loader := NewEnvLoader(EnvPrefix)
	cfg := DefaultCLIConfig()

	cfg.Logging.Level = loader.GetString("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Encoding = loader.GetString("LOG_ENCODING", cfg.Logging.Encoding)
	cfg.Logging.Development = loader.GetBool("LOG_DEVELOPMENT", cfg.Logging.Development)

	cfg.Output = loader.GetString("OUTPUT", cfg.Output)

	return cfg
}
