/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads connection and runtime settings from a YAML file, a .env
// file and DOCSTORE_* environment variables, in increasing precedence.
package config

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/richie6280/docstore/errors"
	"github.com/richie6280/docstore/storagemodels"
)

const (
	DefaultDriver    = "cosmos"
	DefaultDatabase  = "newDatabase"
	DefaultContainer = "newContainer"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Environment variables read by Load
const (
	EnvDriver     = "DOCSTORE_DRIVER"
	EnvEndpoint   = "DOCSTORE_ENDPOINT"
	EnvKey        = "DOCSTORE_KEY"
	EnvSecret     = "DOCSTORE_SECRET"
	EnvRegion     = "DOCSTORE_REGION"
	EnvDatabase   = "DOCSTORE_DATABASE"
	EnvContainer  = "DOCSTORE_CONTAINER"
	EnvCheckpoint = "DOCSTORE_CHECKPOINT"
	EnvLogLevel   = "DOCSTORE_LOG_LEVEL"
	EnvLogFormat  = "DOCSTORE_LOG_FORMAT"
)

// Config is the resolved runtime configuration
type Config struct {
	Connection storagemodels.Connection `yaml:"connection"`
	Database   string                   `yaml:"database"`
	Container  string                   `yaml:"container"`
	// Checkpoint is the change-feed checkpoint file; a ".db" or ".sqlite" suffix selects SQLite.
	Checkpoint string `yaml:"checkpoint"`
	Log        Log    `yaml:"log"`
}

// Log configures the logger
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in defaults
func Default() *Config {
	return &Config{
		Connection: storagemodels.Connection{Driver: DefaultDriver},
		Database:   DefaultDatabase,
		Container:  DefaultContainer,
		Log: Log{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load reads path (skipped when empty), then .env in the working directory when
// present, then DOCSTORE_* variables. Values already set in the environment win
// over .env entries. Callers apply their own overrides and then call Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		EnvDriver:     &c.Connection.Driver,
		EnvEndpoint:   &c.Connection.Endpoint,
		EnvKey:        &c.Connection.Key,
		EnvSecret:     &c.Connection.Secret,
		EnvRegion:     &c.Connection.Region,
		EnvDatabase:   &c.Database,
		EnvContainer:  &c.Container,
		EnvCheckpoint: &c.Checkpoint,
		EnvLogLevel:   &c.Log.Level,
		EnvLogFormat:  &c.Log.Format,
	}
	for name, target := range overrides {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*target = v
		}
	}
}

// Validate checks that the fields every command needs are present
func (c *Config) Validate() error {
	if c.Connection.Driver == "" {
		return errors.NewValidationError("driver", "driver is required")
	}
	if c.Database == "" {
		return errors.NewValidationError("database", "database id is required")
	}
	if c.Container == "" {
		return errors.NewValidationError("container", "container id is required")
	}
	return nil
}
