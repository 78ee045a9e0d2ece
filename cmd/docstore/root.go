/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/richie6280/docstore"
	"github.com/richie6280/docstore/config"
	"github.com/richie6280/docstore/datastore"
	"github.com/richie6280/docstore/logging"
)

var rootCmd = &cobra.Command{
	Use:           "docstore",
	Short:         "Work with items in a document database container",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var (
	configPath string
	flagValues = map[string]*string{}
)

// persistent string flags and the config field each one overrides
var connectionFlags = []struct {
	name  string
	usage string
	apply func(cfg *config.Config, v string)
}{
	{"driver", "driver name (cosmos, dynamodb, memory)", func(c *config.Config, v string) { c.Connection.Driver = v }},
	{"endpoint", "service endpoint", func(c *config.Config, v string) { c.Connection.Endpoint = v }},
	{"key", "account key or AWS access key id", func(c *config.Config, v string) { c.Connection.Key = v }},
	{"secret", "AWS secret access key", func(c *config.Config, v string) { c.Connection.Secret = v }},
	{"region", "AWS region", func(c *config.Config, v string) { c.Connection.Region = v }},
	{"database", "database id", func(c *config.Config, v string) { c.Database = v }},
	{"container", "container id", func(c *config.Config, v string) { c.Container = v }},
	{"log-level", "log level", func(c *config.Config, v string) { c.Log.Level = v }},
	{"log-format", "log format (text, json)", func(c *config.Config, v string) { c.Log.Format = v }},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	for _, f := range connectionFlags {
		flagValues[f.name] = rootCmd.PersistentFlags().String(f.name, "", f.usage)
	}
}

// session is what every item command works with
type session struct {
	facade    *docstore.Facade
	container datastore.Container
	config    *config.Config
	logger    logrus.FieldLogger
}

func (s *session) Close() {
	if err := s.facade.Close(); err != nil {
		s.logger.WithError(err).Warn("failed to close client")
	}
}

// openFacade builds and initializes the facade for a command. Tests replace it to share a client.
var openFacade = func(cmd *cobra.Command, opts ...docstore.Option) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	f := docstore.New(append([]docstore.Option{docstore.WithLogger(logger)}, opts...)...)
	if err := f.Initialize(cmd.Context(), cfg.Connection); err != nil {
		return nil, err
	}
	return &session{facade: f, config: cfg, logger: logger}, nil
}

// openSession opens the facade and resolves the configured container, which must exist
func openSession(cmd *cobra.Command, opts ...docstore.Option) (*session, error) {
	s, err := openFacade(cmd, opts...)
	if err != nil {
		return nil, err
	}

	ct, ok, err := s.facade.ResolveContainer(cmd.Context(), s.config.Database, s.config.Container)
	if err != nil {
		s.Close()
		return nil, err
	}
	if !ok {
		s.Close()
		return nil, fmt.Errorf("container %s/%s does not exist; run docstore init", s.config.Database, s.config.Container)
	}
	s.container = ct
	return s, nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	for _, f := range connectionFlags {
		if cmd.Flags().Changed(f.name) {
			f.apply(cfg, *flagValues[f.name])
		}
	}
	return cfg, cfg.Validate()
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	cmd.Println(string(b))
	return nil
}

func printResult(cmd *cobra.Command, res docstore.Result) error {
	if res.Message != "" {
		cmd.Printf("%s: %s\n", res.Outcome, res.Message)
	} else {
		cmd.Println(res.Outcome.String())
	}
	if res.Item != nil && res.Written() {
		return printJSON(cmd, res.Item)
	}
	return nil
}
