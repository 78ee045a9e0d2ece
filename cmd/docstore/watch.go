/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/richie6280/docstore"
	"github.com/richie6280/docstore/checkpoint"
	"github.com/richie6280/docstore/storagemodels"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream created and updated items from the change feed",
	Long: `Poll the container's change feed and print each changed item as a JSON line.
Progress is checkpointed under the lease so a restarted watch resumes where it
stopped. A checkpoint path ending in .db or .sqlite uses SQLite, any other path a
JSON file; without one, progress is kept in memory only.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchCheckpoint string
	watchLease      string
	watchInterval   time.Duration
	watchBatches    int
)

func init() {
	watchCmd.Flags().StringVar(&watchCheckpoint, "checkpoint", "", "Checkpoint file (overrides config)")
	watchCmd.Flags().StringVar(&watchLease, "lease", "", "Checkpoint name (default database/container)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Second, "Poll interval when the feed is idle")
	watchCmd.Flags().IntVar(&watchBatches, "batches", 0, "Stop after this many batches (0 runs until interrupted)")
	rootCmd.AddCommand(watchCmd)
}

// openCheckpointStore picks the store implementation from the path's extension
func openCheckpointStore(path string) (checkpoint.Store, error) {
	if path == "" {
		return checkpoint.NewMemoryStore(), nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return checkpoint.NewSQLiteStore(path)
	}
	return checkpoint.NewFileStore(path)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := cfg.Checkpoint
	if watchCheckpoint != "" {
		path = watchCheckpoint
	}
	store, err := openCheckpointStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	s, err := openSession(cmd, docstore.WithCheckpointStore(store))
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub, err := s.facade.ChangeFeedSubscribe(ctx, s.config.Database, s.config.Container,
		storagemodels.WithLease(watchLease),
		storagemodels.WithPollInterval(watchInterval),
	)
	if err != nil {
		return err
	}
	defer sub.Close()

	s.logger.WithField("lease", sub.Lease()).Info("watching change feed")

	delivered := 0
	for batch := range sub.Changes() {
		if batch.Error != nil {
			return batch.Error
		}
		for _, item := range batch.Items {
			if err := printLine(cmd, item); err != nil {
				return err
			}
		}
		delivered++
		if watchBatches > 0 && delivered >= watchBatches {
			return nil
		}
	}
	return nil
}

func printLine(cmd *cobra.Command, item storagemodels.Item) error {
	b, err := json.Marshal(item)
	if err != nil {
		return err
	}
	cmd.Println(string(b))
	return nil
}
