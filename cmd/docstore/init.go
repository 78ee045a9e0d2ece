/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/richie6280/docstore/storagemodels"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configured database and container when missing",
	Long: `Create the configured database and container when they do not exist yet.
Each --seed item is then created; seeds whose id is already stored are skipped.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initSeed []string

func init() {
	initCmd.Flags().StringArrayVar(&initSeed, "seed", nil, "JSON item to create after provisioning (repeatable)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	seed := make([]storagemodels.Item, 0, len(initSeed))
	for _, raw := range initSeed {
		item, err := storagemodels.DecodeItem([]byte(raw))
		if err != nil {
			return fmt.Errorf("invalid --seed item: %w", err)
		}
		seed = append(seed, item)
	}

	s, err := openFacade(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	_, created, err := s.facade.Provision(cmd.Context(), s.config.Database, s.config.Container, seed...)
	if err != nil {
		return err
	}
	if created {
		cmd.Printf("created %s/%s\n", s.config.Database, s.config.Container)
	} else {
		cmd.Printf("%s/%s already exists\n", s.config.Database, s.config.Container)
	}
	return nil
}
