/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/richie6280/docstore"
	"github.com/richie6280/docstore/datastore"
	"github.com/richie6280/docstore/storagemodels"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every item in the container",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Find an item by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var findCmd = &cobra.Command{
	Use:   "find [field] [operator] [value]",
	Short: "Find items matching a field condition",
	Long: `Find items where field compares to value. Operators: = == != <> < <= > >=.
The value is decoded as JSON when possible (30, true, "x"), otherwise used as a string.`,
	Args: cobra.ExactArgs(3),
	RunE: runFind,
}

var existsCmd = &cobra.Command{
	Use:   "exists [id]",
	Short: "Report whether an item with the id is already stored",
	Args:  cobra.ExactArgs(1),
	RunE:  runExists,
}

var createCmd = &cobra.Command{
	Use:   "create [json]",
	Short: "Create an item; fails softly when the id is taken",
	Args:  cobra.ExactArgs(1),
	RunE:  runWrite((*docstore.Facade).Create),
}

var upsertCmd = &cobra.Command{
	Use:   "upsert [json]",
	Short: "Create or replace an item",
	Args:  cobra.ExactArgs(1),
	RunE:  runWrite((*docstore.Facade).Upsert),
}

var updateCmd = &cobra.Command{
	Use:   "update [json]",
	Short: "Merge fields into an existing item, or create it",
	Args:  cobra.ExactArgs(1),
	RunE:  runWrite((*docstore.Facade).Update),
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an item after confirmation",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var (
	directRead bool
	assumeYes  bool
)

func init() {
	getCmd.Flags().BoolVar(&directRead, "direct", false, "Use a point read instead of a query")
	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Delete without asking")

	rootCmd.AddCommand(listCmd, getCmd, findCmd, existsCmd, createCmd, upsertCmd, updateCmd, deleteCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	items, _, err := s.facade.ListAll(cmd.Context(), s.container)
	if err != nil {
		return err
	}
	return printJSON(cmd, items)
}

func runGet(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if directRead {
		item, ok, err := s.facade.FindByDirectRead(cmd.Context(), s.container, args[0])
		if err != nil {
			return err
		}
		if !ok {
			cmd.Println(docstore.MessageNotFound)
			return nil
		}
		return printJSON(cmd, item)
	}

	items, err := s.facade.FindByID(cmd.Context(), s.container, args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, items)
}

func runFind(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	items, err := s.facade.FindByCondition(cmd.Context(), s.container, args[0], args[1], parseValue(args[2]))
	if err != nil {
		return err
	}
	return printJSON(cmd, items)
}

func runExists(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	dup, err := s.facade.IsDuplicate(cmd.Context(), s.container, args[0])
	if err != nil {
		return err
	}
	cmd.Println(dup)
	return nil
}

type writeFunc func(f *docstore.Facade, ctx context.Context, c datastore.Container, item storagemodels.Item) (docstore.Result, error)

func runWrite(write writeFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		item, err := storagemodels.DecodeItem([]byte(args[0]))
		if err != nil {
			return err
		}

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		res, err := write(s.facade, cmd.Context(), s.container, item)
		if err != nil {
			return err
		}
		return printResult(cmd, res)
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var confirmer docstore.Confirmer = docstore.AlwaysConfirm
	if !assumeYes {
		confirmer = promptConfirmer(cmd)
	}
	res, err := s.facade.DeleteWith(cmd.Context(), s.container, args[0], confirmer)
	if err != nil {
		return err
	}
	return printResult(cmd, res)
}

// promptConfirmer asks on the command's input; anything but y/yes declines
func promptConfirmer(cmd *cobra.Command) docstore.Confirmer {
	return docstore.ConfirmFunc(func(ctx context.Context, prompt string, item storagemodels.Item) (bool, error) {
		cmd.Printf("%s %s [y/N]: ", prompt, item.ID())
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return false, nil
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	})
}

// parseValue decodes JSON scalars and falls back to the raw string
func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	switch v.(type) {
	case map[string]any, []any:
		return raw
	}
	return v
}
