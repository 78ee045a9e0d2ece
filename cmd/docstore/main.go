/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command docstore performs CRUD operations and tails the change feed of a
// document database container.
package main

import (
	"os"

	_ "github.com/richie6280/docstore/datastore/cosmos"
	_ "github.com/richie6280/docstore/datastore/ddb"
	_ "github.com/richie6280/docstore/datastore/mock"
)

func main() {
	rootCmd.SetOut(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
