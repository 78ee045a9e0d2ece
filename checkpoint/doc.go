/*
Package checkpoint persists change-feed continuation tokens.

A subscription saves its continuation under a lease name after every delivered
batch; a new subscription with the same lease resumes from it.

Implementations:
  - MemoryStore: process lifetime only
  - FileStore: one JSON file holding all leases
  - SQLiteStore: a SQLite database (modernc.org/sqlite, no cgo)

	store, err := checkpoint.NewSQLiteStore("/var/lib/docstore/checkpoints.db")
	facade := docstore.New(docstore.WithCheckpointStore(store))
*/
package checkpoint
