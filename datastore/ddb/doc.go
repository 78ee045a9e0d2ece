/*
Package ddb provides a DynamoDB implementation of the datastore interfaces.

Each database/container pair maps to one table, named "<database>-<container>"
unless overridden with RegisterTable. The table's hash key must be a string;
when it is not "id" the driver copies the item id into it on write and strips
it again on read, which allows single-table layouts:

	ddb.RegisterTable("app", "users", ddb.TableConfig{
	    TableName:    "app",
	    KeyAttribute: "PK",
	})

Key Features:

Conditional Writes:
Create uses attribute_not_exists and Replace/Delete use attribute_exists, so a
racing writer surfaces as AlreadyExists or NotFound instead of a silent overwrite.

Condition Queries:
Field conditions become Scan filter expressions. Every path segment is an
expression attribute name and the value an expression attribute value:

	detail.age >= 30   =>   "#f0.#f1 >= :v"

Change Feed:
ReadChanges reads the table's DynamoDB stream (NEW_IMAGE or NEW_AND_OLD_IMAGES)
across all shards. The continuation records the last sequence number per shard.

The driver registers itself as "dynamodb"; import it for its side effect:

	import _ "github.com/richie6280/docstore/datastore/ddb"
*/
package ddb
