/*
Package cosmos provides an Azure Cosmos DB (NoSQL API) implementation of the
datastore interfaces.

Containers are addressed by database and container id. The partition key path
is taken from the partition key registry ("/id" unless registered otherwise);
point reads and deletes on containers partitioned on another field resolve the
partition key with a query first.

Queries run across all partitions with the value bound as @value:

	SELECT * FROM c WHERE c["detail"]["age"] >= @value

The change feed is read by polling on the _ts system property. Continuations
carry the last _ts delivered and the documents already seen at that second.

The driver registers itself as "cosmos"; import it for its side effect:

	import _ "github.com/richie6280/docstore/datastore/cosmos"
*/
package cosmos
