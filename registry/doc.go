/*
Package registry manages driver registration and container partition keys.

Driver Registry:
Drivers register an open function in init(), the way database/sql drivers do:

	func init() {
	    registry.RegisterDriver("cosmos", Open)
	}

	client, err := registry.Open(ctx, storagemodels.Connection{Driver: "cosmos", ...})

Partition Key Registry:
Associates a container id with the path of its partition key. Containers that
are not registered use "/id":

	registry.RegisterPartitionKey("orders", "/customerId")
	registry.GetPartitionKey("orders")   // "/customerId"
	registry.GetPartitionKey("profiles") // "/id"

The registry is thread-safe and should be populated during initialization.
*/
package registry
