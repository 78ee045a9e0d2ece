/*
Package storagemodels defines the data structures shared by the facade and drivers.

Key Types:

Item:
A JSON-like document. The optional "id" attribute is its unique key:

	item := storagemodels.Item{"id": "1", "name": "a"}
	item.ID()                                   // "1"
	item.Merge(storagemodels.Item{"age": 30})   // {"id": "1", "name": "a", "age": 30}

Condition:
A validated field comparison. Field paths and operators are whitelisted; the
value is always passed to the service as a bound parameter:

	cond, err := storagemodels.NewCondition("detail.age", ">=", 18)

ChangeBatch:
One delivery from a change-feed subscription:

	type ChangeBatch struct {
	    Items        []Item      // Created or updated items
	    Continuation string      // Resume token persisted after delivery
	    Error        error       // Terminal error, if any
	    Meta         ChangeMeta  // Batch counters and timestamp
	}

ChangeFeedOptions:
Configuration for change-feed consumption:

	opts := []ChangeFeedOption{
	    WithPageSize(50),
	    WithPollInterval(2 * time.Second),
	    WithMaxRetries(5),
	    WithLease("orders-projector"),
	}

These types provide a consistent interface across the storage drivers.
*/
package storagemodels
