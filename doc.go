/*
Package docstore is a thin facade over managed document databases.

It binds one client (Azure Cosmos DB, Amazon DynamoDB or an in-memory store) and
exposes a fixed CRUD vocabulary over containers of JSON-like items: listing,
id and field-condition queries, duplicate checks, create, upsert, merge-update,
confirmed delete, and a resumable change-feed subscription.

Conflicting or destructive writes report a Result instead of prompting anyone:

	f := docstore.New(docstore.WithConfirmer(docstore.AlwaysConfirm))
	if err := f.Initialize(ctx, storagemodels.Connection{
	    Driver:   "cosmos",
	    Endpoint: "https://account.documents.azure.com:443/",
	    Key:      key,
	}); err != nil {
	    return err
	}
	defer f.Close()

	container, ok, err := f.ResolveContainer(ctx, "newDatabase", "newContainer")
	if err != nil || !ok {
	    return err
	}

	res, err := f.Create(ctx, container, storagemodels.Item{"id": "2", "name": "richie"})
	if res.Outcome == docstore.OutcomeConflict {
	    fmt.Println(res.Message)
	}

	matches, err := f.FindByCondition(ctx, container, "name", "==", "richie")

Change feed:

	sub, err := f.ChangeFeedSubscribe(ctx, "newDatabase", "newContainer",
	    storagemodels.WithPollInterval(2*time.Second),
	)
	for batch := range sub.Changes() {
	    if batch.Error != nil {
	        return batch.Error
	    }
	    handle(batch.Items)
	}

Drivers register themselves on import:

	import _ "github.com/richie6280/docstore/datastore/cosmos"
*/
package docstore
