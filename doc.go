// Package searchkit provides a typed Go client for OpenSearch and
// Elasticsearch covering index administration, bulk ingestion, search and
// count, with every failure normalized into one taxonomy.
//
// # Results
//
// Index creation, mapping lookup and bulk ingestion return closed result
// unions. Inspect them with a type switch:
//
//	res := searchkit.BulkUpsert(ctx, client, "orders", docs, nil)
//	switch r := res.(type) {
//	case *searchkit.BulkSuccess:
//	    for i, item := range r.Items { // one item per document, same order
//	        if item.Failed() {
//	            log.Printf("doc %d rejected: %s", i, item.Error.Reason)
//	        }
//	    }
//	case *searchkit.BulkError:
//	    log.Printf("bulk failed (%s): %s", r.Kind, r.Message)
//	}
//
// A *BulkSuccess only means the round trip completed. Documents may still
// have been rejected one by one.
//
// # Failures
//
// Every error variant embeds a Failure whose Kind is, in priority order:
// KindResponse (non-2xx answer without a structured error), KindEngine
// (structured engine error), KindIO (no response was obtained) or
// KindUnknown. KindConfiguration marks a client that could not be built.
//
// # Low-level API
//
//	client, _ := searchkit.New(searchkit.DefaultConnectionConfig(),
//	    searchkit.WithMappings(os.DirFS("mappings")),
//	)
//	res, err := client.Indices().Create(ctx, searchkit.IndexCoordinates{
//	    Name: "orders", Alias: "orders-alias",
//	}, "orders.json")
//	page, err := searchkit.Search[Order](ctx, client, "orders",
//	    searchkit.SearchRequest{Query: searchkit.Term("value", 2), Size: 10}, nil)
//
// # Repository
//
//	type Order struct {
//	    ID    string `json:"id" searchkit:",id"`
//	    Value int    `json:"value" searchkit:",integer"`
//	}
//
//	repo := searchkit.NewRepository[Order](client, "orders")
//	_ = repo.Ensure(ctx, "orders-alias")
//	items, err := repo.Insert(ctx, orders)
//	n, err := repo.Query().Where("value", 2).Count(ctx)
package searchkit
