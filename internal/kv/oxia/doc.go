// Package oxia implements kv.Store on top of Oxia.
//
// Usage:
//
//	store, err := oxia.New(ctx, oxia.Config{
//	    ServiceAddress: "localhost:6648",
//	    Namespace:      "housekeeper",
//	})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
// Oxia sorts keys hierarchically: a scan over "<prefix>/" to "<prefix>//"
// yields exactly the direct children of <prefix>/, which is how document
// collections are listed without descending into subcollections.
package oxia
