// Package types defines the domain entities exchanged between the nodes of the
// store: keys and values, error messages, query feature descriptors (Mapper,
// Reducer, Predicate, Range, Update) and cluster configuration (NodeConfiguration,
// Member, View).
//
// Every entity encodes itself with msgpack as an array of its fields in a fixed
// order (see the "Wire layout" line of each type). Free form parameter maps are
// embedded as nested streams of the generic serializer so they can be decoded on
// their own. Keys are plain msgpack strings and values plain msgpack bins.
//
// Register binds the entities to stable "dcodec.<Name>" tags; call it once at
// startup for each registry that has to resolve them:
//
//	if err := types.Register(serializer.DefaultRegistry()); err != nil {
//	    log.Fatal(err)
//	}
package types
