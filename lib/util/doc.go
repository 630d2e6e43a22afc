// Package util provides the insertion ordered containers used by the codec layer.
//
// Go maps have no stable iteration order, but ordered collections on the wire
// must be re-encoded in exactly the order they were decoded in. OrderedSet and
// OrderedMap keep that order for typed elements, GenericSet does the same for
// heterogeneous values and knows how to encode itself with msgpack.
//
// None of the containers is safe for concurrent use; each decoded message owns
// its containers.
package util
