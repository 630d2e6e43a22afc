// Package codec is the pack/unpack catalogue used to build store messages field
// by field on an open msgpack encoder or decoder. Every Pack function has an
// Unpack counterpart reading exactly what it wrote.
//
// Field categories:
//
//   - Primitives (PackBoolean, PackInt, PackLong, PackString, PackBytes) are
//     mandatory and carry no presence marker. UnpackInt rejects values outside
//     the 32 bit range.
//
//   - Nullable single values (PackKey ... PackView) write a nil marker for nil,
//     otherwise the value in the layout defined by package types.
//
//   - Nullable ordered collections (PackKeys, PackValues) write nil or a count
//     followed by the elements. Iteration order survives a round trip, so
//     re-encoding a decoded collection gives the same bytes. A set or map key
//     may never be absent; a map value may.
//
//   - Nullable generic collections (PackGenericMap, PackGenericSet) embed a
//     complete, uncompressed stream of the default serializer as a bin blob.
//     The blob can be decoded on its own.
//
// All failures are *common.Error values of kind encoding or decoding.
package codec
