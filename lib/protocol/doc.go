// Package protocol defines the commands and responses exchanged between the
// nodes of the store. Every message is composed from the pack/unpack catalogue
// of package codec and writes its fields as a msgpack array in a fixed order,
// documented by the "Wire layout" line of each type.
//
// Messages travel in one of two ways:
//
//   - As a standalone stream through the generic serializer. Call Register once
//     at startup so the "dcodec.protocol.<Name>" tags resolve:
//
//     data, err := serializer.Default().Serialize(protocol.NewGetValueCommand("users", "alice"))
//
//   - Framed inside a larger msgpack stream with Pack and Unpack, which prefix
//     the message with its CommandType instead of a type tag.
//
// The package does not send anything; the transport carrying the bytes lives
// outside this module.
package protocol
