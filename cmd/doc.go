// Package cmd implements the command-line interface of dcodec. It provides
// commands for producing, converting and inspecting encoded streams.
//
// The package is organized into several subpackages:
//
//   - inspect: Show envelope, type tag, sizes and value of a stream
//   - convert: Encode JSON documents, decode streams to JSON or CBOR, recompress streams
//   - perf: Measure codec throughput for every compression envelope
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set through an environment variable with the DCODEC_
// prefix (e.g. DCODEC_COMPRESSION=lz4), optionally from a .env file.
//
// See dcodec -help for a list of all commands.
package cmd
