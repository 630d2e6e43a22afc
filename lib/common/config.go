package common

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Codec configuration struct
// --------------------------------------------------------------------------

// CodecConfig holds the settings of the dcodec command line tool
type CodecConfig struct {
	// Compression envelope used when producing streams (none, lz4, zstd, gzip)
	Compression string

	// Output format for rendered values (json, cbor, cbor-diag)
	Format string

	// Whether to dump codec metrics after a command
	Metrics bool

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *CodecConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Codec")
	addField("Compression", c.Compression)
	addField("Format", c.Format)
	addField("Metrics", fmt.Sprintf("%t", c.Metrics))

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
