package protocol

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Command Type Definition
// --------------------------------------------------------------------------

// CommandType identifies a message exchanged between the nodes of the store.
// It is written in front of a message framed with Pack.
type CommandType uint8

const (
	CmdTUnknown CommandType = iota

	// Store queries
	CmdTGetValue   // Get a single value by key
	CmdTGetValues  // Get several values by key
	CmdTPutValue   // Put a value under a key
	CmdTRangeQuery // Get all values of a key range
	CmdTMapReduce  // Run a map/reduce job over a key range
	CmdTUpdate     // Apply an update function to a value

	// Cluster management
	CmdTMembership // Announce a node and its current view of the cluster

	// Replies
	CmdTResponse // Result of any command
)

var commandTypeNames = map[CommandType]string{
	CmdTGetValue:   "getValue",
	CmdTGetValues:  "getValues",
	CmdTPutValue:   "putValue",
	CmdTRangeQuery: "rangeQuery",
	CmdTMapReduce:  "mapReduce",
	CmdTUpdate:     "update",
	CmdTMembership: "membership",
	CmdTResponse:   "response",
}

// String returns the string representation of a CommandType.
func (t CommandType) String() string {
	if name, ok := commandTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseCommandType returns the CommandType named s
func ParseCommandType(s string) (CommandType, error) {
	for t, name := range commandTypeNames {
		if name == s {
			return t, nil
		}
	}
	return CmdTUnknown, fmt.Errorf("unknown command type: %s", s)
}

// MarshalJSON implements the json.Marshaller interface for CommandType.
func (t CommandType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for CommandType.
func (t *CommandType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCommandType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
