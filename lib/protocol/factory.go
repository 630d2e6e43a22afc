package protocol

import (
	"github.com/ValentinKolb/dcodec/lib/types"
)

// --------------------------------------------------------------------------
// Command Factory Functions
// --------------------------------------------------------------------------

// NewGetValueCommand creates a new GetValue command
func NewGetValueCommand(bucket, key string) *GetValueCommand {
	return &GetValueCommand{
		Bucket: bucket,
		Key:    types.NewKey(key),
	}
}

// NewGetValuesCommand creates a new GetValues command for keys in the given order
func NewGetValuesCommand(bucket string, keys ...string) *GetValuesCommand {
	return &GetValuesCommand{
		Bucket: bucket,
		Keys:   types.NewKeySet(keys...),
	}
}

// NewPutValueCommand creates a new PutValue command
func NewPutValueCommand(bucket, key string, value []byte) *PutValueCommand {
	return &PutValueCommand{
		Bucket: bucket,
		Key:    types.NewKey(key),
		Value:  types.NewValue(value),
	}
}

// NewRangeQueryCommand creates a new RangeQuery command
func NewRangeQueryCommand(bucket string, r *types.Range) *RangeQueryCommand {
	return &RangeQueryCommand{
		Bucket: bucket,
		Range:  r,
	}
}

// NewMapReduceCommand creates a new MapReduce command
func NewMapReduceCommand(bucket string, r *types.Range, mapper *types.Mapper, reducer *types.Reducer) *MapReduceCommand {
	return &MapReduceCommand{
		Bucket:  bucket,
		Range:   r,
		Mapper:  mapper,
		Reducer: reducer,
	}
}

// NewUpdateCommand creates a new Update command
func NewUpdateCommand(bucket, key string, update *types.Update) *UpdateCommand {
	return &UpdateCommand{
		Bucket: bucket,
		Key:    types.NewKey(key),
		Update: update,
	}
}

// NewJoinCommand creates a Membership command announcing that node joins view
func NewJoinCommand(node *types.NodeConfiguration, view *types.View) *MembershipCommand {
	return &MembershipCommand{Node: node, View: view, Joining: true}
}

// NewLeaveCommand creates a Membership command announcing that node leaves view
func NewLeaveCommand(node *types.NodeConfiguration, view *types.View) *MembershipCommand {
	return &MembershipCommand{Node: node, View: view}
}

// --------------------------------------------------------------------------
// Response Factory Functions
// --------------------------------------------------------------------------

// NewValueResponse creates a response carrying a single value. A nil value means the key was not found.
func NewValueResponse(correlationID, key string, value *types.Value) *Response {
	return &Response{
		CorrelationID: correlationID,
		Key:           types.NewKey(key),
		Value:         value,
	}
}

// NewValuesResponse creates a response carrying several values
func NewValuesResponse(correlationID string, values types.ValueMap) *Response {
	return &Response{
		CorrelationID: correlationID,
		Values:        values,
	}
}

// NewResultResponse creates a response carrying the result of a map/reduce job
func NewResultResponse(correlationID string, result map[string]any) *Response {
	return &Response{
		CorrelationID: correlationID,
		Result:        result,
	}
}

// NewErrorResponse creates a response for a failed command
func NewErrorResponse(correlationID string, code int, format string, args ...interface{}) *Response {
	return &Response{
		CorrelationID: correlationID,
		ErrorMessage:  types.NewErrorMessage(code, format, args...),
	}
}
