package protocol

import (
	"github.com/ValentinKolb/dcodec/lib/codec"
	"github.com/ValentinKolb/dcodec/lib/types"
	"github.com/ValentinKolb/dcodec/lib/util"
	"github.com/vmihailenco/msgpack/v5"
)

// Command is a message that can be framed with Pack. Every command writes
// its fields as a msgpack array in a fixed order.
type Command interface {
	msgpack.CustomEncoder
	Type() CommandType
}

var (
	_ Command = GetValueCommand{}
	_ Command = GetValuesCommand{}
	_ Command = PutValueCommand{}
	_ Command = RangeQueryCommand{}
	_ Command = MapReduceCommand{}
	_ Command = UpdateCommand{}
	_ Command = MembershipCommand{}
	_ Command = Response{}
)

// --------------------------------------------------------------------------
// Store Queries
// --------------------------------------------------------------------------

// GetValueCommand reads the value stored under Key.
// Wire layout: [bucket, key, predicate]
type GetValueCommand struct {
	Bucket    string
	Key       *types.Key
	Predicate *types.Predicate
}

func (c GetValueCommand) Type() CommandType { return CmdTGetValue }

func (c GetValueCommand) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(3); err != nil {
		return err
	}
	if err := codec.PackString(enc, c.Bucket); err != nil {
		return err
	}
	if err := codec.PackKey(enc, c.Key); err != nil {
		return err
	}
	return codec.PackPredicate(enc, c.Predicate)
}

func (c *GetValueCommand) DecodeMsgpack(dec *msgpack.Decoder) (err error) {
	if err = decodeHeader(dec, CmdTGetValue, 3); err != nil {
		return err
	}
	if c.Bucket, err = codec.UnpackString(dec); err != nil {
		return err
	}
	if c.Key, err = codec.UnpackKey(dec); err != nil {
		return err
	}
	c.Predicate, err = codec.UnpackPredicate(dec)
	return err
}

// GetValuesCommand reads the values of several keys. The response lists them in the order of Keys.
// Wire layout: [bucket, keys, predicate]
type GetValuesCommand struct {
	Bucket    string
	Keys      types.KeySet
	Predicate *types.Predicate
}

func (c GetValuesCommand) Type() CommandType { return CmdTGetValues }

func (c GetValuesCommand) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(3); err != nil {
		return err
	}
	if err := codec.PackString(enc, c.Bucket); err != nil {
		return err
	}
	if err := codec.PackKeys(enc, c.Keys); err != nil {
		return err
	}
	return codec.PackPredicate(enc, c.Predicate)
}

func (c *GetValuesCommand) DecodeMsgpack(dec *msgpack.Decoder) (err error) {
	if err = decodeHeader(dec, CmdTGetValues, 3); err != nil {
		return err
	}
	if c.Bucket, err = codec.UnpackString(dec); err != nil {
		return err
	}
	if c.Keys, err = codec.UnpackKeys(dec); err != nil {
		return err
	}
	c.Predicate, err = codec.UnpackPredicate(dec)
	return err
}

// PutValueCommand stores Value under Key. A predicate makes the write conditional.
// Wire layout: [bucket, key, value, predicate]
type PutValueCommand struct {
	Bucket    string
	Key       *types.Key
	Value     *types.Value
	Predicate *types.Predicate
}

func (c PutValueCommand) Type() CommandType { return CmdTPutValue }

func (c PutValueCommand) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(4); err != nil {
		return err
	}
	if err := codec.PackString(enc, c.Bucket); err != nil {
		return err
	}
	if err := codec.PackKey(enc, c.Key); err != nil {
		return err
	}
	if err := codec.PackValue(enc, c.Value); err != nil {
		return err
	}
	return codec.PackPredicate(enc, c.Predicate)
}

func (c *PutValueCommand) DecodeMsgpack(dec *msgpack.Decoder) (err error) {
	if err = decodeHeader(dec, CmdTPutValue, 4); err != nil {
		return err
	}
	if c.Bucket, err = codec.UnpackString(dec); err != nil {
		return err
	}
	if c.Key, err = codec.UnpackKey(dec); err != nil {
		return err
	}
	if c.Value, err = codec.UnpackValue(dec); err != nil {
		return err
	}
	c.Predicate, err = codec.UnpackPredicate(dec)
	return err
}

// RangeQueryCommand reads all values inside Range.
// Wire layout: [bucket, range, predicate]
type RangeQueryCommand struct {
	Bucket    string
	Range     *types.Range
	Predicate *types.Predicate
}

func (c RangeQueryCommand) Type() CommandType { return CmdTRangeQuery }

func (c RangeQueryCommand) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(3); err != nil {
		return err
	}
	if err := codec.PackString(enc, c.Bucket); err != nil {
		return err
	}
	if err := codec.PackRange(enc, c.Range); err != nil {
		return err
	}
	return codec.PackPredicate(enc, c.Predicate)
}

func (c *RangeQueryCommand) DecodeMsgpack(dec *msgpack.Decoder) (err error) {
	if err = decodeHeader(dec, CmdTRangeQuery, 3); err != nil {
		return err
	}
	if c.Bucket, err = codec.UnpackString(dec); err != nil {
		return err
	}
	if c.Range, err = codec.UnpackRange(dec); err != nil {
		return err
	}
	c.Predicate, err = codec.UnpackPredicate(dec)
	return err
}

// MapReduceCommand runs Mapper over every value inside Range and folds the results with Reducer.
// Wire layout: [bucket, range, mapper, reducer, predicate]
type MapReduceCommand struct {
	Bucket    string
	Range     *types.Range
	Mapper    *types.Mapper
	Reducer   *types.Reducer
	Predicate *types.Predicate
}

func (c MapReduceCommand) Type() CommandType { return CmdTMapReduce }

func (c MapReduceCommand) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(5); err != nil {
		return err
	}
	if err := codec.PackString(enc, c.Bucket); err != nil {
		return err
	}
	if err := codec.PackRange(enc, c.Range); err != nil {
		return err
	}
	if err := codec.PackMapper(enc, c.Mapper); err != nil {
		return err
	}
	if err := codec.PackReducer(enc, c.Reducer); err != nil {
		return err
	}
	return codec.PackPredicate(enc, c.Predicate)
}

func (c *MapReduceCommand) DecodeMsgpack(dec *msgpack.Decoder) (err error) {
	if err = decodeHeader(dec, CmdTMapReduce, 5); err != nil {
		return err
	}
	if c.Bucket, err = codec.UnpackString(dec); err != nil {
		return err
	}
	if c.Range, err = codec.UnpackRange(dec); err != nil {
		return err
	}
	if c.Mapper, err = codec.UnpackMapper(dec); err != nil {
		return err
	}
	if c.Reducer, err = codec.UnpackReducer(dec); err != nil {
		return err
	}
	c.Predicate, err = codec.UnpackPredicate(dec)
	return err
}

// UpdateCommand applies Update to the value stored under Key.
// Wire layout: [bucket, key, update, predicate]
type UpdateCommand struct {
	Bucket    string
	Key       *types.Key
	Update    *types.Update
	Predicate *types.Predicate
}

func (c UpdateCommand) Type() CommandType { return CmdTUpdate }

func (c UpdateCommand) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(4); err != nil {
		return err
	}
	if err := codec.PackString(enc, c.Bucket); err != nil {
		return err
	}
	if err := codec.PackKey(enc, c.Key); err != nil {
		return err
	}
	if err := codec.PackUpdate(enc, c.Update); err != nil {
		return err
	}
	return codec.PackPredicate(enc, c.Predicate)
}

func (c *UpdateCommand) DecodeMsgpack(dec *msgpack.Decoder) (err error) {
	if err = decodeHeader(dec, CmdTUpdate, 4); err != nil {
		return err
	}
	if c.Bucket, err = codec.UnpackString(dec); err != nil {
		return err
	}
	if c.Key, err = codec.UnpackKey(dec); err != nil {
		return err
	}
	if c.Update, err = codec.UnpackUpdate(dec); err != nil {
		return err
	}
	c.Predicate, err = codec.UnpackPredicate(dec)
	return err
}

// --------------------------------------------------------------------------
// Cluster Management
// --------------------------------------------------------------------------

// MembershipCommand announces Node together with the sender's view of the cluster.
// Wire layout: [node, view, joining]
type MembershipCommand struct {
	Node    *types.NodeConfiguration
	View    *types.View
	Joining bool // false when the node leaves the cluster
}

func (c MembershipCommand) Type() CommandType { return CmdTMembership }

func (c MembershipCommand) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(3); err != nil {
		return err
	}
	if err := codec.PackNodeConfiguration(enc, c.Node); err != nil {
		return err
	}
	if err := codec.PackView(enc, c.View); err != nil {
		return err
	}
	return codec.PackBoolean(enc, c.Joining)
}

func (c *MembershipCommand) DecodeMsgpack(dec *msgpack.Decoder) (err error) {
	if err = decodeHeader(dec, CmdTMembership, 3); err != nil {
		return err
	}
	if c.Node, err = codec.UnpackNodeConfiguration(dec); err != nil {
		return err
	}
	if c.View, err = codec.UnpackView(dec); err != nil {
		return err
	}
	c.Joining, err = codec.UnpackBoolean(dec)
	return err
}

// --------------------------------------------------------------------------
// Response
// --------------------------------------------------------------------------

// Response answers any command. Which fields are set depends on the command,
// a failed command only carries ErrorMessage.
// Wire layout: [correlation id, key, value, keys, values, result, set result, error message]
type Response struct {
	CorrelationID string
	Key           *types.Key          // Used for: GetValue, PutValue, Update
	Value         *types.Value        // Used for: GetValue, PutValue, Update
	Keys          types.KeySet        // Used for: RangeQuery without values
	Values        types.ValueMap      // Used for: GetValues, RangeQuery
	Result        map[string]any      // Used for: MapReduce
	Distinct      *util.GenericSet    // Used for: MapReduce jobs producing a set
	ErrorMessage  *types.ErrorMessage // Empty if no error
}

func (r Response) Type() CommandType { return CmdTResponse }

// Ok reports whether the response carries no error message
func (r Response) Ok() bool { return r.ErrorMessage == nil }

func (r Response) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(8); err != nil {
		return err
	}
	if err := codec.PackString(enc, r.CorrelationID); err != nil {
		return err
	}
	if err := codec.PackKey(enc, r.Key); err != nil {
		return err
	}
	if err := codec.PackValue(enc, r.Value); err != nil {
		return err
	}
	if err := codec.PackKeys(enc, r.Keys); err != nil {
		return err
	}
	if err := codec.PackValues(enc, r.Values); err != nil {
		return err
	}
	if err := codec.PackGenericMap(enc, r.Result); err != nil {
		return err
	}
	if err := codec.PackGenericSet(enc, r.Distinct); err != nil {
		return err
	}
	return codec.PackErrorMessage(enc, r.ErrorMessage)
}

func (r *Response) DecodeMsgpack(dec *msgpack.Decoder) (err error) {
	if err = decodeHeader(dec, CmdTResponse, 8); err != nil {
		return err
	}
	if r.CorrelationID, err = codec.UnpackString(dec); err != nil {
		return err
	}
	if r.Key, err = codec.UnpackKey(dec); err != nil {
		return err
	}
	if r.Value, err = codec.UnpackValue(dec); err != nil {
		return err
	}
	if r.Keys, err = codec.UnpackKeys(dec); err != nil {
		return err
	}
	if r.Values, err = codec.UnpackValues(dec); err != nil {
		return err
	}
	if r.Result, err = codec.UnpackGenericMap(dec); err != nil {
		return err
	}
	if r.Distinct, err = codec.UnpackGenericSet(dec); err != nil {
		return err
	}
	r.ErrorMessage, err = codec.UnpackErrorMessage(dec)
	return err
}
