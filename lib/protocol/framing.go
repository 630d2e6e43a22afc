package protocol

import (
	"github.com/ValentinKolb/dcodec/lib/codec"
	"github.com/ValentinKolb/dcodec/lib/common"
	"github.com/ValentinKolb/dcodec/lib/serializer"
	"github.com/hashicorp/go-multierror"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"math"
	"reflect"
)

// Logger is the logger of the protocol package
var Logger = logger.GetLogger(common.LoggerProtocol)

// Type tags of the commands
const (
	TagGetValue   = "dcodec.protocol.GetValueCommand"
	TagGetValues  = "dcodec.protocol.GetValuesCommand"
	TagPutValue   = "dcodec.protocol.PutValueCommand"
	TagRangeQuery = "dcodec.protocol.RangeQueryCommand"
	TagMapReduce  = "dcodec.protocol.MapReduceCommand"
	TagUpdate     = "dcodec.protocol.UpdateCommand"
	TagMembership = "dcodec.protocol.MembershipCommand"
	TagResponse   = "dcodec.protocol.Response"
)

// Register binds all commands to their tags in r so whole commands can travel
// through the generic serializer. The domain types must be registered separately.
func Register(r *serializer.Registry) error {
	var result *multierror.Error
	for _, err := range []error{
		serializer.Register[GetValueCommand](r, TagGetValue),
		serializer.Register[GetValuesCommand](r, TagGetValues),
		serializer.Register[PutValueCommand](r, TagPutValue),
		serializer.Register[RangeQueryCommand](r, TagRangeQuery),
		serializer.Register[MapReduceCommand](r, TagMapReduce),
		serializer.Register[UpdateCommand](r, TagUpdate),
		serializer.Register[MembershipCommand](r, TagMembership),
		serializer.Register[Response](r, TagResponse),
	} {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// --------------------------------------------------------------------------
// Framing
// --------------------------------------------------------------------------

// Pack writes cmd prefixed by its command type. Use it to embed commands in a
// larger msgpack stream without the type tag of the generic serializer.
func Pack(enc *msgpack.Encoder, cmd Command) error {
	const op = "pack command"
	if cmd == nil || (reflect.ValueOf(cmd).Kind() == reflect.Ptr && reflect.ValueOf(cmd).IsNil()) {
		return common.EncodingError(op, serializer.ErrNilValue)
	}
	if err := codec.PackInt(enc, int32(cmd.Type())); err != nil {
		return err
	}
	if err := enc.Encode(cmd); err != nil {
		return common.EncodingError(op, errors.Wrapf(err, "write %s", cmd.Type()))
	}
	Logger.Debugf("%s %s", op, cmd.Type())
	return nil
}

// Unpack reads a command written by Pack. The result is a pointer to the concrete command.
func Unpack(dec *msgpack.Decoder) (Command, error) {
	const op = "unpack command"
	raw, err := codec.UnpackInt(dec)
	if err != nil {
		return nil, err
	}
	if raw < 0 || raw > math.MaxUint8 {
		return nil, common.Decodingf(op, "invalid command type %d", raw)
	}
	t := CommandType(raw)
	cmd, err := newCommand(t)
	if err != nil {
		return nil, common.DecodingError(op, err)
	}
	if err := dec.Decode(cmd); err != nil {
		return nil, common.DecodingError(op, errors.Wrapf(err, "read %s", t))
	}
	Logger.Debugf("%s %s", op, t)
	return cmd, nil
}

// newCommand returns a pointer to a fresh command of type t
func newCommand(t CommandType) (Command, error) {
	switch t {
	case CmdTGetValue:
		return &GetValueCommand{}, nil
	case CmdTGetValues:
		return &GetValuesCommand{}, nil
	case CmdTPutValue:
		return &PutValueCommand{}, nil
	case CmdTRangeQuery:
		return &RangeQueryCommand{}, nil
	case CmdTMapReduce:
		return &MapReduceCommand{}, nil
	case CmdTUpdate:
		return &UpdateCommand{}, nil
	case CmdTMembership:
		return &MembershipCommand{}, nil
	case CmdTResponse:
		return &Response{}, nil
	default:
		return nil, errors.Errorf("unknown command type %d", uint8(t))
	}
}

// decodeHeader reads the array header of a command and checks its field count
func decodeHeader(dec *msgpack.Decoder, t CommandType, fields int) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != fields {
		return errors.Errorf("%s: expected %d fields, got %d", t, fields, n)
	}
	return nil
}
