package types

import (
	"fmt"
	"github.com/ValentinKolb/dcodec/lib/serializer"
	"github.com/hashicorp/go-multierror"
	"github.com/vmihailenco/msgpack/v5"
)

// Type tags of the domain types
const (
	TagKey               = "dcodec.Key"
	TagValue             = "dcodec.Value"
	TagErrorMessage      = "dcodec.ErrorMessage"
	TagMapper            = "dcodec.Mapper"
	TagReducer           = "dcodec.Reducer"
	TagPredicate         = "dcodec.Predicate"
	TagRange             = "dcodec.Range"
	TagUpdate            = "dcodec.Update"
	TagNodeConfiguration = "dcodec.NodeConfiguration"
	TagMember            = "dcodec.Member"
	TagView              = "dcodec.View"
)

// Register binds all domain types to their tags in r.
// It must be called once during startup for every registry that should resolve them.
func Register(r *serializer.Registry) error {
	var result *multierror.Error
	for _, err := range []error{
		serializer.Register[Key](r, TagKey),
		serializer.Register[Value](r, TagValue),
		serializer.Register[ErrorMessage](r, TagErrorMessage),
		serializer.Register[Mapper](r, TagMapper),
		serializer.Register[Reducer](r, TagReducer),
		serializer.Register[Predicate](r, TagPredicate),
		serializer.Register[Range](r, TagRange),
		serializer.Register[Update](r, TagUpdate),
		serializer.Register[NodeConfiguration](r, TagNodeConfiguration),
		serializer.Register[Member](r, TagMember),
		serializer.Register[View](r, TagView),
	} {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// decodeHeader reads the array header of a domain type and checks its field count
func decodeHeader(dec *msgpack.Decoder, name string, fields int) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != fields {
		return fmt.Errorf("%s: expected %d fields, got %d", name, fields, n)
	}
	return nil
}
