package serializer

import (
	"fmt"
	"github.com/ValentinKolb/dcodec/lib/util"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
	"reflect"
	"sort"
)

// --------------------------------------------------------------------------
// Type Registry
// --------------------------------------------------------------------------

// Registry maps stable type tags to concrete Go types and back.
// Tags are portable identifiers chosen by the registering package, never Go
// qualified names, so streams stay readable when types move between packages.
// The registry is populated explicitly at startup; it is safe for concurrent use.
type Registry struct {
	byTag  *xsync.MapOf[string, reflect.Type]
	byType *xsync.MapOf[reflect.Type, string]
}

// Tags of the built-in types registered by NewRegistry
const (
	TagBool    = "bool"
	TagInt     = "int"
	TagInt64   = "int64"
	TagUint64  = "uint64"
	TagFloat64 = "float64"
	TagString  = "string"
	TagBytes   = "bytes"
	TagList    = "list"
	TagMap     = "map"
	TagSet     = "set"
)

// NewRegistry creates a registry holding the built-in types
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	MustRegister[bool](r, TagBool)
	MustRegister[int](r, TagInt)
	MustRegister[int64](r, TagInt64)
	MustRegister[uint64](r, TagUint64)
	MustRegister[float64](r, TagFloat64)
	MustRegister[string](r, TagString)
	MustRegister[[]byte](r, TagBytes)
	MustRegister[[]any](r, TagList)
	MustRegister[map[string]any](r, TagMap)
	MustRegister[*util.GenericSet](r, TagSet)
	return r
}

// NewEmptyRegistry creates a registry without any types
func NewEmptyRegistry() *Registry {
	return &Registry{
		byTag:  xsync.NewMapOf[string, reflect.Type](),
		byType: xsync.NewMapOf[reflect.Type, string](),
	}
}

// Register binds tag to the concrete type T.
// Registering a tag or a type twice is an error.
func Register[T any](r *Registry, tag string) error {
	return r.register(tag, reflect.TypeOf((*T)(nil)).Elem())
}

// MustRegister is like Register but panics on failure. Use it only during startup.
func MustRegister[T any](r *Registry, tag string) {
	if err := Register[T](r, tag); err != nil {
		panic(err)
	}
}

// register binds tag to t, rolling back the tag if the type is already taken
func (r *Registry) register(tag string, t reflect.Type) error {
	if tag == "" {
		return errors.New("type tag must not be empty")
	}
	if t.Kind() == reflect.Interface {
		return errors.Errorf("cannot register interface type %s as %q", t, tag)
	}
	if existing, loaded := r.byTag.LoadOrStore(tag, t); loaded {
		return errors.Wrapf(ErrDuplicateTag, "tag %q already bound to %s", tag, existing)
	}
	if existing, loaded := r.byType.LoadOrStore(t, tag); loaded {
		r.byTag.Delete(tag)
		return errors.Wrapf(ErrDuplicateTag, "type %s already registered as %q", t, existing)
	}
	return nil
}

// Lookup resolves a tag to its registered type
func (r *Registry) Lookup(tag string) (reflect.Type, bool) {
	return r.byTag.Load(tag)
}

// TagOf returns the tag of v's concrete type. A pointer to a registered
// non-pointer type resolves to the pointed-to type's tag.
func (r *Registry) TagOf(v any) (string, bool) {
	t := reflect.TypeOf(v)
	if t == nil {
		return "", false
	}
	if tag, ok := r.byType.Load(t); ok {
		return tag, true
	}
	if t.Kind() == reflect.Ptr {
		return r.byType.Load(t.Elem())
	}
	return "", false
}

// New returns a pointer to a fresh zero value of the type registered for tag
func (r *Registry) New(tag string) (any, error) {
	t, ok := r.Lookup(tag)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTag, "%q", tag)
	}
	return reflect.New(t).Interface(), nil
}

// Tags returns all registered tags in sorted order
func (r *Registry) Tags() []string {
	tags := make([]string, 0, r.byTag.Size())
	r.byTag.Range(func(tag string, _ reflect.Type) bool {
		tags = append(tags, tag)
		return true
	})
	sort.Strings(tags)
	return tags
}

// String lists the registered tags with their Go types
func (r *Registry) String() string {
	s := ""
	for _, tag := range r.Tags() {
		t, _ := r.Lookup(tag)
		s += fmt.Sprintf("  %-32s %s\n", tag, t)
	}
	return s
}
