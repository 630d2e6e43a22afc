package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/fxamacker/cbor/v2"
)

// Output formats for decoded values
const (
	FormatJSON     = "json"
	FormatCBOR     = "cbor"
	FormatCBORDiag = "cbor-diag"
)

var cborEncMode cbor.EncMode

func init() {
	var err error
	// deterministic output, the same value always renders to the same bytes
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// Render converts v into the given output format. Values are first brought into
// their JSON document form, so every registered type renders the same way in
// every format.
func Render(v any, format string) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to render json: %w", err)
		}
		return append(b, '\n'), nil
	case FormatCBOR:
		doc, err := toDocument(v)
		if err != nil {
			return nil, err
		}
		return cborEncMode.Marshal(doc)
	case FormatCBORDiag:
		doc, err := toDocument(v)
		if err != nil {
			return nil, err
		}
		b, err := cborEncMode.Marshal(doc)
		if err != nil {
			return nil, err
		}
		diag, err := cbor.Diagnose(b)
		if err != nil {
			return nil, err
		}
		return []byte(diag + "\n"), nil
	default:
		return nil, fmt.Errorf("invalid format %s (json, cbor, cbor-diag)", format)
	}
}

// toDocument returns the JSON document form of v with integers kept as integers
func toDocument(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to render value: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return normalizeNumbers(doc), nil
}

// normalizeNumbers replaces json.Number values by int64 or float64
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = normalizeNumbers(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeNumbers(t[k])
		}
		return t
	default:
		return v
	}
}
