// Package document models an untyped JSON response as a tagged value with
// total accessors. Lookups never fail: a missing field or a value of the wrong
// kind yields the zero value of the requested shape.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind identifies the JSON type held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "null"
	}
}

// Value is a node of a decoded JSON document. The zero Value is null.
type Value struct {
	raw any
}

// Parse decodes data as a single JSON document. Numbers keep their original
// text so that re-encoding does not lose integer precision.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, errors.New("empty document")
		}
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, errors.New("unexpected data after document")
	}
	return Value{raw: raw}, nil
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(s string) Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("document: %v", err))
	}
	return v
}

// Kind reports the JSON type of v.
func (v Value) Kind() Kind {
	switch v.raw.(type) {
	case bool:
		return Bool
	case json.Number:
		return Number
	case string:
		return String
	case []any:
		return Array
	case map[string]any:
		return Object
	default:
		return Null
	}
}

// Field returns the named member of an object, or null.
func (v Value) Field(name string) Value {
	m, ok := v.raw.(map[string]any)
	if !ok {
		return Value{}
	}
	return Value{raw: m[name]}
}

// Index returns the i'th element of an array, or null.
func (v Value) Index(i int) Value {
	arr, ok := v.raw.([]any)
	if !ok || i < 0 || i >= len(arr) {
		return Value{}
	}
	return Value{raw: arr[i]}
}

// Pointer resolves an RFC 6901 JSON pointer such as "/data/0/requests".
// An empty pointer refers to v itself. Unresolvable pointers yield null.
func (v Value) Pointer(ptr string) Value {
	if ptr == "" {
		return v
	}
	if !strings.HasPrefix(ptr, "/") {
		return Value{}
	}
	cur := v
	for _, tok := range strings.Split(ptr[1:], "/") {
		tok = strings.ReplaceAll(tok, "~1", "/")
		tok = strings.ReplaceAll(tok, "~0", "~")
		switch cur.Kind() {
		case Object:
			cur = cur.Field(tok)
		case Array:
			i, ok := parseIndex(tok)
			if !ok {
				return Value{}
			}
			cur = cur.Index(i)
		default:
			return Value{}
		}
	}
	return cur
}

// Array returns the elements of an array, or nil for any other kind.
func (v Value) Array() []Value {
	arr, ok := v.raw.([]any)
	if !ok {
		return nil
	}
	out := make([]Value, len(arr))
	for i, e := range arr {
		out[i] = Value{raw: e}
	}
	return out
}

// Int returns v as a signed integer, or 0 if v is not an integral number
// representable as int64.
func (v Value) Int() int64 {
	n, ok := v.raw.(json.Number)
	if !ok {
		return 0
	}
	i, err := n.Int64()
	if err != nil {
		return 0
	}
	return i
}

// Uint returns v as an unsigned integer, or 0 if v is negative, fractional,
// or not a number.
func (v Value) Uint() uint64 {
	n, ok := v.raw.(json.Number)
	if !ok {
		return 0
	}
	u, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return 0
	}
	return u
}

// Str returns v as a string, or "" if v is not a string.
func (v Value) Str() string {
	s, _ := v.raw.(string)
	return s
}

// Interface returns the underlying decoded value.
func (v Value) Interface() any {
	return v.raw
}

// MarshalJSON re-encodes v compactly without HTML escaping.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v.raw); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// String returns the compact JSON text of v.
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return "null"
	}
	return string(data)
}

func parseIndex(tok string) (int, bool) {
	if !isDigits(tok) || (len(tok) > 1 && tok[0] == '0') {
		return 0, false
	}
	i, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return i, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
