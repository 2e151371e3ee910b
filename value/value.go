// Package value defines the tagged-variant Value tree that every decoded
// struct instance is represented as (§3), and the schema-driven decoder
// that builds one from a payload slice against an SDNA schema (§4.5).
//
// A Value is deliberately untyped at the Go level: the schema is only
// known at runtime and changes across Blender versions, so there is no
// static per-struct binding to decode into.
package value

// Kind discriminates the variant a Value holds.
type Kind int

const (
	KindPrimitive Kind = iota
	KindBlob
	KindArray
	KindString
	KindStruct
	KindPointer
	KindFuncPointer
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindBlob:
		return "blob"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindStruct:
		return "struct"
	case KindPointer:
		return "pointer"
	case KindFuncPointer:
		return "funcPointer"
	default:
		return "unknown"
	}
}

// Value is one node of a decoded struct instance.
type Value struct {
	Kind Kind

	// TypeName is the SDNA type name: the primitive name for
	// KindPrimitive/KindBlob, the element type for KindArray/KindString,
	// the struct type for KindStruct, or the pointee's declared base
	// type for KindPointer/KindFuncPointer.
	TypeName string

	// --- KindPrimitive ---
	Int      int64
	Uint     uint64
	Float    float64
	IsSigned bool
	IsFloat  bool

	// --- KindBlob, KindString ---
	// Raw holds the exact source bytes, so callers needing round-trip
	// (§8 "round-trip for primitives") or a NUL-truncated display string
	// can derive what they need.
	Raw []byte

	// --- KindArray ---
	Elements []Value

	// --- KindStruct ---
	Fields     map[string]Value
	FieldOrder []string

	// --- KindPointer, KindFuncPointer ---
	Address      uint64
	PointerDepth int
}

// String returns the NUL-truncated text of a KindString value, or "" for
// any other kind.
func (v Value) String() string {
	if v.Kind != KindString {
		return ""
	}
	for i, b := range v.Raw {
		if b == 0 {
			return string(v.Raw[:i])
		}
	}
	return string(v.Raw)
}

// Field returns the named field of a KindStruct value.
func (v Value) Field(name string) (Value, bool) {
	if v.Kind != KindStruct {
		return Value{}, false
	}
	f, ok := v.Fields[name]
	return f, ok
}

// Index returns element i of a KindArray value, or a KindStruct value
// treated as its own single element at index 0 (§4.7 field-path chase:
// "array index: ... or a struct treated as its single element").
func (v Value) Index(i int) (Value, bool) {
	switch v.Kind {
	case KindArray:
		if i < 0 || i >= len(v.Elements) {
			return Value{}, false
		}
		return v.Elements[i], true
	case KindStruct:
		if i == 0 {
			return v, true
		}
		return Value{}, false
	default:
		return Value{}, false
	}
}

// IsNull reports whether a pointer value is the null address.
func (v Value) IsNull() bool {
	return (v.Kind == KindPointer || v.Kind == KindFuncPointer) && v.Address == 0
}
