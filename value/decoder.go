package value

import (
	"encoding/binary"
	"math"

	"github.com/helio/blend/blenderr"
	"github.com/helio/blend/sdna"
)

// primitiveSizes lists the fixed-width primitive types the decoder
// understands natively; anything else resolves through SDNA's struct
// table or falls back to a raw blob (§3, §4.5 step 5).
var primitiveSizes = map[string]int{
	"char":     1,
	"uchar":    1,
	"short":    2,
	"ushort":   2,
	"int":      4,
	"uint":     4,
	"float":    4,
	"int64_t":  8,
	"uint64_t": 8,
	"double":   8,
}

var signedPrimitives = map[string]bool{
	"char": true, "short": true, "int": true, "int64_t": true,
}

var floatPrimitives = map[string]bool{
	"float": true, "double": true,
}

// Decoder decodes struct instances from payload slices against one SDNA
// schema.
type Decoder struct {
	SDNA *sdna.SDNA
	Opts DecodeOptions
}

// NewDecoder builds a Decoder using opts, or DefaultOptions() if both
// opts.MaxDepth and opts.MaxArrayElements are zero.
func NewDecoder(s *sdna.SDNA, opts DecodeOptions) *Decoder {
	if opts.MaxDepth == 0 && opts.MaxArrayElements == 0 {
		opts = DefaultOptions()
	}
	return &Decoder{SDNA: s, Opts: opts}
}

// DecodeStruct decodes the first element of structIndex from payload.
func (d *Decoder) DecodeStruct(structIndex int, payload []byte) (Value, error) {
	v, _, err := d.decodeStructAt(structIndex, payload, 0, d.Opts.MaxDepth)
	return v, err
}

// StructStride returns the byte stride between consecutive elements of
// structIndex within a block, i.e. the struct's own declared size.
func (d *Decoder) StructStride(structIndex int) int {
	st := d.SDNA.Structs[structIndex]
	stride := int(d.SDNA.TypeSizes[st.TypeIndex])
	if stride == 0 {
		stride = d.SDNA.StructSize(structIndex)
	}
	return stride
}

// DecodeElementAt decodes element index elemIdx of structIndex out of
// payload, using the struct's declared stride. Used by the field-path
// chaser to land on a specific element after an interval resolution
// (§4.7).
func (d *Decoder) DecodeElementAt(structIndex int, payload []byte, elemIdx int64) (Value, error) {
	stride := d.StructStride(structIndex)
	start := int(elemIdx) * stride
	end := start + stride
	if start < 0 || end > len(payload) {
		return Value{}, blenderr.Newf(blenderr.PayloadTooShort,
			"element %d needs bytes [%d,%d), payload is %d bytes", elemIdx, start, end, len(payload))
	}
	return d.DecodeStruct(structIndex, payload[start:end])
}

// DecodeBlockElements decodes count consecutive elements of structIndex
// from payload, each strided by the struct's declared size (§4.5: "element
// stride when decoding a block with nr > 1 is the struct's declared
// size").
func (d *Decoder) DecodeBlockElements(structIndex int, payload []byte, count int64) ([]Value, error) {
	stride := d.StructStride(structIndex)
	out := make([]Value, 0, count)
	for i := int64(0); i < count; i++ {
		start := int(i) * stride
		end := start + stride
		if end > len(payload) {
			return nil, blenderr.Newf(blenderr.PayloadTooShort,
				"element %d of %d needs %d bytes, only %d remain", i, count, stride, len(payload)-start)
		}
		v, err := d.DecodeStruct(structIndex, payload[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *Decoder) decodeStructAt(structIndex int, payload []byte, offset, depthBudget int) (Value, int, error) {
	if depthBudget < 0 {
		return Value{}, 0, blenderr.New(blenderr.DepthExceeded, "struct nesting exceeds max_depth")
	}
	if structIndex < 0 || structIndex >= len(d.SDNA.Structs) {
		return Value{}, 0, blenderr.Newf(blenderr.SdnaIndexOutOfRange, "struct index %d out of range", structIndex)
	}
	st := d.SDNA.Structs[structIndex]

	if d.Opts.StrictLayout {
		declared := int(d.SDNA.TypeSizes[st.TypeIndex])
		sum := d.SDNA.StructSize(structIndex)
		if declared != sum {
			return Value{}, 0, blenderr.Newf(blenderr.LayoutMismatch,
				"struct %q declares size %d but fields sum to %d",
				d.SDNA.Types[st.TypeIndex], declared, sum)
		}
	}

	fields := make(map[string]Value, len(st.Fields))
	order := make([]string, 0, len(st.Fields))
	pos := offset

	for _, f := range st.Fields {
		decl := d.SDNA.Names[f.NameIndex]
		name := decl.Ident

		fv, consumed, err := d.decodeField(f, decl, payload, pos, depthBudget)
		if err != nil {
			return Value{}, 0, err
		}
		fields[name] = fv
		order = append(order, name)
		pos += consumed
	}

	return Value{
		Kind:       KindStruct,
		TypeName:   d.SDNA.Types[st.TypeIndex],
		Fields:     fields,
		FieldOrder: order,
	}, pos - offset, nil
}

func (d *Decoder) decodeField(f sdna.Field, decl sdna.Declarator, payload []byte, pos, depthBudget int) (Value, int, error) {
	typeName := d.SDNA.Types[f.TypeIndex]

	if decl.IsFunctionPointer {
		addr, err := readPtr(payload, pos)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{Kind: KindFuncPointer, TypeName: typeName, Address: addr, PointerDepth: decl.PointerDepth}, 8, nil
	}

	if decl.IsPointer() {
		elems := decl.ElementCount()
		if elems <= 1 {
			addr, err := readPtr(payload, pos)
			if err != nil {
				return Value{}, 0, err
			}
			return Value{Kind: KindPointer, TypeName: typeName, Address: addr, PointerDepth: decl.PointerDepth}, 8, nil
		}
		elements := make([]Value, elems)
		for i := 0; i < elems; i++ {
			addr, err := readPtr(payload, pos+i*8)
			if err != nil {
				return Value{}, 0, err
			}
			elements[i] = Value{Kind: KindPointer, TypeName: typeName, Address: addr, PointerDepth: decl.PointerDepth}
		}
		return Value{Kind: KindArray, TypeName: typeName, Elements: elements}, 8 * elems, nil
	}

	if decl.IsArray() {
		return d.decodeArrayDims(decl.ArrayExtents, f.TypeIndex, typeName, payload, pos, depthBudget)
	}

	if size, ok := primitiveSizes[typeName]; ok {
		if pos+size > len(payload) {
			return Value{}, 0, blenderr.Newf(blenderr.PayloadTooShort,
				"field %q needs %d bytes at offset %d, payload is %d bytes", decl.Ident, size, pos, len(payload))
		}
		return decodePrimitive(typeName, payload[pos:pos+size]), size, nil
	}

	if si, ok := d.SDNA.StructForType(f.TypeIndex); ok {
		v, consumed, err := d.decodeStructAt(si, payload, pos, depthBudget-1)
		return v, consumed, err
	}

	size := int(d.SDNA.TypeSizes[f.TypeIndex])
	if pos+size > len(payload) {
		return Value{}, 0, blenderr.Newf(blenderr.PayloadTooShort,
			"blob field %q needs %d bytes at offset %d", decl.Ident, size, pos)
	}
	raw := make([]byte, size)
	copy(raw, payload[pos:pos+size])
	return Value{Kind: KindBlob, TypeName: typeName, Raw: raw}, size, nil
}

// decodeArrayDims decodes a (possibly multi-dimensional) fixed-size array
// field. The innermost dimension of a char array becomes a KindString
// rather than an array of single-byte primitives (§3).
func (d *Decoder) decodeArrayDims(extents []int, typeIndex int, typeName string, payload []byte, pos, depthBudget int) (Value, int, error) {
	if len(extents) == 0 {
		return d.decodeScalar(typeIndex, typeName, payload, pos, depthBudget)
	}

	dim := extents[0]
	rest := extents[1:]

	if dim == 0 {
		return Value{Kind: KindArray, TypeName: typeName}, 0, nil
	}

	if len(rest) == 0 && typeName == "char" {
		if pos+dim > len(payload) {
			return Value{}, 0, blenderr.Newf(blenderr.PayloadTooShort,
				"char[%d] needs %d bytes at offset %d", dim, dim, pos)
		}
		raw := make([]byte, dim)
		copy(raw, payload[pos:pos+dim])
		return Value{Kind: KindString, TypeName: typeName, Raw: raw}, dim, nil
	}

	total := dim
	for _, e := range rest {
		total *= e
	}
	if total > d.Opts.MaxArrayElements {
		if d.Opts.ArrayOverflow == ArrayReject {
			return Value{}, 0, blenderr.Newf(blenderr.ArrayTooLarge,
				"array of %d elements exceeds max_array_elements %d", total, d.Opts.MaxArrayElements)
		}
	}

	elements := make([]Value, 0, dim)
	consumed := 0
	limit := dim
	if d.Opts.ArrayOverflow == ArrayTruncate && total > d.Opts.MaxArrayElements {
		// Truncate at the outermost dimension so the budget holds across
		// every nested level.
		perElem := total / dim
		limit = d.Opts.MaxArrayElements / perElem
		if limit > dim {
			limit = dim
		}
	}
	for i := 0; i < dim; i++ {
		ev, n, err := d.decodeArrayDims(rest, typeIndex, typeName, payload, pos+consumed, depthBudget)
		if err != nil {
			return Value{}, 0, err
		}
		consumed += n
		if i < limit {
			elements = append(elements, ev)
		}
	}
	return Value{Kind: KindArray, TypeName: typeName, Elements: elements}, consumed, nil
}

func (d *Decoder) decodeScalar(typeIndex int, typeName string, payload []byte, pos, depthBudget int) (Value, int, error) {
	if size, ok := primitiveSizes[typeName]; ok {
		if pos+size > len(payload) {
			return Value{}, 0, blenderr.Newf(blenderr.PayloadTooShort,
				"scalar %q needs %d bytes at offset %d", typeName, size, pos)
		}
		return decodePrimitive(typeName, payload[pos:pos+size]), size, nil
	}
	if si, ok := d.SDNA.StructForType(typeIndex); ok {
		return d.decodeStructAt(si, payload, pos, depthBudget-1)
	}
	size := int(d.SDNA.TypeSizes[typeIndex])
	if pos+size > len(payload) {
		return Value{}, 0, blenderr.Newf(blenderr.PayloadTooShort,
			"blob scalar %q needs %d bytes at offset %d", typeName, size, pos)
	}
	raw := make([]byte, size)
	copy(raw, payload[pos:pos+size])
	return Value{Kind: KindBlob, TypeName: typeName, Raw: raw}, size, nil
}

func decodePrimitive(typeName string, raw []byte) Value {
	v := Value{
		Kind:     KindPrimitive,
		TypeName: typeName,
		Raw:      append([]byte(nil), raw...),
		IsSigned: signedPrimitives[typeName],
		IsFloat:  floatPrimitives[typeName],
	}
	switch typeName {
	case "float":
		v.Float = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw)))
	case "double":
		v.Float = math.Float64frombits(binary.LittleEndian.Uint64(raw))
	case "char":
		v.Int = int64(int8(raw[0]))
	case "uchar":
		v.Uint = uint64(raw[0])
	case "short":
		v.Int = int64(int16(binary.LittleEndian.Uint16(raw)))
	case "ushort":
		v.Uint = uint64(binary.LittleEndian.Uint16(raw))
	case "int":
		v.Int = int64(int32(binary.LittleEndian.Uint32(raw)))
	case "uint":
		v.Uint = uint64(binary.LittleEndian.Uint32(raw))
	case "int64_t":
		v.Int = int64(binary.LittleEndian.Uint64(raw))
	case "uint64_t":
		v.Uint = binary.LittleEndian.Uint64(raw)
	}
	return v
}

func readPtr(payload []byte, pos int) (uint64, error) {
	if pos+8 > len(payload) {
		return 0, blenderr.Newf(blenderr.PayloadTooShort, "pointer needs 8 bytes at offset %d", pos)
	}
	return binary.LittleEndian.Uint64(payload[pos : pos+8]), nil
}
