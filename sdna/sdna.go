// Package sdna decodes a .blend file's embedded schema block (§4.4): the
// parallel Names/Types/TypeSizes tables and the Structs table that
// describes every struct layout used elsewhere in the file.
package sdna

import (
	"encoding/binary"

	"github.com/helio/blend/blenderr"
)

// Field is one (type, name) pair in a struct's field list.
type Field struct {
	TypeIndex int
	NameIndex int
}

// Struct describes one struct layout: its own type and an ordered field
// list, in declaration order.
type Struct struct {
	TypeIndex int
	Fields    []Field
}

// SDNA is the fully parsed schema.
type SDNA struct {
	Names     []Declarator
	Types     []string
	TypeSizes []uint16
	Structs   []Struct

	structForType map[int]int
	typeIndexByName map[string]int
}

const sectionMagic = "SDNA"

// Parse decodes a DNA1 block payload into an SDNA schema.
func Parse(payload []byte) (*SDNA, error) {
	c := &cursor{buf: payload}

	if err := c.expectTag(sectionMagic); err != nil {
		return nil, err
	}

	names, err := parseStringTable(c, "NAME")
	if err != nil {
		return nil, err
	}
	types, err := parseStringTable(c, "TYPE")
	if err != nil {
		return nil, err
	}

	if err := c.expectTag("TLEN"); err != nil {
		return nil, err
	}
	sizes := make([]uint16, len(types))
	for i := range sizes {
		v, err := c.u16()
		if err != nil {
			return nil, blenderr.Wrap(err, blenderr.SdnaSectionMissing, "reading TLEN sizes")
		}
		sizes[i] = v
	}
	c.align4()

	if err := c.expectTag("STRC"); err != nil {
		return nil, err
	}
	structCount, err := c.u32()
	if err != nil {
		return nil, blenderr.Wrap(err, blenderr.SdnaSectionMissing, "reading STRC count")
	}

	structs := make([]Struct, structCount)
	for i := range structs {
		typeIdx, err := c.u16()
		if err != nil {
			return nil, blenderr.Wrap(err, blenderr.SdnaSectionMissing, "reading struct type index")
		}
		fieldCount, err := c.u16()
		if err != nil {
			return nil, blenderr.Wrap(err, blenderr.SdnaSectionMissing, "reading struct field count")
		}
		fields := make([]Field, fieldCount)
		for j := range fields {
			ft, err := c.u16()
			if err != nil {
				return nil, blenderr.Wrap(err, blenderr.SdnaSectionMissing, "reading field type index")
			}
			fn, err := c.u16()
			if err != nil {
				return nil, blenderr.Wrap(err, blenderr.SdnaSectionMissing, "reading field name index")
			}
			fields[j] = Field{TypeIndex: int(ft), NameIndex: int(fn)}
		}
		structs[i] = Struct{TypeIndex: int(typeIdx), Fields: fields}
	}
	c.align4()

	decls := make([]Declarator, len(names))
	for i, n := range names {
		decls[i] = ParseDeclarator(n)
	}

	s := &SDNA{
		Names:     decls,
		Types:     types,
		TypeSizes: sizes,
		Structs:   structs,
	}
	if err := s.validateAndIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SDNA) validateAndIndex() error {
	s.structForType = make(map[int]int, len(s.Structs))
	s.typeIndexByName = make(map[string]int, len(s.Types))
	for i, t := range s.Types {
		s.typeIndexByName[t] = i
	}

	for si, st := range s.Structs {
		if st.TypeIndex < 0 || st.TypeIndex >= len(s.Types) {
			return blenderr.Newf(blenderr.SdnaIndexOutOfRange,
				"struct %d has out-of-range type index %d", si, st.TypeIndex)
		}
		for _, f := range st.Fields {
			if f.TypeIndex < 0 || f.TypeIndex >= len(s.Types) {
				return blenderr.Newf(blenderr.SdnaIndexOutOfRange,
					"struct %d field has out-of-range type index %d", si, f.TypeIndex)
			}
			if f.NameIndex < 0 || f.NameIndex >= len(s.Names) {
				return blenderr.Newf(blenderr.SdnaIndexOutOfRange,
					"struct %d field has out-of-range name index %d", si, f.NameIndex)
			}
		}
		s.structForType[st.TypeIndex] = si
	}
	return nil
}

// StructForType returns the struct index describing typeIndex, if any.
func (s *SDNA) StructForType(typeIndex int) (int, bool) {
	si, ok := s.structForType[typeIndex]
	return si, ok
}

// TypeIndexByName looks up a type by its declared name (e.g. "Scene").
func (s *SDNA) TypeIndexByName(name string) (int, bool) {
	ti, ok := s.typeIndexByName[name]
	return ti, ok
}

// StructForTypeName composes TypeIndexByName and StructForType.
func (s *SDNA) StructForTypeName(name string) (int, bool) {
	ti, ok := s.TypeIndexByName(name)
	if !ok {
		return 0, false
	}
	return s.StructForType(ti)
}

// FieldSize returns the byte size of one field, accounting for pointer
// indirection and array extents: pointers are always 8 bytes (pointerSize
// is fixed at 8 for the versions this module supports) times the element
// count, arrays are element size times count, and everything else is the
// element type's declared TypeSizes entry.
func (s *SDNA) FieldSize(f Field) int {
	decl := s.Names[f.NameIndex]
	elems := decl.ElementCount()
	if decl.IsPointer() {
		return 8 * elems
	}
	return int(s.TypeSizes[f.TypeIndex]) * elems
}

// StructSize sums FieldSize across every field of struct si.
func (s *SDNA) StructSize(si int) int {
	total := 0
	for _, f := range s.Structs[si].Fields {
		total += s.FieldSize(f)
	}
	return total
}

// LayoutReport compares every struct's declared TypeSizes entry against
// the sum of its field sizes, independent of whether strict_layout is
// enforced at decode time (§4.11).
type LayoutReport struct {
	StructIndex int
	Declared    uint16
	SumFields   int
	Match       bool
}

// LayoutReports builds a LayoutReport for every struct in the schema.
func (s *SDNA) LayoutReports() []LayoutReport {
	out := make([]LayoutReport, len(s.Structs))
	for i, st := range s.Structs {
		declared := s.TypeSizes[st.TypeIndex]
		sum := s.StructSize(i)
		out[i] = LayoutReport{
			StructIndex: i,
			Declared:    declared,
			SumFields:   sum,
			Match:       int(declared) == sum,
		}
	}
	return out
}

func parseStringTable(c *cursor, tag string) ([]string, error) {
	if err := c.expectTag(tag); err != nil {
		return nil, err
	}
	count, err := c.u32()
	if err != nil {
		return nil, blenderr.Wrapf(err, blenderr.SdnaSectionMissing, "reading %s count", tag)
	}
	out := make([]string, count)
	for i := range out {
		str, err := c.cString()
		if err != nil {
			return nil, blenderr.Wrapf(err, blenderr.SdnaSectionMissing, "reading %s[%d]", tag, i)
		}
		out[i] = str
	}
	c.align4()
	return out, nil
}

// cursor is a minimal forward-only reader over an SDNA payload.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) expectTag(tag string) error {
	if c.pos+4 > len(c.buf) {
		return blenderr.Newf(blenderr.SdnaSectionMissing, "expected %q tag, ran out of data", tag)
	}
	got := string(c.buf[c.pos : c.pos+4])
	if got != tag {
		return blenderr.Newf(blenderr.SdnaSectionMissing, "expected %q tag, got %q", tag, got)
	}
	c.pos += 4
	return nil
}

func (c *cursor) u32() (int, error) {
	if c.pos+4 > len(c.buf) {
		return 0, blenderr.New(blenderr.PayloadTooShort, "reading u32")
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos : c.pos+4])
	c.pos += 4
	return int(v), nil
}

func (c *cursor) u16() (uint16, error) {
	if c.pos+2 > len(c.buf) {
		return 0, blenderr.New(blenderr.PayloadTooShort, "reading u16")
	}
	v := binary.LittleEndian.Uint16(c.buf[c.pos : c.pos+2])
	c.pos += 2
	return v, nil
}

func (c *cursor) cString() (string, error) {
	start := c.pos
	for c.pos < len(c.buf) {
		if c.buf[c.pos] == 0 {
			s := string(c.buf[start:c.pos])
			c.pos++
			return s, nil
		}
		c.pos++
	}
	return "", blenderr.New(blenderr.PayloadTooShort, "unterminated string")
}

func (c *cursor) align4() {
	if rem := c.pos % 4; rem != 0 {
		c.pos += 4 - rem
	}
}
