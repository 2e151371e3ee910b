package sdna

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildDNA assembles a synthetic DNA1 payload describing:
//
//	Object { int id; }
//	World  { int id; }
//	Scene  { Object *camera; World *world; }
func buildDNA(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("SDNA")

	writeStrTable(&buf, "NAME", []string{"id", "*camera", "*world"})
	writeStrTable(&buf, "TYPE", []string{"int", "char", "Object", "World", "Scene"})

	buf.WriteString("TLEN")
	for _, sz := range []uint16{4, 1, 4, 4, 16} {
		binary.Write(&buf, binary.LittleEndian, sz)
	}
	align4(&buf)

	buf.WriteString("STRC")
	binary.Write(&buf, binary.LittleEndian, uint32(3))

	writeStruct(&buf, 2, [][2]uint16{{0, 0}})       // Object: int id
	writeStruct(&buf, 3, [][2]uint16{{0, 0}})       // World: int id
	writeStruct(&buf, 4, [][2]uint16{{2, 1}, {3, 2}}) // Scene: Object *camera; World *world;
	align4(&buf)

	return buf.Bytes()
}

func writeStrTable(buf *bytes.Buffer, tag string, names []string) {
	buf.WriteString(tag)
	binary.Write(buf, binary.LittleEndian, uint32(len(names)))
	for _, n := range names {
		buf.WriteString(n)
		buf.WriteByte(0)
	}
	align4(buf)
}

func writeStruct(buf *bytes.Buffer, typeIdx uint16, fields [][2]uint16) {
	binary.Write(buf, binary.LittleEndian, typeIdx)
	binary.Write(buf, binary.LittleEndian, uint16(len(fields)))
	for _, f := range fields {
		binary.Write(buf, binary.LittleEndian, f[0])
		binary.Write(buf, binary.LittleEndian, f[1])
	}
}

func align4(buf *bytes.Buffer) {
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
}

func TestParse(t *testing.T) {
	s, err := Parse(buildDNA(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	si, ok := s.StructForTypeName("Scene")
	if !ok {
		t.Fatal("Scene struct not found")
	}
	st := s.Structs[si]
	if len(st.Fields) != 2 {
		t.Fatalf("Scene has %d fields, want 2", len(st.Fields))
	}

	camera := s.Names[st.Fields[0].NameIndex]
	if camera.Ident != "camera" || !camera.IsPointer() {
		t.Errorf("camera declarator = %+v", camera)
	}
	world := s.Names[st.Fields[1].NameIndex]
	if world.Ident != "world" || !world.IsPointer() {
		t.Errorf("world declarator = %+v", world)
	}
}

func TestLayoutReports(t *testing.T) {
	s, err := Parse(buildDNA(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range s.LayoutReports() {
		if !r.Match {
			t.Errorf("struct %d: declared %d, sum %d", r.StructIndex, r.Declared, r.SumFields)
		}
	}
}

func TestParse_TruncatedSection(t *testing.T) {
	if _, err := Parse([]byte("SDNA")); err == nil {
		t.Fatal("expected error for truncated SDNA payload")
	}
}
