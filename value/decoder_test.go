package value

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/helio/blend/sdna"
)

// buildSceneSchema mirrors the schema built by sdna's own tests:
//
//	Object { int id; }
//	World  { int id; }
//	Scene  { Object *camera; World *world; }
func buildSceneSchema(t *testing.T) *sdna.SDNA {
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
	writeStruct(&buf, 2, [][2]uint16{{0, 0}})
	writeStruct(&buf, 3, [][2]uint16{{0, 0}})
	writeStruct(&buf, 4, [][2]uint16{{2, 1}, {3, 2}})
	align4(&buf)

	s, err := sdna.Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("building test schema: %v", err)
	}
	return s
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

func scenePayload(cameraAddr, worldAddr uint64) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], cameraAddr)
	binary.LittleEndian.PutUint64(buf[8:16], worldAddr)
	return buf
}

func TestDecoder_DecodeStruct(t *testing.T) {
	s := buildSceneSchema(t)
	sceneIdx, _ := s.StructForTypeName("Scene")
	d := NewDecoder(s, DefaultOptions())

	v, err := d.DecodeStruct(sceneIdx, scenePayload(0, 0x2000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	camera, _ := v.Field("camera")
	if !camera.IsNull() {
		t.Errorf("camera should be null, got address 0x%x", camera.Address)
	}
	world, _ := v.Field("world")
	if world.Address != 0x2000 {
		t.Errorf("world address = 0x%x, want 0x2000", world.Address)
	}
}

func TestDecoder_DecodeBlockElements(t *testing.T) {
	s := buildSceneSchema(t)
	sceneIdx, _ := s.StructForTypeName("Scene")
	d := NewDecoder(s, DefaultOptions())

	var payload []byte
	payload = append(payload, scenePayload(0x1000, 0x2000)...)
	payload = append(payload, scenePayload(0, 0x3000)...)

	elems, err := d.DecodeBlockElements(sceneIdx, payload, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elems) != 2 {
		t.Fatalf("got %d elements, want 2", len(elems))
	}
	c0, _ := elems[0].Field("camera")
	if c0.Address != 0x1000 {
		t.Errorf("elems[0].camera = 0x%x, want 0x1000", c0.Address)
	}
	c1, _ := elems[1].Field("camera")
	if !c1.IsNull() {
		t.Errorf("elems[1].camera should be null")
	}
}

func TestDecoder_StrictLayoutMismatch(t *testing.T) {
	s := buildSceneSchema(t)
	// Corrupt the declared size of Scene so it no longer matches its
	// fields' summed size.
	sceneIdx, _ := s.StructForTypeName("Scene")
	s.TypeSizes[s.Structs[sceneIdx].TypeIndex] = 99

	opts := DefaultOptions()
	opts.StrictLayout = true
	d := NewDecoder(s, opts)

	if _, err := d.DecodeStruct(sceneIdx, scenePayload(0, 0)); err == nil {
		t.Fatal("expected layout mismatch error")
	}
}

func TestDecoder_PayloadTooShort(t *testing.T) {
	s := buildSceneSchema(t)
	sceneIdx, _ := s.StructForTypeName("Scene")
	d := NewDecoder(s, DefaultOptions())

	if _, err := d.DecodeStruct(sceneIdx, make([]byte, 4)); err == nil {
		t.Fatal("expected error decoding truncated payload")
	}
}

// buildWidgetSchema describes:
//
//	Widget { char (*cb)(); int mat[2][2]; int foo[0]; }
func buildWidgetSchema(t *testing.T) *sdna.SDNA {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("SDNA")

	writeStrTable(&buf, "NAME", []string{"(*cb)()", "mat[2][2]", "foo[0]"})
	writeStrTable(&buf, "TYPE", []string{"int", "char", "Widget"})

	buf.WriteString("TLEN")
	for _, sz := range []uint16{4, 1, 24} {
		binary.Write(&buf, binary.LittleEndian, sz)
	}
	align4(&buf)

	buf.WriteString("STRC")
	binary.Write(&buf, binary.LittleEndian, uint32(1))
	writeStruct(&buf, 2, [][2]uint16{{1, 0}, {0, 1}, {0, 2}})
	align4(&buf)

	s, err := sdna.Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("building widget schema: %v", err)
	}
	return s
}

func TestDecoder_DecodeFuncPointer(t *testing.T) {
	s := buildWidgetSchema(t)
	widgetIdx, _ := s.StructForTypeName("Widget")
	d := NewDecoder(s, DefaultOptions())

	payload := make([]byte, 24)
	binary.LittleEndian.PutUint64(payload[0:8], 0xdeadbeef)

	v, err := d.DecodeStruct(widgetIdx, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cb, ok := v.Field("cb")
	if !ok {
		t.Fatal("cb field not found")
	}
	if cb.Kind != KindFuncPointer {
		t.Errorf("cb.Kind = %v, want KindFuncPointer", cb.Kind)
	}
	if cb.Address != 0xdeadbeef {
		t.Errorf("cb.Address = 0x%x, want 0xdeadbeef", cb.Address)
	}
}

func TestDecoder_DecodeMultiDimArray(t *testing.T) {
	s := buildWidgetSchema(t)
	widgetIdx, _ := s.StructForTypeName("Widget")
	d := NewDecoder(s, DefaultOptions())

	payload := make([]byte, 24)
	for i, n := range []int32{1, 2, 3, 4} {
		binary.LittleEndian.PutUint32(payload[8+i*4:12+i*4], uint32(n))
	}

	v, err := d.DecodeStruct(widgetIdx, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mat, ok := v.Field("mat")
	if !ok {
		t.Fatal("mat field not found")
	}
	if mat.Kind != KindArray || len(mat.Elements) != 2 {
		t.Fatalf("mat = %+v, want 2-element array", mat)
	}
	row0 := mat.Elements[0]
	if row0.Kind != KindArray || len(row0.Elements) != 2 {
		t.Fatalf("mat[0] = %+v, want 2-element array", row0)
	}
	if row0.Elements[0].Int != 1 || row0.Elements[1].Int != 2 {
		t.Errorf("mat[0] = [%d, %d], want [1, 2]", row0.Elements[0].Int, row0.Elements[1].Int)
	}
	row1 := mat.Elements[1]
	if row1.Elements[0].Int != 3 || row1.Elements[1].Int != 4 {
		t.Errorf("mat[1] = [%d, %d], want [3, 4]", row1.Elements[0].Int, row1.Elements[1].Int)
	}
}

func TestDecoder_DecodeZeroLengthArray(t *testing.T) {
	s := buildWidgetSchema(t)
	widgetIdx, _ := s.StructForTypeName("Widget")
	d := NewDecoder(s, DefaultOptions())

	v, err := d.DecodeStruct(widgetIdx, make([]byte, 24))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	foo, ok := v.Field("foo")
	if !ok {
		t.Fatal("foo field not found")
	}
	if foo.Kind != KindArray {
		t.Errorf("foo.Kind = %v, want KindArray", foo.Kind)
	}
	if len(foo.Elements) != 0 {
		t.Errorf("foo.Elements = %v, want empty", foo.Elements)
	}
}
