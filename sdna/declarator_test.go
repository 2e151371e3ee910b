package sdna

import "testing"

func TestParseDeclarator(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantIdent string
		wantPtr  int
		wantExt  []int
		wantFunc bool
	}{
		{
			name:      "plain field",
			raw:       "id",
			wantIdent: "id",
		},
		{
			name:      "pointer",
			raw:       "*next",
			wantIdent: "next",
			wantPtr:   1,
		},
		{
			name:      "double pointer",
			raw:       "**data",
			wantIdent: "data",
			wantPtr:   2,
		},
		{
			name:      "array",
			raw:       "mat[4][4]",
			wantIdent: "mat",
			wantExt:   []int{4, 4},
		},
		{
			name:      "zero-length array",
			raw:       "foo[0]",
			wantIdent: "foo",
			wantExt:   []int{0},
		},
		{
			name:      "function pointer",
			raw:       "(*cb)()",
			wantIdent: "cb",
			wantPtr:   1,
			wantFunc:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ParseDeclarator(tt.raw)
			if d.Ident != tt.wantIdent {
				t.Errorf("Ident = %q, want %q", d.Ident, tt.wantIdent)
			}
			if d.PointerDepth != tt.wantPtr {
				t.Errorf("PointerDepth = %d, want %d", d.PointerDepth, tt.wantPtr)
			}
			if len(d.ArrayExtents) != len(tt.wantExt) {
				t.Fatalf("ArrayExtents = %v, want %v", d.ArrayExtents, tt.wantExt)
			}
			for i := range tt.wantExt {
				if d.ArrayExtents[i] != tt.wantExt[i] {
					t.Errorf("ArrayExtents[%d] = %d, want %d", i, d.ArrayExtents[i], tt.wantExt[i])
				}
			}
			if d.IsFunctionPointer != tt.wantFunc {
				t.Errorf("IsFunctionPointer = %v, want %v", d.IsFunctionPointer, tt.wantFunc)
			}
		})
	}
}

func TestDeclarator_ElementCount(t *testing.T) {
	if n := ParseDeclarator("id").ElementCount(); n != 1 {
		t.Errorf("scalar ElementCount = %d, want 1", n)
	}
	if n := ParseDeclarator("mat[4][4]").ElementCount(); n != 16 {
		t.Errorf("mat[4][4] ElementCount = %d, want 16", n)
	}
	if n := ParseDeclarator("foo[0]").ElementCount(); n != 0 {
		t.Errorf("foo[0] ElementCount = %d, want 0", n)
	}
}

func TestDeclarator_IsArrayIsPointer(t *testing.T) {
	fp := ParseDeclarator("(*cb)()")
	if !fp.IsPointer() {
		t.Error("function pointer should report IsPointer")
	}
	if fp.IsArray() {
		t.Error("function pointer should not report IsArray")
	}

	arr := ParseDeclarator("foo[0]")
	if !arr.IsArray() {
		t.Error("foo[0] should report IsArray")
	}
	if arr.IsPointer() {
		t.Error("foo[0] should not report IsPointer")
	}
}
