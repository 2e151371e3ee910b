package header

import "testing"

func buildHeader(pointerSigil, endianSigil byte, version, fileFormat string) []byte {
	buf := make([]byte, TotalLen)
	copy(buf, "BLENDER")
	buf[MagicLen+0] = pointerSigil
	buf[MagicLen+1] = endianSigil
	copy(buf[MagicLen+2:], version)
	copy(buf[MagicLen+5:], fileFormat)
	return buf
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		buf     []byte
		wantErr bool
	}{
		{
			name: "BLENDER-v503 little endian 8 byte pointers",
			buf:  buildHeader('-', 'v', "503", "01"),
		},
		{
			name:    "unsupported pointer size sigil",
			buf:     buildHeader('x', 'v', "503", "01"),
			wantErr: true,
		},
		{
			name:    "big endian unsupported",
			buf:     buildHeader('-', 'V', "503", "01"),
			wantErr: true,
		},
		{
			name:    "blender version below minimum",
			buf:     buildHeader('-', 'v', "280", "01"),
			wantErr: true,
		},
		{
			name:    "unsupported file format version",
			buf:     buildHeader('-', 'v', "503", "02"),
			wantErr: true,
		},
		{
			name:    "32-bit pointers unsupported",
			buf:     buildHeader('_', 'v', "503", "01"),
			wantErr: true,
		},
		{
			name:    "missing magic",
			buf:     append([]byte("NOTBLEND"), make([]byte, 12)...),
			wantErr: true,
		},
		{
			name:    "buffer too short",
			buf:     []byte("BLEN"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Parse(tt.buf)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.PointerSize != 8 {
				t.Errorf("PointerSize = %d, want 8", h.PointerSize)
			}
			if h.Endian != Little {
				t.Errorf("Endian = %v, want Little", h.Endian)
			}
			if h.BlenderVersion != 503 {
				t.Errorf("BlenderVersion = %d, want 503", h.BlenderVersion)
			}
			if h.FileFormatVersion != 1 {
				t.Errorf("FileFormatVersion = %d, want 1", h.FileFormatVersion)
			}
		})
	}
}
