// Package header parses the fixed 19-byte container header: the 7-byte
// "BLENDER" magic plus the 12-byte versioned header that follows it, and
// enforces the subset of encodings this module supports (§4.2).
package header

import (
	"strconv"

	"github.com/helio/blend/blenderr"
)

// MagicLen is the length of the leading "BLENDER" magic.
const MagicLen = 7

// BodyLen is the length of the fixed header body that follows the magic.
const BodyLen = 12

// TotalLen is MagicLen + BodyLen: the number of bytes consumed before
// block-table iteration begins.
const TotalLen = MagicLen + BodyLen

// Endian identifies the header's declared byte order.
type Endian byte

const (
	Little Endian = 'v'
	Big    Endian = 'V'
)

// Header is the parsed container header.
type Header struct {
	// PointerSize is 4 or 8, decoded from the '_'/'-' sigil.
	PointerSize int
	// Endian is the declared byte order.
	Endian Endian
	// BlenderVersion is the 3-digit Blender version, e.g. 503 for 5.3.
	BlenderVersion int
	// FileFormatVersion is the 2-digit container format version.
	FileFormatVersion int
	// Raw is the 12 header bytes following the magic, kept for
	// diagnostics and round-trip tests.
	Raw [BodyLen]byte
}

// Parse reads TotalLen bytes from the front of buf and validates them
// against the encodings this module supports: little-endian, 8-byte
// pointers, file format version 1, Blender version >= 500.
//
// buf must already have had its magic confirmed by the stream loader;
// Parse re-checks it anyway since it is cheap and this function may be
// called directly in tests.
func Parse(buf []byte) (*Header, error) {
	if len(buf) < TotalLen {
		return nil, blenderr.Newf(blenderr.UnexpectedEOF,
			"need %d bytes for header, got %d", TotalLen, len(buf))
	}
	if string(buf[:MagicLen]) != "BLENDER" {
		return nil, blenderr.New(blenderr.UnknownMagic, "missing BLENDER magic")
	}

	body := buf[MagicLen:TotalLen]
	h := &Header{}
	copy(h.Raw[:], body)

	switch body[0] {
	case '_':
		h.PointerSize = 4
	case '-':
		h.PointerSize = 8
	default:
		return nil, blenderr.Newf(blenderr.UnsupportedPointerSize,
			"unrecognized pointer-size sigil %q", body[0])
	}

	h.Endian = Endian(body[1])
	if h.Endian != Little {
		return nil, blenderr.Newf(blenderr.UnsupportedEndian,
			"unrecognized endian sigil %q", body[1])
	}

	ver, err := strconv.Atoi(string(body[2:5]))
	if err != nil {
		return nil, blenderr.Wrap(err, blenderr.UnsupportedBlenderVersion,
			"blender version field is not numeric")
	}
	h.BlenderVersion = ver

	ff, err := strconv.Atoi(string(body[5:7]))
	if err != nil {
		return nil, blenderr.Wrap(err, blenderr.UnsupportedFileFormat,
			"file format version field is not numeric")
	}
	h.FileFormatVersion = ff

	if h.BlenderVersion < 500 {
		return nil, blenderr.Newf(blenderr.UnsupportedBlenderVersion,
			"blender version %d is below the minimum supported 500", h.BlenderVersion)
	}
	if h.FileFormatVersion != 1 {
		return nil, blenderr.Newf(blenderr.UnsupportedFileFormat,
			"file format version %d, only 1 is supported", h.FileFormatVersion)
	}
	if h.PointerSize != 8 {
		return nil, blenderr.Newf(blenderr.UnsupportedPointerSize,
			"pointer size %d, only 8 is supported", h.PointerSize)
	}

	return h, nil
}
