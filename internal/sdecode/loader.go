// Package sdecode implements the stream-framing layer: it turns a possibly
// zstd-compressed byte source into a plain buffer beginning with the
// BLENDER magic, ready for header parsing.
package sdecode

import (
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/helio/blend/blenderr"
)

// zstdMagic is the four-byte frame magic for a zstd stream (little-endian
// 0xFD2FB528).
var zstdMagic = [4]byte{0x28, 0xB5, 0x2F, 0xFD}

const blenderMagic = "BLENDER"

// DefaultOutputCapMultiple bounds decompression output to this multiple of
// the compressed input size, absent a smaller DefaultOutputCapAbsolute.
const DefaultOutputCapMultiple = 20

// DefaultOutputCapAbsolute is a hard ceiling on decompressed size
// regardless of input size, protecting against tiny, maliciously crafted
// frames that claim an enormous decompressed length.
const DefaultOutputCapAbsolute = 2 << 30 // 2 GiB

// Options configures Load's decompression cap.
type Options struct {
	// OutputCapMultiple bounds decompressed size to this multiple of the
	// compressed input length. Zero means DefaultOutputCapMultiple.
	OutputCapMultiple int64
	// OutputCapAbsolute is an additional, absolute ceiling. Zero means
	// DefaultOutputCapAbsolute.
	OutputCapAbsolute int64
}

func (o Options) cap(inputLen int) int64 {
	mult := o.OutputCapMultiple
	if mult == 0 {
		mult = DefaultOutputCapMultiple
	}
	abs := o.OutputCapAbsolute
	if abs == 0 {
		abs = DefaultOutputCapAbsolute
	}
	byMultiple := int64(inputLen) * mult
	if byMultiple <= 0 || byMultiple > abs {
		return abs
	}
	return byMultiple
}

// Load reads all of r, transparently decompresses a zstd frame if present,
// and returns a buffer whose first seven bytes are "BLENDER".
//
// Errors are tagged blenderr.UnknownMagic, blenderr.DecompressFailed, or
// blenderr.OutputTooLarge; a failure to read r is tagged
// blenderr.UnexpectedEOF.
func Load(r io.Reader, opts Options) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, blenderr.Wrap(err, blenderr.UnexpectedEOF, "reading input stream")
	}
	return LoadBytes(raw, opts)
}

// LoadBytes is Load for an already fully-read byte slice.
func LoadBytes(raw []byte, opts Options) ([]byte, error) {
	if bytes.HasPrefix(raw, []byte(blenderMagic)) {
		return raw, nil
	}
	if bytes.HasPrefix(raw, zstdMagic[:]) {
		return decompress(raw, opts)
	}
	return nil, blenderr.New(blenderr.UnknownMagic,
		"input is neither a BLENDER header nor a zstd frame")
}

func decompress(raw []byte, opts Options) ([]byte, error) {
	cap := opts.cap(len(raw))

	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(cap)))
	if err != nil {
		return nil, blenderr.Wrap(err, blenderr.DecompressFailed, "constructing zstd decoder")
	}
	defer dec.Close()

	out, err := dec.DecodeAll(raw, nil)
	if err != nil {
		if isResourceLimitErr(err) {
			return nil, blenderr.Wrap(err, blenderr.OutputTooLarge,
				"decompressed output exceeds configured cap")
		}
		return nil, blenderr.Wrap(err, blenderr.DecompressFailed, "decompressing zstd frame")
	}
	if int64(len(out)) > cap {
		return nil, blenderr.Newf(blenderr.OutputTooLarge,
			"decompressed output %d bytes exceeds cap %d", len(out), cap)
	}
	if !bytes.HasPrefix(out, []byte(blenderMagic)) {
		return nil, blenderr.New(blenderr.UnknownMagic,
			"decompressed stream does not begin with BLENDER")
	}
	return out, nil
}

// isResourceLimitErr recognizes the zstd decoder's own memory-limit error,
// which klauspost/compress surfaces as a plain error rather than a typed
// one; we match by substring since that is the stable part of its message.
func isResourceLimitErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "exceeded") || strings.Contains(msg, "exceeds") || strings.Contains(msg, "memory")
}
