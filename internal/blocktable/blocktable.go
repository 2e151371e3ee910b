// Package blocktable iterates the fixed-size LargeBHead8 block headers that
// make up the bulk of a .blend container (§4.3) and exposes each block's
// payload slice and file offset without interpreting its contents.
package blocktable

import (
	"encoding/binary"

	"github.com/helio/blend/blenderr"
)

// HeaderLen is the byte size of one LargeBHead8: code[4] + sdna_nr(u32) +
// old(u64) + len(i64) + nr(i64).
const HeaderLen = 4 + 4 + 8 + 8 + 8

// EndCode is the block code that terminates iteration.
const EndCode = "ENDB"

// DNACode is the block code carrying the SDNA schema payload.
const DNACode = "DNA1"

// Block is one contiguous, immutable region of the file.
type Block struct {
	// Code is the 4-byte block tag, e.g. "SC\x00\x00", "DNA1", "ENDB".
	Code string
	// SDNAIndex indexes into SDNA.Structs, describing this block's
	// element type.
	SDNAIndex int
	// Identity is the stored 64-bit opaque pointer identity (§3).
	Identity uint64
	// Count is the number of struct elements packed into Payload.
	Count int64
	// PayloadOffset is the absolute byte offset of Payload within the
	// file's decompressed buffer.
	PayloadOffset int64
	// Payload is the block's raw bytes, a sub-slice of the file buffer.
	Payload []byte
}

// Table is the ordered list of blocks discovered between the header and
// the terminating ENDB block.
type Table struct {
	Blocks []Block
	// DNABlock indexes Blocks for the block whose Code is DNA1, or -1 if
	// none was found.
	DNABlock int
}

// Parse walks buf starting at offset start, which must point just past the
// container header, and returns every block up to and including ENDB.
//
// Trailing bytes after ENDB are ignored per §4.3.
func Parse(buf []byte, start int64) (*Table, error) {
	t := &Table{DNABlock: -1}
	pos := start

	for {
		if pos+HeaderLen > int64(len(buf)) {
			return nil, blenderr.New(blenderr.MissingEndBlock,
				"reached end of buffer without an ENDB block").AtOffset(pos)
		}
		hdr := buf[pos : pos+HeaderLen]

		code := string(hdr[0:4])
		sdnaNr := binary.LittleEndian.Uint32(hdr[4:8])
		old := binary.LittleEndian.Uint64(hdr[8:16])
		length := int64(binary.LittleEndian.Uint64(hdr[16:24]))
		nr := int64(binary.LittleEndian.Uint64(hdr[24:32]))

		if length < 0 || nr < 0 {
			return nil, blenderr.Newf(blenderr.MalformedBlockHeader,
				"block %q has negative len=%d or nr=%d", code, length, nr).
				AtOffset(pos).WithBlockCode(code)
		}

		payloadOff := pos + HeaderLen
		if payloadOff+length > int64(len(buf)) {
			return nil, blenderr.Newf(blenderr.MalformedBlockHeader,
				"block %q payload of %d bytes runs past end of file", code, length).
				AtOffset(pos).WithBlockCode(code)
		}

		b := Block{
			Code:          code,
			SDNAIndex:     int(sdnaNr),
			Identity:      old,
			Count:         nr,
			PayloadOffset: payloadOff,
			Payload:       buf[payloadOff : payloadOff+length],
		}
		t.Blocks = append(t.Blocks, b)
		if code == DNACode {
			t.DNABlock = len(t.Blocks) - 1
		}

		pos = payloadOff + length
		if code == EndCode {
			break
		}
	}

	if t.DNABlock < 0 {
		return nil, blenderr.New(blenderr.MissingSdnaBlock, "no DNA1 block present")
	}
	return t, nil
}

// ByCode returns the first block with the given code, if any.
func (t *Table) ByCode(code string) (*Block, bool) {
	for i := range t.Blocks {
		if t.Blocks[i].Code == code {
			return &t.Blocks[i], true
		}
	}
	return nil, false
}

// AllByCode returns every block with the given code, in file order.
func (t *Table) AllByCode(code string) []*Block {
	var out []*Block
	for i := range t.Blocks {
		if t.Blocks[i].Code == code {
			out = append(out, &t.Blocks[i])
		}
	}
	return out
}
