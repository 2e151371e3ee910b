package blend

import (
	"github.com/helio/blend/blenderr"
	"github.com/helio/blend/pointerindex"
	"github.com/helio/blend/value"
)

// DecodeBlock decodes the first element of the block at blockIndex (§4.5).
func (f *File) DecodeBlock(blockIndex int) (value.Value, error) {
	if blockIndex < 0 || blockIndex >= len(f.blocks.Blocks) {
		return value.Value{}, blenderr.Newf(blenderr.IndexOutOfRange, "block index %d out of range", blockIndex)
	}
	b := f.blocks.Blocks[blockIndex]
	return f.decoder.DecodeStruct(b.SDNAIndex, b.Payload)
}

// DecodeBlockAll decodes every element packed into the block at
// blockIndex, strided by the struct's declared size (§4.5).
func (f *File) DecodeBlockAll(blockIndex int) ([]value.Value, error) {
	if blockIndex < 0 || blockIndex >= len(f.blocks.Blocks) {
		return nil, blenderr.Newf(blenderr.IndexOutOfRange, "block index %d out of range", blockIndex)
	}
	b := f.blocks.Blocks[blockIndex]
	return f.decoder.DecodeBlockElements(b.SDNAIndex, b.Payload, b.Count)
}

// DecodedPointer is the result of resolving and decoding a pointer
// address to a struct instance.
type DecodedPointer struct {
	BlockIndex int
	Value      value.Value
}

// DecodePointer resolves address through the pointer index and decodes
// the struct instance it lands on. A null address or one that does not
// resolve to any block returns blenderr.NullPointer / UnresolvedPointer
// respectively (§4.6).
func (f *File) DecodePointer(address uint64) (DecodedPointer, error) {
	target, status := f.index.Resolve(address)
	switch status {
	case pointerindex.StatusNull:
		return DecodedPointer{}, blenderr.New(blenderr.NullPointer, "address is null")
	case pointerindex.StatusUnresolved:
		return DecodedPointer{}, blenderr.Newf(blenderr.UnresolvedPointer, "address 0x%x did not resolve to any block", address)
	}

	block := f.blocks.Blocks[target.BlockIndex]
	stride := f.decoder.StructStride(block.SDNAIndex)
	elemIdx, _ := target.Split(int64(stride))
	v, err := f.decoder.DecodeElementAt(block.SDNAIndex, block.Payload, elemIdx)
	if err != nil {
		return DecodedPointer{}, err
	}
	return DecodedPointer{BlockIndex: target.BlockIndex, Value: v}, nil
}
