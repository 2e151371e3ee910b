package blend

import (
	"github.com/helio/blend/blenderr"
	"github.com/helio/blend/internal/blocktable"
	"github.com/helio/blend/value"
)

// Blocks returns every block in file order, including DNA1 and the
// terminating ENDB.
func (f *File) Blocks() []blocktable.Block {
	return f.blocks.Blocks
}

// BlockByCode returns the first block with the given 4-byte code.
func (f *File) BlockByCode(code string) (*blocktable.Block, bool) {
	return f.blocks.ByCode(code)
}

// AllBlocksByCode returns every block with the given 4-byte code, in file
// order.
func (f *File) AllBlocksByCode(code string) []*blocktable.Block {
	return f.blocks.AllByCode(code)
}

// StructByTypeName resolves a declared type name (e.g. "Scene") to its
// SDNA struct index.
func (f *File) StructByTypeName(name string) (int, bool) {
	return f.sdna.StructForTypeName(name)
}

func (f *File) blockIndexByCode(code string) (int, error) {
	for i := range f.blocks.Blocks {
		if f.blocks.Blocks[i].Code == code {
			return i, nil
		}
	}
	return 0, blenderr.Newf(blenderr.NoSuchBlockCode, "no block with code %q", code)
}

// BlockIndexByIDName scans every ID-root block for one whose decoded ID
// name matches idName exactly (§3 "ID block": the name still carries its
// two-letter type prefix, e.g. "OBCube").
func (f *File) BlockIndexByIDName(idName string) (int, error) {
	for i, b := range f.blocks.Blocks {
		if b.Code == blocktable.EndCode || b.Code == blocktable.DNACode || len(b.Payload) == 0 {
			continue
		}
		if b.SDNAIndex < 0 || b.SDNAIndex >= len(f.sdna.Structs) {
			continue
		}
		v, err := f.decoder.DecodeStruct(b.SDNAIndex, b.Payload)
		if err != nil {
			continue
		}
		name, ok := value.IDName(v)
		if ok && name == idName {
			return i, nil
		}
	}
	return 0, blenderr.Newf(blenderr.NoSuchIdName, "no ID-root block named %q", idName)
}

// idEntry is one ID-root block found by IDBlocks.
type idEntry struct {
	BlockIndex int
	IDName     string
	Value      value.Value
}

// IDBlocks scans every ID-root block, optionally filtered by exact type
// name or two-letter ID-name prefix (an empty string disables that
// filter). Supplements the base operation set (§4.11).
func (f *File) IDBlocks(typePrefix, exactType string) ([]idEntry, error) {
	var out []idEntry
	for i, b := range f.blocks.Blocks {
		if b.Code == blocktable.EndCode || b.Code == blocktable.DNACode || len(b.Payload) == 0 {
			continue
		}
		if b.SDNAIndex < 0 || b.SDNAIndex >= len(f.sdna.Structs) {
			continue
		}
		v, err := f.decoder.DecodeStruct(b.SDNAIndex, b.Payload)
		if err != nil {
			continue
		}
		name, ok := value.IDName(v)
		if !ok {
			continue
		}
		if exactType != "" && v.TypeName != exactType {
			continue
		}
		if typePrefix != "" && value.IDTypePrefix(name) != typePrefix {
			continue
		}
		out = append(out, idEntry{BlockIndex: i, IDName: name, Value: v})
	}
	return out, nil
}
