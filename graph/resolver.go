// Package graph implements the pointer-graph operations built on top of
// the field-path chase primitives: outbound scans, BFS traversal, inbound
// reference search, shortest-route search, the whole-file ID graph, and
// the linked-list walker (§4.8).
package graph

import (
	"github.com/helio/blend/internal/blocktable"
	"github.com/helio/blend/pointerindex"
	"github.com/helio/blend/sdna"
	"github.com/helio/blend/value"
)

// Resolver bundles the file-wide state every graph operation needs:
// blocks to canonicalize and decode against, the schema, and the pointer
// index.
type Resolver struct {
	Blocks  []blocktable.Block
	SDNA    *sdna.SDNA
	Index   *pointerindex.Index
	Decoder *value.Decoder
}

// resolved is one successfully dereferenced pointer: which block it landed
// in, that block's canonical identity, and the decoded element.
type resolved struct {
	blockIndex int
	canonical  uint64
	element    value.Value
}

// resolvePointer dereferences a pointer-kind Value one hop, the same way
// fieldpath.Chaser.dereference does, but without cycle bookkeeping: graph
// operations track visited canonical nodes themselves, at the node level
// rather than the per-hop level fieldpath needs.
func (r *Resolver) resolvePointer(v value.Value) (resolved, bool) {
	if v.Kind == value.KindFuncPointer || v.IsNull() {
		return resolved{}, false
	}
	target, status := r.Index.Resolve(v.Address)
	if status == pointerindex.StatusUnresolved {
		return resolved{}, false
	}
	block := r.Blocks[target.BlockIndex]
	stride := r.Decoder.StructStride(block.SDNAIndex)
	elemIdx, _ := target.Split(int64(stride))
	decoded, err := r.Decoder.DecodeElementAt(block.SDNAIndex, block.Payload, elemIdx)
	if err != nil {
		return resolved{}, false
	}
	return resolved{blockIndex: target.BlockIndex, canonical: block.Identity, element: decoded}, true
}

// canonicalOf returns the canonical identity of the block at blockIndex.
func (r *Resolver) canonicalOf(blockIndex int) uint64 {
	return r.Blocks[blockIndex].Identity
}

// idRootBlocks returns the index of every block whose first element
// decodes as an ID-root, optionally filtered by exact type name or
// two-letter type prefix (empty string disables a filter).
func (r *Resolver) idRootBlocks(typePrefix, exactType string) ([]int, error) {
	var out []int
	for i, b := range r.Blocks {
		if b.Code == blocktable.EndCode || b.Code == blocktable.DNACode || len(b.Payload) == 0 {
			continue
		}
		if b.SDNAIndex < 0 || b.SDNAIndex >= len(r.SDNA.Structs) {
			continue
		}
		v, err := r.Decoder.DecodeStruct(b.SDNAIndex, b.Payload)
		if err != nil {
			continue
		}
		idName, ok := value.IDName(v)
		if !ok {
			continue
		}
		if exactType != "" && v.TypeName != exactType {
			continue
		}
		if typePrefix != "" && value.IDTypePrefix(idName) != typePrefix {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}
