package graph

import "github.com/helio/blend/value"

// IDGraphEdge is one edge of the whole-file ID graph: both endpoints are
// ID-root blocks.
type IDGraphEdge struct {
	SourceBlockIndex int
	SourceCanonical  uint64
	SourceIDName     string
	Edge             Edge
}

// WholeFileIDGraph scans every ID-root block and retains only edges whose
// target is itself an ID-root, optionally filtering the source nodes by
// type prefix (e.g. "OB") or exact type name (e.g. "Scene"); an empty
// string disables that filter (§4.8).
func (r *Resolver) WholeFileIDGraph(refsDepth int, typePrefix, exactType string) ([]IDGraphEdge, error) {
	roots, err := r.idRootBlocks(typePrefix, exactType)
	if err != nil {
		return nil, err
	}

	var out []IDGraphEdge
	for _, bi := range roots {
		block := r.Blocks[bi]
		v, err := r.Decoder.DecodeStruct(block.SDNAIndex, block.Payload)
		if err != nil {
			continue
		}
		srcName, _ := value.IDName(v)
		for _, e := range r.OutboundScan(v, refsDepth) {
			if !e.HasIDName {
				continue
			}
			out = append(out, IDGraphEdge{
				SourceBlockIndex: bi,
				SourceCanonical:  r.canonicalOf(bi),
				SourceIDName:     srcName,
				Edge:             e,
			})
		}
	}
	return out, nil
}
