package graph

import "github.com/helio/blend/value"

// InboundEdge is an Edge discovered during an inbound-reference scan,
// annotated with the ID-root block it was found on.
type InboundEdge struct {
	SourceBlockIndex int
	SourceIDName     string
	Edge             Edge
}

// InboundReferences iterates every ID-root block in the file, runs an
// outbound scan on each (bounded by refsDepth), and keeps only edges whose
// resolved target canonicalizes to targetCanonical (§4.8).
func (r *Resolver) InboundReferences(targetCanonical uint64, refsDepth int) ([]InboundEdge, error) {
	roots, err := r.idRootBlocks("", "")
	if err != nil {
		return nil, err
	}

	var out []InboundEdge
	for _, bi := range roots {
		block := r.Blocks[bi]
		v, err := r.Decoder.DecodeStruct(block.SDNAIndex, block.Payload)
		if err != nil {
			continue
		}
		srcName, _ := value.IDName(v)
		for _, e := range r.OutboundScan(v, refsDepth) {
			if e.TargetCanonical == targetCanonical {
				out = append(out, InboundEdge{SourceBlockIndex: bi, SourceIDName: srcName, Edge: e})
			}
		}
	}
	return out, nil
}
