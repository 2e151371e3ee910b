package blend

import (
	"github.com/helio/blend/fieldpath"
	"github.com/helio/blend/graph"
)

func (f *File) resolver() *graph.Resolver {
	return &graph.Resolver{Blocks: f.blocks.Blocks, SDNA: f.sdna, Index: f.index, Decoder: f.decoder}
}

// OutboundScan enumerates every pointer-valued field reachable from the
// block at blockIndex within refsDepth sub-struct levels (§4.8).
func (f *File) OutboundScan(blockIndex int, refsDepth int) ([]graph.Edge, error) {
	v, err := f.DecodeBlock(blockIndex)
	if err != nil {
		return nil, err
	}
	return f.resolver().OutboundScan(v, refsDepth), nil
}

// BFS breadth-first explores the pointer graph reachable from the block
// at blockIndex, bounded by budget (§4.8).
func (f *File) BFS(blockIndex int, budget graph.Budget) (graph.BFSResult, error) {
	v, err := f.DecodeBlock(blockIndex)
	if err != nil {
		return graph.BFSResult{}, err
	}
	return f.resolver().BFS(blockIndex, v, budget), nil
}

// InboundReferences finds every outbound edge, across every ID-root
// block in the file, whose resolved target is the block at
// targetBlockIndex (§4.8).
func (f *File) InboundReferences(targetBlockIndex int, refsDepth int) ([]graph.InboundEdge, error) {
	if targetBlockIndex < 0 || targetBlockIndex >= len(f.blocks.Blocks) {
		return nil, nil
	}
	target := f.blocks.Blocks[targetBlockIndex].Identity
	return f.resolver().InboundReferences(target, refsDepth)
}

// ShortestRoute searches for the shortest pointer-edge path from the
// block at fromBlockIndex to the block at toBlockIndex (§4.8).
func (f *File) ShortestRoute(fromBlockIndex, toBlockIndex int, budget graph.Budget) (graph.RouteResult, error) {
	if fromBlockIndex < 0 || fromBlockIndex >= len(f.blocks.Blocks) ||
		toBlockIndex < 0 || toBlockIndex >= len(f.blocks.Blocks) {
		return graph.RouteResult{}, nil
	}
	from := f.blocks.Blocks[fromBlockIndex].Identity
	to := f.blocks.Blocks[toBlockIndex].Identity
	return f.resolver().ShortestRoute(from, to, budget)
}

// WholeFileIDGraph builds the whole-file ID-to-ID graph, optionally
// filtered by source type prefix or exact type name (§4.8).
func (f *File) WholeFileIDGraph(refsDepth int, typePrefix, exactType string) ([]graph.IDGraphEdge, error) {
	return f.resolver().WholeFileIDGraph(refsDepth, typePrefix, exactType)
}

// LinkedListWalk walks a singly-linked list starting from the block at
// rootBlockIndex, following nextField up to limit hops (§4.8). An empty
// startPathStr starts the walk at the root block itself; otherwise it is
// chased first to position the walk's actual starting node.
func (f *File) LinkedListWalk(rootBlockIndex int, startPathStr, nextField string, limit int) ([]graph.Step, fieldpath.StopReason, error) {
	root, err := f.DecodeBlock(rootBlockIndex)
	if err != nil {
		return nil, "", err
	}
	var startPath fieldpath.Path
	if startPathStr != "" {
		startPath, err = fieldpath.Parse(startPathStr)
		if err != nil {
			return nil, "", err
		}
	}
	return f.resolver().LinkedListWalk(root, rootBlockIndex, startPath, nextField, limit)
}
