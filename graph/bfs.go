package graph

import (
	"sort"

	"github.com/helio/blend/value"
)

// TruncationReason explains why a bounded traversal stopped early, or that
// it did not (Complete).
type TruncationReason string

const (
	TruncDepth    TruncationReason = "depth"
	TruncNodes    TruncationReason = "nodes"
	TruncEdges    TruncationReason = "edges"
	TruncComplete TruncationReason = "complete"
)

// Budget bounds one BFS traversal. Only RefsDepth carries a spec-mandated
// default (1); the others are generous ceilings a caller is expected to
// tune to its own needs.
type Budget struct {
	MaxDepth  int
	MaxNodes  int
	MaxEdges  int
	RefsDepth int
}

// DefaultBudget returns permissive bounds suitable for small-to-medium
// files, with RefsDepth at its spec default of 1.
func DefaultBudget() Budget {
	return Budget{MaxDepth: 64, MaxNodes: 100_000, MaxEdges: 200_000, RefsDepth: 1}
}

// Node is one BFS-discovered block, canonicalized to its containing
// block's identity so interior pointers dedup (§4.8).
type Node struct {
	BlockIndex int
	Canonical  uint64
	Depth      int
}

// BFSResult is the outcome of a bounded BFS traversal.
type BFSResult struct {
	Nodes      []Node
	Edges      []Edge
	Truncation TruncationReason
}

type queueItem struct {
	blockIndex int
	value      value.Value
	depth      int
}

// BFS explores the pointer graph reachable from rootBlockIndex (already
// decoded as rootValue), breadth-first, bounded by budget.
func (r *Resolver) BFS(rootBlockIndex int, rootValue value.Value, budget Budget) BFSResult {
	rootCanon := r.canonicalOf(rootBlockIndex)
	visited := map[uint64]bool{rootCanon: true}
	queue := []queueItem{{blockIndex: rootBlockIndex, value: rootValue, depth: 0}}
	nodes := []Node{{BlockIndex: rootBlockIndex, Canonical: rootCanon, Depth: 0}}
	var edges []Edge
	truncation := TruncComplete

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if item.depth >= budget.MaxDepth {
			truncation = TruncDepth
			continue
		}

		candidates := r.OutboundScan(item.value, budget.RefsDepth)
		sort.SliceStable(candidates, func(i, j int) bool {
			oi, oj := r.Blocks[candidates[i].TargetBlockIndex].PayloadOffset, r.Blocks[candidates[j].TargetBlockIndex].PayloadOffset
			if oi != oj {
				return oi < oj
			}
			return candidates[i].OwnerPath < candidates[j].OwnerPath
		})

		for _, e := range candidates {
			if len(edges) >= budget.MaxEdges {
				truncation = TruncEdges
				return BFSResult{Nodes: nodes, Edges: edges, Truncation: truncation}
			}
			edges = append(edges, e)

			if visited[e.TargetCanonical] {
				continue
			}
			if len(nodes) >= budget.MaxNodes {
				truncation = TruncNodes
				continue
			}
			visited[e.TargetCanonical] = true

			block := r.Blocks[e.TargetBlockIndex]
			targetVal, err := r.Decoder.DecodeStruct(block.SDNAIndex, block.Payload)
			if err != nil {
				continue
			}
			nodes = append(nodes, Node{BlockIndex: e.TargetBlockIndex, Canonical: e.TargetCanonical, Depth: item.depth + 1})
			queue = append(queue, queueItem{blockIndex: e.TargetBlockIndex, value: targetVal, depth: item.depth + 1})
		}
	}

	return BFSResult{Nodes: nodes, Edges: edges, Truncation: truncation}
}
