package graph

import (
	"sort"

	"github.com/helio/blend/value"
)

// RouteResult is the outcome of a shortest-route search.
type RouteResult struct {
	Edges      []Edge
	Found      bool
	Truncation TruncationReason
}

type routeQueueItem struct {
	blockIndex int
	value      value.Value
	depth      int
}

type parentInfo struct {
	parentCanonical uint64
	viaEdge         Edge
}

// ShortestRoute BFS-searches from the block canonicalized as fromCanonical
// for the block canonicalized as toCanonical, obeying the same budgets as
// BFS, and returns the edge sequence connecting them (§4.8).
func (r *Resolver) ShortestRoute(fromCanonical, toCanonical uint64, budget Budget) (RouteResult, error) {
	fromBlock, ok := r.Index.ExactBlockIndex(fromCanonical)
	if !ok {
		return RouteResult{}, nil
	}
	if fromCanonical == toCanonical {
		return RouteResult{Found: true}, nil
	}

	fromVal, err := r.Decoder.DecodeStruct(r.Blocks[fromBlock].SDNAIndex, r.Blocks[fromBlock].Payload)
	if err != nil {
		return RouteResult{}, err
	}

	parents := map[uint64]parentInfo{fromCanonical: {}}
	visited := map[uint64]bool{fromCanonical: true}
	queue := []routeQueueItem{{blockIndex: fromBlock, value: fromVal, depth: 0}}

	truncation := TruncComplete
	found := false
	edgesSeen := 0

search:
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
			if edgesSeen >= budget.MaxEdges {
				truncation = TruncEdges
				break search
			}
			edgesSeen++

			if visited[e.TargetCanonical] {
				continue
			}
			if len(visited) >= budget.MaxNodes {
				truncation = TruncNodes
				continue
			}
			visited[e.TargetCanonical] = true
			parents[e.TargetCanonical] = parentInfo{parentCanonical: r.canonicalOf(item.blockIndex), viaEdge: e}

			if e.TargetCanonical == toCanonical {
				found = true
				break search
			}

			block := r.Blocks[e.TargetBlockIndex]
			tv, err := r.Decoder.DecodeStruct(block.SDNAIndex, block.Payload)
			if err != nil {
				continue
			}
			queue = append(queue, routeQueueItem{blockIndex: e.TargetBlockIndex, value: tv, depth: item.depth + 1})
		}
	}

	if !found {
		return RouteResult{Truncation: truncation}, nil
	}

	var edges []Edge
	cur := toCanonical
	for cur != fromCanonical {
		pi, ok := parents[cur]
		if !ok {
			break
		}
		edges = append([]Edge{pi.viaEdge}, edges...)
		cur = pi.parentCanonical
	}
	return RouteResult{Edges: edges, Found: true, Truncation: truncation}, nil
}
