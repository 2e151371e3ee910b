package graph

import (
	"github.com/helio/blend/fieldpath"
	"github.com/helio/blend/value"
)

// Step is one node visited by LinkedListWalk.
type Step struct {
	Value      value.Value
	BlockIndex int
	IDName     string
	HasIDName  bool
}

// LinkedListWalk positions at root via startPath (an empty Path means
// "start at root itself"), then repeatedly chases the field named
// nextField up to limit times, stopping on null, unresolved pointer,
// cycle, or the limit (§4.8).
func (r *Resolver) LinkedListWalk(root value.Value, rootBlockIndex int, startPath fieldpath.Path, nextField string, limit int) ([]Step, fieldpath.StopReason, error) {
	cur := root
	curBlockIndex := rootBlockIndex

	if len(startPath.Segments) > 0 {
		chaser := &fieldpath.Chaser{Blocks: r.Blocks, SDNA: r.SDNA, Index: r.Index, Decoder: r.Decoder}
		trace, err := chaser.Chase(root, rootBlockIndex, startPath, fieldpath.DefaultChaseOptions())
		if err != nil {
			return nil, "", err
		}
		if trace.StopReason != fieldpath.ReasonNone {
			return nil, trace.StopReason, nil
		}
		cur = trace.Value
		if n := len(trace.Hops); n > 0 {
			curBlockIndex = trace.Hops[n-1].BlockIndex
		}
	}

	visited := map[uint64]bool{r.canonicalOf(curBlockIndex): true}
	steps := make([]Step, 0, limit)

	for i := 0; i < limit; i++ {
		nf, ok := cur.Field(nextField)
		if !ok {
			return steps, fieldpath.ReasonNone, nil
		}
		if nf.Kind == value.KindFuncPointer {
			return steps, fieldpath.ReasonUnresolved, nil
		}
		if nf.IsNull() {
			return steps, fieldpath.ReasonNull, nil
		}

		res, ok := r.resolvePointer(nf)
		if !ok {
			return steps, fieldpath.ReasonUnresolved, nil
		}
		if visited[res.canonical] {
			return steps, fieldpath.ReasonCycle, nil
		}
		visited[res.canonical] = true

		idName, hasID := value.IDName(res.element)
		steps = append(steps, Step{Value: res.element, BlockIndex: res.blockIndex, IDName: idName, HasIDName: hasID})
		cur = res.element
	}

	return steps, fieldpath.ReasonHopLimit, nil
}
