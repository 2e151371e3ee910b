package graph

import (
	"strconv"

	"github.com/helio/blend/value"
)

// Edge is one outbound pointer reference discovered during a scan.
type Edge struct {
	OwnerPath        string
	TargetBlockIndex int
	TargetCanonical  uint64
	TargetType       string
	TargetIDName     string
	HasIDName        bool
}

// OutboundScan takes root, an already decoded struct value, and
// enumerates every pointer-valued field reachable within refsDepth
// sub-struct levels, resolving each one. Fields are visited in
// declaration order, then ascending array index (§5 Ordering). Null and
// unresolved pointers, and function pointers, never produce an edge.
func (r *Resolver) OutboundScan(root value.Value, refsDepth int) []Edge {
	var edges []Edge
	r.walkStruct(root, "", refsDepth, &edges)
	return edges
}

func (r *Resolver) walkStruct(v value.Value, path string, depth int, edges *[]Edge) {
	if v.Kind != value.KindStruct {
		return
	}
	for _, name := range v.FieldOrder {
		fv := v.Fields[name]
		r.walkValue(fv, joinField(path, name), depth, edges)
	}
}

func (r *Resolver) walkValue(v value.Value, path string, depth int, edges *[]Edge) {
	switch v.Kind {
	case value.KindPointer:
		if res, ok := r.resolvePointer(v); ok {
			idName, hasID := value.IDName(res.element)
			*edges = append(*edges, Edge{
				OwnerPath:        path,
				TargetBlockIndex: res.blockIndex,
				TargetCanonical:  res.canonical,
				TargetType:       res.element.TypeName,
				TargetIDName:     idName,
				HasIDName:        hasID,
			})
		}
	case value.KindArray:
		for i, e := range v.Elements {
			r.walkValue(e, joinIndex(path, i), depth, edges)
		}
	case value.KindStruct:
		if depth > 0 {
			r.walkStruct(v, path, depth-1, edges)
		}
	}
}

func joinField(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

func joinIndex(base string, i int) string {
	return base + "[" + strconv.Itoa(i) + "]"
}
