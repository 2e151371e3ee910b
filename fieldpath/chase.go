package fieldpath

import (
	"github.com/helio/blend/blenderr"
	"github.com/helio/blend/internal/blocktable"
	"github.com/helio/blend/pointerindex"
	"github.com/helio/blend/sdna"
	"github.com/helio/blend/value"
)

// Policy controls what happens when a chase hits null, an unresolved
// pointer, or a cycle (§4.7).
type Policy int

const (
	// PolicyStop returns the trace accumulated so far with a StopReason.
	PolicyStop Policy = iota
	// PolicyError fails with a matching *blenderr.Error instead.
	PolicyError
)

// StopReason explains why a chase ended before exhausting its path.
type StopReason string

const (
	ReasonNone       StopReason = ""
	ReasonNull       StopReason = "NullPointer"
	ReasonUnresolved StopReason = "UnresolvedPointer"
	ReasonCycle      StopReason = "CycleDetected"
	ReasonHopLimit   StopReason = "HopLimitExceeded"
)

// DefaultMaxHops is the global hop cap applied regardless of Policy
// (§4.7).
const DefaultMaxHops = 64

// ChaseOptions bounds one chase.
type ChaseOptions struct {
	Policy  Policy
	MaxHops int
}

// DefaultChaseOptions returns PolicyStop with the default hop cap.
func DefaultChaseOptions() ChaseOptions {
	return ChaseOptions{Policy: PolicyStop, MaxHops: DefaultMaxHops}
}

// Hop records one pointer dereference performed while chasing a path.
type Hop struct {
	BlockIndex   int
	BlockCode    string
	Offset       int64
	ResolvedType string
	IDName       string
}

// Trace is the result of a chase: the hops taken, the resulting value
// (valid only when StopReason is ReasonNone), and why it stopped, if it
// did.
type Trace struct {
	Hops       []Hop
	Value      value.Value
	StopReason StopReason
}

// visitKey identifies one (block identity, element index) pair for cycle
// detection (§4.7, §8).
type visitKey struct {
	identity uint64
	element  int64
}

// Chaser resolves FieldPaths against decoded values, dereferencing
// pointers between segments via a pointer index.
type Chaser struct {
	Blocks  []blocktable.Block
	SDNA    *sdna.SDNA
	Index   *pointerindex.Index
	Decoder *value.Decoder
}

// Chase walks path against root, which was decoded from the block at
// rootBlockIndex. Pointers encountered between segments are dereferenced
// automatically; if the path ends on a pointer, one final dereference is
// attempted so the Trace's Value is always a struct on success.
func (c *Chaser) Chase(root value.Value, rootBlockIndex int, path Path, opts ChaseOptions) (Trace, error) {
	if opts.MaxHops == 0 {
		opts = DefaultChaseOptions()
	}

	visited := map[visitKey]bool{
		{identity: c.Blocks[rootBlockIndex].Identity, element: 0}: true,
	}

	cur := root
	hops := make([]Hop, 0, 4)

	deref := func() (StopReason, error) {
		if len(hops) >= opts.MaxHops {
			return c.stopOrErr(opts, ReasonHopLimit, blenderr.New(blenderr.HopLimitExceeded, "max_hops exceeded"))
		}
		hop, next, reason, err := c.dereference(cur, visited)
		if err != nil {
			// Decode failures are not stop reasons: they surface under
			// every Policy.
			return reason, err
		}
		if reason != ReasonNone {
			return c.stopOrErr(opts, reason, chaseErrForReason(reason))
		}
		hops = append(hops, hop)
		cur = next
		return ReasonNone, nil
	}

	for _, seg := range path.Segments {
		if cur.Kind == value.KindPointer || cur.Kind == value.KindFuncPointer {
			if reason, err := deref(); reason != ReasonNone || err != nil {
				return Trace{Hops: hops, StopReason: reason}, err
			}
		}
		switch seg.Kind {
		case SegmentField:
			next, ok := cur.Field(seg.Field)
			if !ok {
				return Trace{Hops: hops}, blenderr.Newf(blenderr.UnknownField, "no field %q", seg.Field)
			}
			cur = next
		case SegmentIndex:
			next, ok := cur.Index(seg.Index)
			if !ok {
				return Trace{Hops: hops}, blenderr.Newf(blenderr.IndexOutOfRange, "index %d out of range", seg.Index)
			}
			cur = next
		}
	}

	if cur.Kind == value.KindPointer || cur.Kind == value.KindFuncPointer {
		if reason, err := deref(); reason != ReasonNone || err != nil {
			return Trace{Hops: hops, StopReason: reason}, err
		}
	}

	return Trace{Hops: hops, Value: cur, StopReason: ReasonNone}, nil
}

func (c *Chaser) stopOrErr(opts ChaseOptions, reason StopReason, err error) (StopReason, error) {
	if opts.Policy == PolicyStop {
		return reason, nil
	}
	return reason, err
}

func chaseErrForReason(reason StopReason) error {
	switch reason {
	case ReasonNull:
		return blenderr.New(blenderr.NullPointer, "dereferenced a null pointer")
	case ReasonUnresolved:
		return blenderr.New(blenderr.UnresolvedPointer, "pointer did not resolve to any block")
	case ReasonCycle:
		return blenderr.New(blenderr.CycleDetected, "chase revisited an already-seen element")
	default:
		return nil
	}
}

// dereference resolves a pointer-kind Value to the decoded first-reached
// struct at its target, recording visited (identity, element) pairs for
// cycle detection. Function pointers never resolve (§9 open question):
// they are opaque by design, so a dereference attempt always reports
// ReasonUnresolved without touching the pointer index.
func (c *Chaser) dereference(v value.Value, visited map[visitKey]bool) (Hop, value.Value, StopReason, error) {
	if v.Kind == value.KindFuncPointer {
		return Hop{}, value.Value{}, ReasonUnresolved, nil
	}
	if v.IsNull() {
		return Hop{}, value.Value{}, ReasonNull, nil
	}

	target, status := c.Index.Resolve(v.Address)
	if status == pointerindex.StatusUnresolved {
		return Hop{}, value.Value{}, ReasonUnresolved, nil
	}

	block := c.Blocks[target.BlockIndex]
	key := visitKey{identity: block.Identity, element: 0}

	structIdx := block.SDNAIndex
	stride := c.Decoder.StructStride(structIdx)
	elemIdx, _ := target.Split(int64(stride))
	key.element = elemIdx

	if visited[key] {
		return Hop{}, value.Value{}, ReasonCycle, nil
	}
	visited[key] = true

	decoded, err := c.Decoder.DecodeElementAt(structIdx, block.Payload, elemIdx)
	if err != nil {
		return Hop{}, value.Value{}, ReasonNone, err
	}

	idName, _ := value.IDName(decoded)
	hop := Hop{
		BlockIndex:   target.BlockIndex,
		BlockCode:    block.Code,
		Offset:       block.PayloadOffset,
		ResolvedType: decoded.TypeName,
		IDName:       idName,
	}
	return hop, decoded, ReasonNone, nil
}
