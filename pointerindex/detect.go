package pointerindex

import (
	"github.com/helio/blend/internal/blocktable"
	"github.com/helio/blend/sdna"
	"github.com/helio/blend/value"
)

// DetectOptions configures the mode-detection heuristic (§4.6, §9: "the
// mode-detection heuristic's exact thresholds are empirical ...
// implementers should ... make the thresholds configurable").
type DetectOptions struct {
	// SampleLimit caps how many non-null pointer values are sampled
	// across all blocks. Default 256.
	SampleLimit int
	// ExactHitThreshold is the minimum fraction of sampled pointers that
	// must match some block identity exactly for stable_ids to be
	// chosen. Default 0.90.
	ExactHitThreshold float64
	// IntervalOnlyThreshold is the maximum fraction of sampled pointers
	// that may resolve only via interval containment (not matching any
	// exact identity) for stable_ids to still be chosen. Default 0.05.
	IntervalOnlyThreshold float64
}

// DefaultDetectOptions returns the thresholds from §4.6.
func DefaultDetectOptions() DetectOptions {
	return DetectOptions{SampleLimit: 256, ExactHitThreshold: 0.90, IntervalOnlyThreshold: 0.05}
}

// Diagnostics reports the heuristic's working set, so a caller can log it
// per §9's recommendation.
type Diagnostics struct {
	Mode         Mode
	SampleSize   int
	ExactHits    int
	IntervalHits int
	NullCount    int
}

// Build samples pointer values out of every block's first decoded element,
// classifies the file's pointer-identity mode, and builds the Index.
func Build(blocks []blocktable.Block, s *sdna.SDNA, opts DetectOptions) (*Index, Diagnostics, error) {
	if opts.SampleLimit == 0 {
		opts = DefaultDetectOptions()
	}

	// Mode detection needs a provisional index to test candidate
	// addresses against before the real mode is known. The trial index
	// is built in address_ranges mode so it can count both exact and
	// interval-only hits; the final Index is built separately once the
	// mode has been classified.
	trial := build(blocks, ModeAddressRanges)

	dec := value.NewDecoder(s, value.DefaultOptions())

	var samples []uint64
	var nullCount int
outer:
	for _, b := range blocks {
		if b.Code == blocktable.EndCode || b.Code == blocktable.DNACode {
			continue
		}
		if b.SDNAIndex < 0 || b.SDNAIndex >= len(s.Structs) || len(b.Payload) == 0 {
			continue
		}
		v, err := dec.DecodeStruct(b.SDNAIndex, b.Payload)
		if err != nil {
			continue
		}
		for _, addr := range collectPointers(v) {
			if addr == 0 {
				nullCount++
				continue
			}
			samples = append(samples, addr)
			if len(samples) >= opts.SampleLimit {
				break outer
			}
		}
	}

	var exactHits, intervalHits int
	for _, addr := range samples {
		if _, ok := trial.ExactBlockIndex(addr); ok {
			exactHits++
			continue
		}
		if _, ok := trial.lookupInterval(addr); ok {
			intervalHits++
		}
	}

	mode := classify(len(samples), exactHits, intervalHits, opts)
	idx := build(blocks, mode)
	diag := Diagnostics{Mode: mode, SampleSize: len(samples), ExactHits: exactHits, IntervalHits: intervalHits, NullCount: nullCount}
	return idx, diag, nil
}

func classify(sampleSize, exactHits, intervalHits int, opts DetectOptions) Mode {
	if sampleSize == 0 {
		return ModeStableIDs
	}
	exactFrac := float64(exactHits) / float64(sampleSize)
	intervalFrac := float64(intervalHits) / float64(sampleSize)
	if exactFrac >= opts.ExactHitThreshold && intervalFrac < opts.IntervalOnlyThreshold {
		return ModeStableIDs
	}
	if intervalFrac >= opts.IntervalOnlyThreshold {
		return ModeAddressRanges
	}
	return ModeStableIDs
}

// collectPointers walks v and returns every non-function pointer address
// it contains, recursively through structs and arrays. Function pointers
// are excluded from sampling: they are never dereferenceable (§9) and
// including them would bias the heuristic toward false interval hits if a
// code address happens to alias a block's address range.
func collectPointers(v value.Value) []uint64 {
	var out []uint64
	var walk func(value.Value)
	walk = func(v value.Value) {
		switch v.Kind {
		case value.KindPointer:
			out = append(out, v.Address)
		case value.KindArray:
			for _, e := range v.Elements {
				walk(e)
			}
		case value.KindStruct:
			for _, name := range v.FieldOrder {
				walk(v.Fields[name])
			}
		}
	}
	walk(v)
	return out
}

