package value

// ArrayOverflowPolicy controls what happens when a declared array exceeds
// DecodeOptions.MaxArrayElements (§4.5).
type ArrayOverflowPolicy int

const (
	// ArrayReject fails the decode with blenderr.ArrayTooLarge.
	ArrayReject ArrayOverflowPolicy = iota
	// ArrayTruncate keeps only the first MaxArrayElements elements.
	ArrayTruncate
)

// DecodeOptions bounds a single decode operation. Every field has a
// documented default; the zero value of DecodeOptions is not itself valid
// and callers should start from DefaultOptions().
type DecodeOptions struct {
	// MaxDepth bounds nested-struct recursion. Default 8.
	MaxDepth int
	// MaxArrayElements bounds any single array's element count. Default
	// 4096.
	MaxArrayElements int
	// ArrayOverflow controls behavior past MaxArrayElements. Default
	// ArrayReject.
	ArrayOverflow ArrayOverflowPolicy
	// StrictLayout requires every decoded struct's declared size to
	// equal the sum of its field sizes. Default false.
	StrictLayout bool
	// IncludePadding affects only presentation by callers; decode itself
	// is unaffected (§4.5). Default false.
	IncludePadding bool
}

// DefaultOptions returns the spec-mandated defaults.
func DefaultOptions() DecodeOptions {
	return DecodeOptions{
		MaxDepth:         8,
		MaxArrayElements: 4096,
		ArrayOverflow:    ArrayReject,
		StrictLayout:     false,
		IncludePadding:   false,
	}
}
