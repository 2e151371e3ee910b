// Package blend is a read-only reverse-engineering toolkit for Blender
// .blend container files (Blender 5.0+). It decompresses and validates
// the container, parses its embedded schema, and exposes typed struct
// decoding plus a pointer-graph traversal layer over the whole object
// graph.
package blend

import (
	"io"

	"github.com/helio/blend/internal/blocktable"
	"github.com/helio/blend/internal/header"
	"github.com/helio/blend/internal/sdecode"
	"github.com/helio/blend/pointerindex"
	"github.com/helio/blend/sdna"
	"github.com/helio/blend/value"
)

// OpenOptions configures the bounds used while opening a file. Every
// field has a documented default applied when left zero.
type OpenOptions struct {
	Loader     sdecode.Options
	Decode     value.DecodeOptions
	ModeDetect pointerindex.DetectOptions
}

// DefaultOpenOptions returns the spec-mandated defaults for every layer.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{
		Loader:     sdecode.Options{},
		Decode:     value.DefaultOptions(),
		ModeDetect: pointerindex.DefaultDetectOptions(),
	}
}

// File is an opened .blend container: the decompressed buffer and every
// index derived from it. All fields are immutable after Open returns
// (§5); decoded values are produced fresh per call.
type File struct {
	buf    []byte
	header *header.Header
	blocks *blocktable.Table
	sdna   *sdna.SDNA

	index       *pointerindex.Index
	diagnostics pointerindex.Diagnostics

	decoder *value.Decoder
	opts    OpenOptions
}

// Open reads r fully, transparently decompresses a zstd frame if present,
// validates the container header, walks the block table, parses SDNA, and
// builds the pointer index. The returned File owns the decompressed
// buffer for its lifetime; every Block's Payload is a sub-slice of that
// buffer (§3 Lifetimes), while decoded Values copy the bytes they keep.
func Open(r io.Reader, opts OpenOptions) (*File, error) {
	if opts.Decode.MaxDepth == 0 && opts.Decode.MaxArrayElements == 0 {
		opts.Decode = value.DefaultOptions()
	}
	if opts.ModeDetect.SampleLimit == 0 {
		opts.ModeDetect = pointerindex.DefaultDetectOptions()
	}

	buf, err := sdecode.Load(r, opts.Loader)
	if err != nil {
		return nil, err
	}
	return open(buf, opts)
}

// OpenBytes is Open for an already fully-read byte slice.
func OpenBytes(raw []byte, opts OpenOptions) (*File, error) {
	buf, err := sdecode.LoadBytes(raw, opts.Loader)
	if err != nil {
		return nil, err
	}
	return open(buf, opts)
}

func open(buf []byte, opts OpenOptions) (*File, error) {
	hdr, err := header.Parse(buf)
	if err != nil {
		return nil, err
	}

	table, err := blocktable.Parse(buf, int64(header.TotalLen))
	if err != nil {
		return nil, err
	}

	dnaBlock := table.Blocks[table.DNABlock]
	schema, err := sdna.Parse(dnaBlock.Payload)
	if err != nil {
		return nil, err
	}

	decoder := value.NewDecoder(schema, opts.Decode)

	idx, diag, err := pointerindex.Build(table.Blocks, schema, opts.ModeDetect)
	if err != nil {
		return nil, err
	}

	return &File{
		buf:         buf,
		header:      hdr,
		blocks:      table,
		sdna:        schema,
		index:       idx,
		diagnostics: diag,
		decoder:     decoder,
		opts:        opts,
	}, nil
}

// Header returns the parsed container header.
func (f *File) Header() header.Header {
	return *f.header
}

// SDNA returns the parsed schema.
func (f *File) SDNA() *sdna.SDNA {
	return f.sdna
}

// PointerIndexDiagnostics returns the mode-detection working set (§4.6,
// §9): sample size, exact-hit count, interval-hit count, null count, and
// the detected mode.
func (f *File) PointerIndexDiagnostics() pointerindex.Diagnostics {
	return f.diagnostics
}

// PointerMode reports the detected pointer-identity convention.
func (f *File) PointerMode() pointerindex.Mode {
	return f.index.Mode()
}
