// Package fieldpath parses dotted/indexed field paths and chases them
// through decoded values, auto-dereferencing pointers between segments
// (§4.7).
package fieldpath

import (
	"strconv"
	"strings"

	"github.com/helio/blend/blenderr"
)

// SegmentKind discriminates a Path segment.
type SegmentKind int

const (
	SegmentField SegmentKind = iota
	SegmentIndex
)

// Segment is one step of a Path: either a field name or an array index.
type Segment struct {
	Kind  SegmentKind
	Field string
	Index int
}

// Path is a non-empty ordered sequence of segments, e.g. "a.b[3].c".
type Path struct {
	Segments []Segment
}

// Parse decodes a dotted/indexed path string such as "a.b[3].c" into a
// Path. Each '.'-delimited component may carry zero or more trailing
// "[n]" index suffixes, e.g. "matrix[2][1]" becomes a field segment
// followed by two index segments.
func Parse(s string) (Path, error) {
	if s == "" {
		return Path{}, blenderr.New(blenderr.UnknownField, "empty field path")
	}
	var segs []Segment
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return Path{}, blenderr.Newf(blenderr.UnknownField, "empty path component in %q", s)
		}
		name, indices, err := splitIndices(part)
		if err != nil {
			return Path{}, blenderr.Wrapf(err, blenderr.UnknownField, "parsing path component %q", part)
		}
		if name != "" {
			segs = append(segs, Segment{Kind: SegmentField, Field: name})
		}
		for _, n := range indices {
			segs = append(segs, Segment{Kind: SegmentIndex, Index: n})
		}
	}
	if len(segs) == 0 {
		return Path{}, blenderr.New(blenderr.UnknownField, "path has no segments")
	}
	return Path{Segments: segs}, nil
}

func splitIndices(part string) (name string, indices []int, err error) {
	i := strings.IndexByte(part, '[')
	if i < 0 {
		return part, nil, nil
	}
	name = part[:i]
	rest := part[i:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return "", nil, blenderr.Newf(blenderr.UnknownField, "malformed index near %q", rest)
		}
		close := strings.IndexByte(rest, ']')
		if close < 0 {
			return "", nil, blenderr.Newf(blenderr.UnknownField, "unterminated index near %q", rest)
		}
		n, convErr := strconv.Atoi(rest[1:close])
		if convErr != nil || n < 0 {
			return "", nil, blenderr.Newf(blenderr.IndexOutOfRange, "invalid array index in %q", rest[1:close])
		}
		indices = append(indices, n)
		rest = rest[close+1:]
	}
	return name, indices, nil
}

func (p Path) String() string {
	var b strings.Builder
	for i, s := range p.Segments {
		switch s.Kind {
		case SegmentField:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s.Field)
		case SegmentIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
		}
	}
	return b.String()
}
