package sdna

import (
	"strconv"
	"strings"
)

// Declarator is the parsed form of one SDNA name-table entry, such as
// "*next", "mat[4][4]", or "(*free)()".
type Declarator struct {
	// Raw is the original declarator string, sigils and brackets included.
	Raw string
	// Ident is the bare field identifier, with pointer sigils, array
	// brackets and function-pointer parens stripped.
	Ident string
	// PointerDepth is the number of leading '*' (a function pointer
	// counts as depth 1, opaque).
	PointerDepth int
	// ArrayExtents holds one entry per "[n]" suffix, outermost first. A
	// "[0]" is preserved verbatim as a zero-length dimension.
	ArrayExtents []int
	// IsFunctionPointer is true for "(*name)(...)" declarators; these
	// occupy a pointer's width but are never dereferenced (§4.4, §9).
	IsFunctionPointer bool
}

// ParseDeclarator decodes one SDNA name-table string into its components.
func ParseDeclarator(raw string) Declarator {
	d := Declarator{Raw: raw}

	s := raw
	if len(s) >= 2 && s[0] == '(' && s[1] == '*' {
		d.IsFunctionPointer = true
		d.PointerDepth = 1
		close := strings.IndexByte(s, ')')
		if close > 2 {
			d.Ident = s[2:close]
		}
		return d
	}

	for len(s) > 0 && s[0] == '*' {
		d.PointerDepth++
		s = s[1:]
	}

	identEnd := len(s)
	for i := 0; i < len(s); i++ {
		if s[i] == '[' {
			identEnd = i
			break
		}
	}
	d.Ident = s[:identEnd]
	s = s[identEnd:]

	for len(s) > 0 {
		if s[0] != '[' {
			break
		}
		close := strings.IndexByte(s, ']')
		if close < 0 {
			break
		}
		n, err := strconv.Atoi(s[1:close])
		if err != nil {
			break
		}
		d.ArrayExtents = append(d.ArrayExtents, n)
		s = s[close+1:]
	}

	return d
}

// IsArray reports whether the declarator has at least one array extent.
func (d Declarator) IsArray() bool {
	return len(d.ArrayExtents) > 0
}

// IsPointer reports whether the declarator has pointer indirection
// (including an opaque function pointer).
func (d Declarator) IsPointer() bool {
	return d.PointerDepth > 0
}

// ElementCount returns the total number of scalar elements described by
// ArrayExtents (the product of all extents), or 1 if it is not an array.
func (d Declarator) ElementCount() int {
	if len(d.ArrayExtents) == 0 {
		return 1
	}
	n := 1
	for _, e := range d.ArrayExtents {
		n *= e
	}
	return n
}
