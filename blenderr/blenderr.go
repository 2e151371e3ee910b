// Package blenderr defines the error taxonomy shared by every layer of the
// blend module. Each error carries a stable Kind tag that a caller (or an
// external JSON/CLI layer) can switch on without parsing the message text.
package blenderr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is a stable, short discriminant for an Error. The zero value is
// never produced by this package.
type Kind string

// Input and loader errors (spec §4.1).
const (
	UnknownMagic     Kind = "UnknownMagic"
	DecompressFailed Kind = "DecompressFailed"
	OutputTooLarge   Kind = "OutputTooLarge"
	UnexpectedEOF    Kind = "UnexpectedEof"
)

// Header errors (spec §4.2).
const (
	UnsupportedBlenderVersion Kind = "UnsupportedBlenderVersion"
	UnsupportedFileFormat     Kind = "UnsupportedFileFormat"
	UnsupportedEndian         Kind = "UnsupportedEndian"
	UnsupportedPointerSize    Kind = "UnsupportedPointerSize"
)

// Block table errors (spec §4.3).
const (
	MalformedBlockHeader Kind = "MalformedBlockHeader"
	MissingSdnaBlock     Kind = "MissingSdnaBlock"
	MissingEndBlock      Kind = "MissingEndBlock"
)

// Schema errors (spec §4.4).
const (
	SdnaSectionMissing Kind = "SdnaSectionMissing"
	SdnaIndexOutOfRange Kind = "SdnaIndexOutOfRange"
	LayoutMismatch      Kind = "LayoutMismatch"
)

// Decode errors (spec §4.5).
const (
	PayloadTooShort Kind = "PayloadTooShort"
	DepthExceeded   Kind = "DepthExceeded"
	ArrayTooLarge   Kind = "ArrayTooLarge"
	UnknownType     Kind = "UnknownType"
)

// Chase errors (spec §4.7).
const (
	UnknownField      Kind = "UnknownField"
	IndexOutOfRange   Kind = "IndexOutOfRange"
	NullPointer       Kind = "NullPointer"
	UnresolvedPointer Kind = "UnresolvedPointer"
	CycleDetected     Kind = "CycleDetected"
	HopLimitExceeded  Kind = "HopLimitExceeded"
)

// Lookup errors (spec §6).
const (
	NoSuchBlockCode Kind = "NoSuchBlockCode"
	NoSuchIdName    Kind = "NoSuchIdName"
	NoSuchStruct    Kind = "NoSuchStruct"
)

// Error is the error type returned by every exported operation in this
// module. It always has a Kind and a human-readable message, and may carry
// positional context for diagnosis.
type Error struct {
	Kind Kind
	Msg  string

	// Offset is the byte offset in the decompressed buffer the error was
	// detected at, when known. -1 means not applicable.
	Offset int64
	// BlockCode is the 4-byte block tag involved, when known. Empty
	// string means not applicable.
	BlockCode string

	cause error
}

// New builds an Error with no positional context.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Offset: -1}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Offset: -1}
}

// Wrap attaches kind and message to an underlying cause, preserving it for
// errors.Is/As/Unwrap and recording a stack trace via pkg/errors so the
// point of failure can be diagnosed even once the error has bubbled up
// through several layers.
func Wrap(cause error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Offset: -1, cause: errors.WithStack(cause)}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(cause error, kind Kind, format string, args ...interface{}) *Error {
	return Wrap(cause, kind, fmt.Sprintf(format, args...))
}

// AtOffset returns a copy of e with Offset set, for layers that discover
// position after the fact (e.g. the block table wrapping a header error).
func (e *Error) AtOffset(off int64) *Error {
	cp := *e
	cp.Offset = off
	return &cp
}

// WithBlockCode returns a copy of e with BlockCode set.
func (e *Error) WithBlockCode(code string) *Error {
	cp := *e
	cp.BlockCode = code
	return &cp
}

func (e *Error) Error() string {
	switch {
	case e.BlockCode != "" && e.Offset >= 0:
		return fmt.Sprintf("blend: %s: %s (block %q, offset %d)", e.Kind, e.Msg, e.BlockCode, e.Offset)
	case e.BlockCode != "":
		return fmt.Sprintf("blend: %s: %s (block %q)", e.Kind, e.Msg, e.BlockCode)
	case e.Offset >= 0:
		return fmt.Sprintf("blend: %s: %s (offset %d)", e.Kind, e.Msg, e.Offset)
	default:
		return fmt.Sprintf("blend: %s: %s", e.Kind, e.Msg)
	}
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, blenderr.New(blenderr.NullPointer, "")) or, more
// idiomatically, compare via KindOf.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// KindOf extracts the Kind from err, if err is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
