package blend

import (
	"github.com/helio/blend/fieldpath"
)

func (f *File) chaser() *fieldpath.Chaser {
	return &fieldpath.Chaser{Blocks: f.blocks.Blocks, SDNA: f.sdna, Index: f.index, Decoder: f.decoder}
}

// ChaseFromBlockIndex parses pathStr and chases it starting from the
// block at blockIndex (§4.7).
func (f *File) ChaseFromBlockIndex(blockIndex int, pathStr string, opts fieldpath.ChaseOptions) (fieldpath.Trace, error) {
	root, err := f.DecodeBlock(blockIndex)
	if err != nil {
		return fieldpath.Trace{}, err
	}
	path, err := fieldpath.Parse(pathStr)
	if err != nil {
		return fieldpath.Trace{}, err
	}
	return f.chaser().Chase(root, blockIndex, path, opts)
}

// ChaseFromBlockCode resolves the first block with the given code and
// chases pathStr from it.
func (f *File) ChaseFromBlockCode(code, pathStr string, opts fieldpath.ChaseOptions) (fieldpath.Trace, error) {
	bi, err := f.blockIndexByCode(code)
	if err != nil {
		return fieldpath.Trace{}, err
	}
	return f.ChaseFromBlockIndex(bi, pathStr, opts)
}

// ChaseFromIDName resolves the ID-root block named idName and chases
// pathStr from it.
func (f *File) ChaseFromIDName(idName, pathStr string, opts fieldpath.ChaseOptions) (fieldpath.Trace, error) {
	bi, err := f.BlockIndexByIDName(idName)
	if err != nil {
		return fieldpath.Trace{}, err
	}
	return f.ChaseFromBlockIndex(bi, pathStr, opts)
}

// ChaseFromAddress resolves address to its owning block and chases
// pathStr from the element it lands on.
func (f *File) ChaseFromAddress(address uint64, pathStr string, opts fieldpath.ChaseOptions) (fieldpath.Trace, error) {
	dp, err := f.DecodePointer(address)
	if err != nil {
		return fieldpath.Trace{}, err
	}
	path, err := fieldpath.Parse(pathStr)
	if err != nil {
		return fieldpath.Trace{}, err
	}
	return f.chaser().Chase(dp.Value, dp.BlockIndex, path, opts)
}
