package vm

import (
	"github.com/willf/bitset"
)

// Instructions is the set of offsets in a piece of code that start an
// instruction. Offsets inside PUSH immediates are never members.
type Instructions struct {
	bits    *bitset.BitSet
	codeLen uint64
	count   int
}

func newInstructions(codeLen int) *Instructions {
	return &Instructions{
		bits:    bitset.New(uint(codeLen)),
		codeLen: uint64(codeLen),
	}
}

// add marks pc as an instruction start. Adding the same offset twice is a no-op.
func (in *Instructions) add(pc uint64) {
	if pc >= in.codeLen || in.bits.Test(uint(pc)) {
		return
	}
	in.bits.Set(uint(pc))
	in.count++
}

// Has reports whether pc is the start of an instruction.
func (in *Instructions) Has(pc uint64) bool {
	if pc >= in.codeLen {
		return false
	}
	return in.bits.Test(uint(pc))
}

// Len returns the number of instruction starts.
func (in *Instructions) Len() int {
	return in.count
}

// CodeLen returns the length of the scanned code.
func (in *Instructions) CodeLen() int {
	return int(in.codeLen)
}

// Empty reports whether the code contains no instruction at all.
func (in *Instructions) Empty() bool {
	return in.count == 0
}

// Offsets returns the instruction starts in ascending order.
func (in *Instructions) Offsets() []uint64 {
	offsets := make([]uint64, 0, in.count)
	for i, ok := in.bits.NextSet(0); ok; i, ok = in.bits.NextSet(i + 1) {
		offsets = append(offsets, uint64(i))
	}
	return offsets
}

// ForEach calls fn for every instruction start in ascending order.
func (in *Instructions) ForEach(fn func(pc uint64)) {
	for i, ok := in.bits.NextSet(0); ok; i, ok = in.bits.NextSet(i + 1) {
		fn(uint64(i))
	}
}
