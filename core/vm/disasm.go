package vm

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Instruction is a decoded instruction as seen by the scanner.
type Instruction struct {
	PC        uint64
	Op        OpCode
	Group     Group
	Immediate []byte // PUSH data, nil for other opcodes
	Truncated bool   // PUSH data cut short by the end of the code
}

// Value returns the PUSH immediate as a 256-bit word. Truncated immediates
// are interpreted as the bytes present.
func (ins *Instruction) Value() *uint256.Int {
	return new(uint256.Int).SetBytes(ins.Immediate)
}

func (ins *Instruction) String() string {
	if ins.Group == GroupPush && ins.Op != PUSH0 {
		s := fmt.Sprintf("%05x: %v %v", ins.PC, ins.Op, ins.Value().Hex())
		if ins.Truncated {
			s += " (truncated)"
		}
		return s
	}
	return fmt.Sprintf("%05x: %v", ins.PC, ins.Op)
}

// Iterator walks the instructions of a piece of code, stepping over the same
// boundaries as Scan. Invalid bytes are skipped.
type Iterator struct {
	code []byte
	set  *InstructionSet
	pc   uint64
	cur  Instruction
}

// NewIterator creates an iterator over code using the given instruction set.
// A nil set selects the legacy set.
func NewIterator(code []byte, set *InstructionSet) *Iterator {
	if set == nil {
		set = &LegacyInstructionSet
	}
	return &Iterator{code: code, set: set}
}

// Next advances to the next instruction and reports whether there was one.
func (it *Iterator) Next() bool {
	end := uint64(len(it.code))
	for it.pc < end {
		pc := it.pc
		op := OpCode(it.code[pc])
		group := it.set.Group(op)
		if group == GroupInvalid {
			it.pc++
			continue
		}
		it.cur = Instruction{PC: pc, Op: op, Group: group}
		it.pc++
		if n := uint64(op.Immediates()); group == GroupPush && n > 0 {
			stop := it.pc + n
			if stop > end {
				stop = end
				it.cur.Truncated = true
			}
			it.cur.Immediate = it.code[it.pc:stop]
			it.pc = stop
		}
		return true
	}
	return false
}

// Instruction returns the current instruction.
func (it *Iterator) Instruction() Instruction {
	return it.cur
}

// Disassemble decodes all instructions in code.
func Disassemble(code []byte, set *InstructionSet) []Instruction {
	var (
		it  = NewIterator(code, set)
		out []Instruction
	)
	for it.Next() {
		out = append(out, it.Instruction())
	}
	return out
}
