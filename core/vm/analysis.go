// Copyright 2025 The evmcov Authors
// This file is part of the evmcov library.
//
// The evmcov library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The evmcov library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the evmcov library. If not, see <http://www.gnu.org/licenses/>.

package vm

// ScanHook observes the scanner as it walks the code. It must not retain
// or modify the code slice.
type ScanHook interface {
	// OnInstruction is called for every instruction start. size is the number
	// of bytes the instruction occupies, after clamping to the end of the code.
	OnInstruction(pc uint64, op OpCode, size int)

	// OnInvalid is called for every byte outside the instruction set that is
	// reached by the cursor.
	OnInvalid(pc uint64, op OpCode)
}

// Scan collects the instruction starts of code using the legacy instruction set.
func Scan(code []byte) *Instructions {
	return LegacyInstructionSet.Scan(code)
}

// Scan collects the instruction starts of code.
func (s *InstructionSet) Scan(code []byte) *Instructions {
	return s.ScanWithHook(code, nil)
}

// ScanWithHook is like Scan but reports every step to hook, if non-nil.
//
// A PUSHn marks its own offset and moves the cursor past its n immediate
// bytes, so immediates are never classified. A PUSH truncated by the end of
// the code is still an instruction, its missing bytes are simply absent.
// Bytes outside the instruction set are skipped one at a time.
func (s *InstructionSet) ScanWithHook(code []byte, hook ScanHook) *Instructions {
	var (
		set       = newInstructions(len(code))
		end       = uint64(len(code))
		invalid   int64
		truncated int64
	)
	for pc := uint64(0); pc < end; {
		op := OpCode(code[pc])
		group := s[op]
		if group == GroupInvalid {
			if hook != nil {
				hook.OnInvalid(pc, op)
			}
			invalid++
			pc++
			continue
		}
		set.add(pc)

		size := uint64(1)
		if group == GroupPush {
			size += uint64(op.Immediates())
		}
		if pc+size > end {
			size = end - pc
			truncated++
		}
		if hook != nil {
			hook.OnInstruction(pc, op, int(size))
		}
		pc += size
	}
	scannedBytesMeter.Inc(int64(len(code)))
	instructionCounter.Inc(int64(set.Len()))
	invalidOpcodeCounter.Inc(invalid)
	truncatedPushCounter.Inc(truncated)
	return set
}
