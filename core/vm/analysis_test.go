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

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	tests := []struct {
		code  []byte
		exp   []uint64
		which string
	}{
		{[]byte{}, []uint64{}, "empty"},
		{common.FromHex("010002040a"), []uint64{0, 1, 2, 3, 4}, "arithmetic only"},
		{[]byte{byte(PUSH1), 0xff}, []uint64{0}, "push1 data"},
		{[]byte{byte(PUSH1), 0x01, byte(ADD)}, []uint64{0, 2}, "push1 add"},
		{[]byte{byte(PUSH1), byte(PUSH1), byte(PUSH1)}, []uint64{0, 2}, "push data looking like push"},
		{[]byte{byte(PUSH32)}, []uint64{0}, "lone push32"},
		{append([]byte{byte(PUSH32)}, make([]byte, 31)...), []uint64{0}, "push32 one short"},
		{append([]byte{byte(PUSH32)}, make([]byte, 32)...), []uint64{0}, "push32 exact"},
		{append(append([]byte{byte(PUSH32)}, make([]byte, 32)...), 0x00), []uint64{0, 33}, "push32 then stop"},
		{[]byte{0x0c, 0x0d, byte(STOP)}, []uint64{2}, "unused opcodes skipped"},
		{[]byte{0x21, byte(PUSH1), 0x5b, byte(JUMPDEST)}, []uint64{1, 3}, "jumpdest in data"},
		{[]byte{byte(PUSH0), byte(STOP)}, []uint64{1}, "push0 not legacy"},
		{[]byte{byte(SHR), byte(CREATE2), byte(STATICCALL)}, []uint64{}, "post-frontier opcodes"},
		{[]byte{0xf0, 0xf4, 0xfd, 0xfe, 0xff}, []uint64{0, 1, 2, 3, 4}, "system and terminal"},
	}
	for _, test := range tests {
		t.Run(test.which, func(t *testing.T) {
			set := Scan(test.code)
			assert.Equal(t, test.exp, set.Offsets())
			assert.Equal(t, len(test.exp), set.Len())
			assert.Equal(t, len(test.code), set.CodeLen())
		})
	}
}

func TestScanAllSingleByte(t *testing.T) {
	var code []byte
	for op := 0; op < 256; op++ {
		g := LegacyInstructionSet.Group(OpCode(op))
		if g != GroupInvalid && g != GroupPush {
			code = append(code, byte(op))
		}
	}
	set := Scan(code)
	require.Equal(t, len(code), set.Len())
	for pc := range code {
		assert.True(t, set.Has(uint64(pc)), "offset %d", pc)
	}
}

func TestScanNeverMarksImmediates(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(0, 512)
	for i := 0; i < 500; i++ {
		var code []byte
		f.Fuzz(&code)

		set := Scan(code)
		var data int
		for pc := 0; pc < len(code); pc++ {
			op := OpCode(code[pc])
			if !set.Has(uint64(pc)) {
				continue
			}
			require.True(t, LegacyInstructionSet.Valid(op), "invalid opcode marked at %d", pc)
			// immediates of a marked PUSH must be unmarked
			for j := 1; j <= op.Immediates() && pc+j < len(code); j++ {
				require.False(t, set.Has(uint64(pc+j)), "immediate %d of push at %d marked", j, pc)
				data++
			}
		}
		require.LessOrEqual(t, set.Len()+data, len(code))
		for _, pc := range set.Offsets() {
			require.Less(t, pc, uint64(len(code)))
		}
	}
}

func TestScanDeterministic(t *testing.T) {
	code := common.FromHex("6080604052348015600f57600080fd5b50603e80601d6000396000f3fe")
	a, b := Scan(code), Scan(code)
	assert.Equal(t, a.Offsets(), b.Offsets())
}

type recordingHook struct {
	instrs  []uint64
	sizes   []int
	invalid []uint64
}

func (h *recordingHook) OnInstruction(pc uint64, op OpCode, size int) {
	h.instrs = append(h.instrs, pc)
	h.sizes = append(h.sizes, size)
}

func (h *recordingHook) OnInvalid(pc uint64, op OpCode) {
	h.invalid = append(h.invalid, pc)
}

func TestScanWithHook(t *testing.T) {
	code := []byte{byte(PUSH1 + 1), 0x01, 0x02, 0x0c, byte(ADD), byte(PUSH1 + 3), 0xaa}
	hook := new(recordingHook)
	set := LegacyInstructionSet.ScanWithHook(code, hook)

	assert.Equal(t, []uint64{0, 4, 5}, set.Offsets())
	assert.Equal(t, []uint64{0, 4, 5}, hook.instrs)
	assert.Equal(t, []int{3, 1, 2}, hook.sizes)
	assert.Equal(t, []uint64{3}, hook.invalid)
}

func TestInstructionSets(t *testing.T) {
	code := []byte{byte(PUSH0), byte(SHL), byte(TLOAD), byte(MCOPY), byte(BLOBHASH)}

	assert.Empty(t, LegacyInstructionSet.Scan(code).Offsets())
	assert.Equal(t, []uint64{0, 1}, ShanghaiInstructionSet.Scan(code).Offsets())
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, CancunInstructionSet.Scan(code).Offsets())

	// legacy opcodes keep their group in later sets
	for op := 0; op < 256; op++ {
		if g := LegacyInstructionSet.Group(OpCode(op)); g != GroupInvalid {
			assert.Equal(t, g, CancunInstructionSet.Group(OpCode(op)), "opcode %#x", op)
		}
	}
}

func TestLookupInstructionSet(t *testing.T) {
	set, err := LookupInstructionSet("")
	require.NoError(t, err)
	assert.Equal(t, &LegacyInstructionSet, set)

	set, err = LookupInstructionSet("Cancun")
	require.NoError(t, err)
	assert.Equal(t, &CancunInstructionSet, set)

	_, err = LookupInstructionSet("prague")
	assert.Error(t, err)
}

func BenchmarkScan(b *testing.B) {
	code := make([]byte, 1200)
	for i := range code {
		code[i] = byte(i)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Scan(code)
	}
}
