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
	"fmt"
	"strings"
)

// Group is the class an opcode byte belongs to in an instruction set.
type Group uint8

const (
	GroupInvalid Group = iota // unused opcode, never an instruction start
	GroupArithmetic
	GroupComparison
	GroupHashing
	GroupEnvironment
	GroupBlock
	GroupStackMemory
	GroupPush
	GroupDup
	GroupSwap
	GroupLog
	GroupSystem
	GroupTerminal

	numGroups
)

var groupNames = [numGroups]string{
	GroupInvalid:     "invalid",
	GroupArithmetic:  "arithmetic",
	GroupComparison:  "comparison",
	GroupHashing:     "hashing",
	GroupEnvironment: "environment",
	GroupBlock:       "block",
	GroupStackMemory: "stack/memory",
	GroupPush:        "push",
	GroupDup:         "dup",
	GroupSwap:        "swap",
	GroupLog:         "log",
	GroupSystem:      "system",
	GroupTerminal:    "terminal",
}

func (g Group) String() string {
	if g < numGroups {
		return groupNames[g]
	}
	return fmt.Sprintf("group %d", g)
}

// Groups returns every valid instruction group in table order.
func Groups() []Group {
	groups := make([]Group, 0, numGroups-1)
	for g := GroupArithmetic; g < numGroups; g++ {
		groups = append(groups, g)
	}
	return groups
}

// InstructionSet maps every byte value to its opcode group.
type InstructionSet [256]Group

var (
	LegacyInstructionSet   = newLegacyInstructionSet()
	ShanghaiInstructionSet = newShanghaiInstructionSet()
	CancunInstructionSet   = newCancunInstructionSet()
)

var instructionSets = map[string]*InstructionSet{
	"legacy":   &LegacyInstructionSet,
	"shanghai": &ShanghaiInstructionSet,
	"cancun":   &CancunInstructionSet,
}

// LookupInstructionSet returns the instruction set registered under name.
// The empty name selects the legacy set.
func LookupInstructionSet(name string) (*InstructionSet, error) {
	if name == "" {
		return &LegacyInstructionSet, nil
	}
	set, ok := instructionSets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown instruction set %q (want legacy, shanghai or cancun)", name)
	}
	return set, nil
}

// Group returns the group of op.
func (s *InstructionSet) Group(op OpCode) Group {
	return s[op]
}

// Valid reports whether op starts an instruction in this set.
func (s *InstructionSet) Valid(op OpCode) bool {
	return s[op] != GroupInvalid
}

func (s *InstructionSet) fill(from, to OpCode, g Group) {
	for op := int(from); op <= int(to); op++ {
		s[op] = g
	}
}

// newLegacyInstructionSet returns the fixed opcode table the coverage
// domain is defined against.
func newLegacyInstructionSet() InstructionSet {
	var s InstructionSet
	s.fill(STOP, SIGNEXTEND, GroupArithmetic)
	s.fill(LT, BYTE, GroupComparison)
	s.fill(KECCAK256, KECCAK256, GroupHashing)
	s.fill(ADDRESS, RETURNDATACOPY, GroupEnvironment)
	s.fill(BLOCKHASH, GASLIMIT, GroupBlock)
	s.fill(POP, JUMPDEST, GroupStackMemory)
	s.fill(PUSH1, PUSH32, GroupPush)
	s.fill(DUP1, DUP16, GroupDup)
	s.fill(SWAP1, SWAP16, GroupSwap)
	s.fill(LOG0, LOG4, GroupLog)
	s.fill(CREATE, DELEGATECALL, GroupSystem)
	s.fill(REVERT, SELFDESTRUCT, GroupTerminal)
	return s
}

// newShanghaiInstructionSet adds the single-byte opcodes introduced from
// Constantinople up to Shanghai.
func newShanghaiInstructionSet() InstructionSet {
	s := newLegacyInstructionSet()
	s.fill(SHL, SAR, GroupComparison)
	s[EXTCODEHASH] = GroupEnvironment
	s.fill(CHAINID, BASEFEE, GroupBlock)
	s[PUSH0] = GroupPush
	s[CREATE2] = GroupSystem
	s[STATICCALL] = GroupSystem
	return s
}

func newCancunInstructionSet() InstructionSet {
	s := newShanghaiInstructionSet()
	s.fill(BLOBHASH, BLOBBASEFEE, GroupBlock)
	s.fill(TLOAD, MCOPY, GroupStackMemory)
	return s
}
