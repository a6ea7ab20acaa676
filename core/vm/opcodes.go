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
	gethvm "github.com/ethereum/go-ethereum/core/vm"
)

// OpCode is a single EVM instruction byte. Only the opcodes the scanner needs
// to name are declared here, the mnemonics come from go-ethereum.
type OpCode byte

// 0x0 range - arithmetic ops.
const (
	STOP       OpCode = 0x0
	ADD        OpCode = 0x1
	SIGNEXTEND OpCode = 0xb
)

// 0x10 range - comparison ops.
const (
	LT   OpCode = 0x10
	BYTE OpCode = 0x1a
	SHL  OpCode = 0x1b
	SHR  OpCode = 0x1c
	SAR  OpCode = 0x1d
)

// 0x20 range - crypto.
const (
	KECCAK256 OpCode = 0x20
)

// 0x30 range - closure state.
const (
	ADDRESS        OpCode = 0x30
	RETURNDATACOPY OpCode = 0x3e
	EXTCODEHASH    OpCode = 0x3f
)

// 0x40 range - block operations.
const (
	BLOCKHASH   OpCode = 0x40
	GASLIMIT    OpCode = 0x45
	CHAINID     OpCode = 0x46
	SELFBALANCE OpCode = 0x47
	BASEFEE     OpCode = 0x48
	BLOBHASH    OpCode = 0x49
	BLOBBASEFEE OpCode = 0x4a
)

// 0x50 range - 'storage' and execution.
const (
	POP      OpCode = 0x50
	JUMPDEST OpCode = 0x5b
	TLOAD    OpCode = 0x5c
	TSTORE   OpCode = 0x5d
	MCOPY    OpCode = 0x5e
	PUSH0    OpCode = 0x5f
)

// 0x60 range - pushes.
const (
	PUSH1  OpCode = 0x60
	PUSH32 OpCode = 0x7f
)

// 0x80 range - dups.
const (
	DUP1  OpCode = 0x80
	DUP16 OpCode = 0x8f
)

// 0x90 range - swaps.
const (
	SWAP1  OpCode = 0x90
	SWAP16 OpCode = 0x9f
)

// 0xa0 range - logging ops.
const (
	LOG0 OpCode = 0xa0
	LOG4 OpCode = 0xa4
)

// 0xf0 range - closures.
const (
	CREATE       OpCode = 0xf0
	DELEGATECALL OpCode = 0xf4
	CREATE2      OpCode = 0xf5
	STATICCALL   OpCode = 0xfa
	REVERT       OpCode = 0xfd
	INVALID      OpCode = 0xfe
	SELFDESTRUCT OpCode = 0xff
)

// IsPush specifies if an opcode is a PUSH opcode carrying immediate data.
// PUSH0 is not included, it has no immediate.
func (op OpCode) IsPush() bool {
	return op >= PUSH1 && op <= PUSH32
}

// Immediates returns the number of immediate data bytes following op.
func (op OpCode) Immediates() int {
	if op.IsPush() {
		return int(op-PUSH1) + 1
	}
	return 0
}

// String returns the go-ethereum mnemonic of the opcode.
func (op OpCode) String() string {
	return gethvm.OpCode(op).String()
}
