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

// Package coverage measures how much of a contract's bytecode a test suite
// executed, given the instruction starts of the code and a program counter
// trace.
package coverage

import (
	"errors"

	"github.com/bnb-chain/evmcov/core/vm"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/willf/bitset"
)

// ErrEmptyDomain is returned when the code has no instruction to cover.
var ErrEmptyDomain = errors.New("empty coverage domain: code contains no instructions")

// Result is the outcome of matching a trace against the instructions of a
// piece of code.
type Result struct {
	Hits    int // distinct instruction starts executed
	Total   int // instruction starts in the code
	Entries int // trace entries consumed, duplicates included

	hit   *bitset.BitSet
	stray mapset.Set[int64]
}

// Ratio returns Hits/Total, a value in [0, 1].
func (r *Result) Ratio() float64 {
	return float64(r.Hits) / float64(r.Total)
}

// Hit reports whether the instruction at pc was executed.
func (r *Result) Hit(pc uint64) bool {
	return r.hit.Test(uint(pc))
}

// Stray returns the distinct trace entries that are not instruction starts,
// in no particular order.
func (r *Result) Stray() []int64 {
	return r.stray.ToSlice()
}

// StrayCount returns the number of distinct trace entries that are not
// instruction starts.
func (r *Result) StrayCount() int {
	return r.stray.Cardinality()
}

// Compute matches trace against instrs. Entries that are not instruction
// starts are ignored, and executing an instruction more than once counts
// it once.
func Compute(instrs *vm.Instructions, trace []int64) (*Result, error) {
	if instrs.Empty() {
		return nil, ErrEmptyDomain
	}
	res := &Result{
		Total:   instrs.Len(),
		Entries: len(trace),
		hit:     bitset.New(uint(instrs.CodeLen())),
		stray:   mapset.NewThreadUnsafeSet[int64](),
	}
	for _, pc := range trace {
		if pc < 0 || !instrs.Has(uint64(pc)) {
			res.stray.Add(pc)
			continue
		}
		if res.hit.Test(uint(pc)) {
			continue
		}
		res.hit.Set(uint(pc))
		res.Hits++
	}
	hitCounter.Inc(int64(res.Hits))
	strayCounter.Inc(int64(res.stray.Cardinality()))
	ratioGauge.Update(res.Ratio())
	return res, nil
}

// Coverage returns the fraction of instrs executed by trace.
func Coverage(instrs *vm.Instructions, trace []int64) (float64, error) {
	res, err := Compute(instrs, trace)
	if err != nil {
		return 0, err
	}
	return res.Ratio(), nil
}
