// Copyright 2025 The evmcov Authors
// This file is part of evmcov.
//
// evmcov is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// evmcov is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with evmcov. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"

	"github.com/bnb-chain/evmcov/cmd/utils"
	"github.com/bnb-chain/evmcov/core/coverage"
	"github.com/bnb-chain/evmcov/core/vm"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

var disasmCommand = &cli.Command{
	Action:    disasmAction,
	Name:      "disasm",
	Usage:     "Disassemble bytecode, optionally marking executed instructions",
	ArgsUsage: "<bytecode> [trace]",
	Flags:     append([]cli.Flag{utils.ConfigFileFlag}, utils.InputFlags...),
	Description: `
The disasm command prints one row per instruction start of the bytecode file.
Bytes outside the instruction set are skipped, like the coverage scanner does.
When a trace file is given, a column shows whether each instruction ran.`,
}

var (
	coveredColor = color.New(color.FgGreen)
	missedColor  = color.New(color.FgRed)
)

func disasmAction(ctx *cli.Context) error {
	if n := ctx.Args().Len(); n < 1 || n > 2 {
		return fmt.Errorf("%w: expected <bytecode> [trace], got %d", utils.ErrArgumentCount, n)
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	set, err := vm.LookupInstructionSet(cfg.Input.InstructionSet)
	if err != nil {
		return err
	}
	code, err := utils.ReadBytecode(ctx.Args().Get(0), cfg.Input.Hex)
	if err != nil {
		return err
	}
	var res *coverage.Result
	if ctx.Args().Len() == 2 {
		trace, err := utils.ReadTrace(ctx.Args().Get(1))
		if err != nil {
			return err
		}
		if res, err = coverage.Compute(scanCode(ctx, set, code), trace); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(ctx.App.Writer)
	header := []string{"PC", "Opcode", "Group", "Immediate"}
	if res != nil {
		header = append(header, "Executed")
	}
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)

	it := vm.NewIterator(code, set)
	for it.Next() {
		ins := it.Instruction()
		row := []string{fmt.Sprintf("%05x", ins.PC), ins.Op.String(), ins.Group.String(), immediate(&ins)}
		if res != nil {
			if res.Hit(ins.PC) {
				row = append(row, coveredColor.Sprint("yes"))
			} else {
				row = append(row, missedColor.Sprint("no"))
			}
		}
		table.Append(row)
	}
	table.Render()

	if res != nil {
		fmt.Fprintf(ctx.App.Writer, "Code Coverage: %s\n", coverage.FormatRatio(res.Ratio()))
	}
	return nil
}

func immediate(ins *vm.Instruction) string {
	if ins.Immediate == nil {
		return ""
	}
	s := ins.Value().Hex()
	if ins.Truncated {
		s += " (truncated)"
	}
	return s
}
