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

// evmcov computes the instruction coverage of EVM bytecode from a trace of
// executed program counters.
package main

import (
	"fmt"
	"os"

	"github.com/bnb-chain/evmcov/cmd/utils"
	"github.com/bnb-chain/evmcov/core/coverage"
	"github.com/bnb-chain/evmcov/core/vm"
	"github.com/bnb-chain/evmcov/internal/debug"
	"github.com/bnb-chain/evmcov/log"
	"github.com/urfave/cli/v2"

	// Automatically set GOMAXPROCS to match Linux container CPU quota.
	_ "go.uber.org/automaxprocs"
)

var app = newApp()

func newApp() *cli.App {
	app := &cli.App{
		Name:      "evmcov",
		Usage:     "EVM bytecode instruction coverage",
		ArgsUsage: "<bytecode> <trace>",
		Action:    coverageAction,
		Copyright: "Copyright 2025 The evmcov Authors",
		Commands: []*cli.Command{
			disasmCommand,
			batchCommand,
			dumpConfigCommand,
		},
		Description: `
Prints "Code Coverage: <ratio>", the share of instruction starts of the
bytecode file that appear in the trace file. The trace holds entries of the
form "PC: <decimal>".`,
	}
	app.Flags = append(app.Flags, utils.ConfigFileFlag, utils.MetricsEnabledFlag)
	app.Flags = append(app.Flags, utils.InputFlags...)
	app.Flags = append(app.Flags, utils.ReportFlags...)
	app.Flags = append(app.Flags, debug.Flags...)

	app.Before = func(ctx *cli.Context) error {
		return debug.Setup(ctx)
	}
	app.After = func(ctx *cli.Context) error {
		utils.DumpMetrics(ctx.App.ErrWriter)
		debug.Exit()
		return nil
	}
	return app
}

func main() {
	if err := app.Run(os.Args); err != nil {
		utils.Fatalf("%v", err)
	}
}

// coverageAction computes the coverage of one bytecode file against one
// trace file.
func coverageAction(ctx *cli.Context) error {
	if ctx.Args().Len() != 2 {
		return fmt.Errorf("%w: expected <bytecode> <trace>, got %d", utils.ErrArgumentCount, ctx.Args().Len())
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
	trace, err := utils.ReadTrace(ctx.Args().Get(1))
	if err != nil {
		return err
	}

	res, err := coverage.Compute(scanCode(ctx, set, code), trace)
	if err != nil {
		return err
	}
	log.WarnIf(res.StrayCount() > 0, "Trace holds offsets that are not instruction starts", "count", res.StrayCount())
	log.DebugIf(res.Hits == res.Total, "Every instruction was executed", "instructions", res.Total)

	if err := writeReport(ctx, cfg.Report, code, set, res); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Code Coverage: %s\n", coverage.FormatRatio(res.Ratio()))
	return nil
}

func scanCode(ctx *cli.Context, set *vm.InstructionSet, code []byte) *vm.Instructions {
	defer debug.Handler.StartRegionAuto("scan")()

	if ctx.Bool(utils.ScanTraceFlag.Name) {
		return set.ScanWithHook(code, utils.NewScanLogger(uint32(ctx.Uint(utils.ScanTraceEveryFlag.Name))))
	}
	return set.Scan(code)
}

// writeReport emits the optional report outputs. It runs before the coverage
// line is printed, so a failing export leaves stdout empty.
func writeReport(ctx *cli.Context, cfg ReportConfig, code []byte, set *vm.InstructionSet, res *coverage.Result) error {
	if cfg.Output == "" && !cfg.Table && !cfg.Missed {
		return nil
	}
	report := coverage.NewReport(code, set, res)
	if cfg.Output != "" {
		if err := report.WriteFile(cfg.Output); err != nil {
			return err
		}
	}
	if cfg.Table {
		report.WriteTable(ctx.App.ErrWriter)
	}
	if cfg.Missed {
		report.WriteMissed(ctx.App.ErrWriter)
	}
	return nil
}
