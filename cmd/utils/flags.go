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

// Package utils contains internal helper functions for evmcov commands.
package utils

import (
	"github.com/urfave/cli/v2"
)

const (
	InputCategory  = "INPUT"
	ReportCategory = "REPORT"
	BatchCategory  = "BATCH"
	MiscCategory   = "MISC"
)

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.
//
// The flags are defined here so their names and help texts
// are the same for all commands.

var (
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: MiscCategory,
	}
	MetricsEnabledFlag = &cli.BoolFlag{
		Name:     "metrics",
		Usage:    "Enable metrics collection and dump them to stderr on exit",
		Category: MiscCategory,
	}

	// Input settings
	HexInputFlag = &cli.BoolFlag{
		Name:     "hex",
		Usage:    "Bytecode files contain hex text (optional 0x prefix) instead of raw bytes",
		Category: InputCategory,
	}
	InstructionSetFlag = &cli.StringFlag{
		Name:     "instructionset",
		Usage:    "Opcode table defining instruction starts (legacy|shanghai|cancun)",
		Value:    "legacy",
		Category: InputCategory,
	}
	ScanTraceFlag = &cli.BoolFlag{
		Name:     "scan.trace",
		Usage:    "Log every instruction the scanner visits at trace level",
		Category: InputCategory,
	}
	ScanTraceEveryFlag = &cli.UintFlag{
		Name:     "scan.trace.every",
		Usage:    "Only log every N-th scanner step when --scan.trace is set",
		Value:    1,
		Category: InputCategory,
	}

	// Report settings
	ReportFlag = &cli.BoolFlag{
		Name:     "report",
		Usage:    "Print a per opcode group coverage table to stderr",
		Category: ReportCategory,
	}
	ReportMissedFlag = &cli.BoolFlag{
		Name:     "report.missed",
		Usage:    "List the instructions that were never executed on stderr",
		Category: ReportCategory,
	}
	ReportOutputFlag = &cli.StringFlag{
		Name:     "report.out",
		Usage:    "Write the full coverage report to a file (.json or .yaml)",
		Category: ReportCategory,
	}

	// Batch settings
	BatchThreadsFlag = &cli.IntFlag{
		Name:     "batch.threads",
		Usage:    "Number of jobs computed concurrently (0 = derived from the job count)",
		Category: BatchCategory,
	}
	BatchCacheSizeFlag = &cli.IntFlag{
		Name:     "batch.cache",
		Usage:    "Number of scanned bytecodes kept for reuse across jobs",
		Value:    256,
		Category: BatchCategory,
	}
)

var (
	// InputFlags select how inputs are decoded and scanned.
	InputFlags = []cli.Flag{
		HexInputFlag,
		InstructionSetFlag,
		ScanTraceFlag,
		ScanTraceEveryFlag,
	}
	// ReportFlags control the optional coverage report.
	ReportFlags = []cli.Flag{
		ReportFlag,
		ReportMissedFlag,
		ReportOutputFlag,
	}
	// BatchFlags tune the batch command.
	BatchFlags = []cli.Flag{
		BatchThreadsFlag,
		BatchCacheSizeFlag,
	}
)
