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
	"path/filepath"
	"strconv"

	"github.com/bnb-chain/evmcov/cmd/utils"
	"github.com/bnb-chain/evmcov/core/coverage"
	"github.com/bnb-chain/evmcov/core/vm"
	"github.com/bnb-chain/evmcov/internal/debug"
	"github.com/ethereum/go-ethereum/log"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

var batchCommand = &cli.Command{
	Action:    batchAction,
	Name:      "batch",
	Usage:     "Compute the coverage of many bytecode/trace pairs listed in a manifest",
	ArgsUsage: "<manifest.toml>",
	Flags: append([]cli.Flag{
		utils.ConfigFileFlag,
		utils.HexInputFlag,
		utils.InstructionSetFlag,
		utils.ReportFlag,
	}, utils.BatchFlags...),
	Description: `
The batch command reads a TOML manifest of jobs:

    [[Job]]
    Name = "token"
    Bytecode = "token.bin"
    Trace = "token.trace"
    Hex = false

Relative paths are resolved against the manifest's directory. Jobs run in
parallel and one "Code Coverage (<name>): <ratio>" line is printed per
successful job, in manifest order. The command fails if any job failed.`,
}

// JobConfig is one entry of a batch manifest.
type JobConfig struct {
	Name     string
	Bytecode string
	Trace    string
	Hex      bool
}

type batchManifest struct {
	Job []JobConfig
}

func loadManifest(path string) ([]JobConfig, error) {
	var manifest batchManifest
	if err := loadConfig(path, &manifest); err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	for i := range manifest.Job {
		job := &manifest.Job[i]
		if job.Bytecode == "" || job.Trace == "" {
			return nil, fmt.Errorf("%s: job %d needs both Bytecode and Trace", path, i)
		}
		job.Bytecode = resolvePath(dir, job.Bytecode)
		job.Trace = resolvePath(dir, job.Trace)
		if job.Name == "" {
			job.Name = filepath.Base(job.Bytecode)
		}
	}
	return manifest.Job, nil
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func batchAction(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return fmt.Errorf("%w: expected <manifest.toml>, got %d", utils.ErrArgumentCount, ctx.Args().Len())
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	set, err := vm.LookupInstructionSet(cfg.Input.InstructionSet)
	if err != nil {
		return err
	}
	manifest, err := loadManifest(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	jobs := make([]coverage.Job, len(manifest))
	for i, jc := range manifest {
		jc := jc
		hex := jc.Hex || cfg.Input.Hex
		jobs[i] = coverage.Job{
			Name:  jc.Name,
			Code:  func() ([]byte, error) { return utils.ReadBytecode(jc.Bytecode, hex) },
			Trace: func() ([]int64, error) { return utils.ReadTrace(jc.Trace) },
		}
	}
	log.Debug("Loaded batch manifest", "jobs", len(jobs), "instructionset", cfg.Input.InstructionSet)

	runner := &coverage.Runner{
		Set:     set,
		Cache:   coverage.NewScanCache(cfg.Batch.CacheSize),
		Threads: cfg.Batch.Threads,
	}
	endRegion := debug.Handler.StartRegionAuto("batch")
	results, runErr := runner.Run(jobs)
	endRegion()

	for _, res := range results {
		if res.Err != nil {
			continue
		}
		fmt.Fprintf(ctx.App.Writer, "Code Coverage (%s): %s\n", res.Name, coverage.FormatRatio(res.Result.Ratio()))
	}
	if cfg.Report.Table {
		writeBatchTable(ctx, results)
	}
	return runErr
}

func writeBatchTable(ctx *cli.Context, results []coverage.JobResult) {
	table := tablewriter.NewWriter(ctx.App.ErrWriter)
	table.SetHeader([]string{"Job", "Code Hash", "Hits", "Total", "Coverage"})
	for _, res := range results {
		if res.Err != nil {
			table.Append([]string{res.Name, "", "", "", "failed"})
			continue
		}
		table.Append([]string{
			res.Name,
			res.CodeHash.TerminalString(),
			strconv.Itoa(res.Result.Hits),
			strconv.Itoa(res.Result.Total),
			coverage.FormatRatio(res.Result.Ratio()),
		})
	}
	table.Render()
}
