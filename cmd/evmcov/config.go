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
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/bnb-chain/evmcov/cmd/utils"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Export configuration values in a TOML format",
	ArgsUsage:   "<dumpfile (optional)>",
	Flags:       append(append([]cli.Flag{utils.ConfigFileFlag}, utils.InputFlags...), utils.ReportFlags...),
	Description: `Export configuration values in TOML format (to stdout by default).`,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

type InputConfig struct {
	Hex            bool
	InstructionSet string
}

type ReportConfig struct {
	Table  bool
	Missed bool
	Output string `toml:",omitempty"`
}

type BatchConfig struct {
	Threads   int
	CacheSize int
}

type evmcovConfig struct {
	Input  InputConfig
	Report ReportConfig
	Batch  BatchConfig
}

func defaultConfig() evmcovConfig {
	return evmcovConfig{
		Input: InputConfig{InstructionSet: utils.InstructionSetFlag.Value},
		Batch: BatchConfig{CacheSize: utils.BatchCacheSizeFlag.Value},
	}
}

func loadConfig(file string, cfg interface{}) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the configuration file, if any, and applies the command
// line flags on top of it.
func makeConfig(ctx *cli.Context) (evmcovConfig, error) {
	cfg := defaultConfig()
	if file := ctx.String(utils.ConfigFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if ctx.IsSet(utils.HexInputFlag.Name) {
		cfg.Input.Hex = ctx.Bool(utils.HexInputFlag.Name)
	}
	if ctx.IsSet(utils.InstructionSetFlag.Name) {
		cfg.Input.InstructionSet = ctx.String(utils.InstructionSetFlag.Name)
	}
	if ctx.IsSet(utils.ReportFlag.Name) {
		cfg.Report.Table = ctx.Bool(utils.ReportFlag.Name)
	}
	if ctx.IsSet(utils.ReportMissedFlag.Name) {
		cfg.Report.Missed = ctx.Bool(utils.ReportMissedFlag.Name)
	}
	if ctx.IsSet(utils.ReportOutputFlag.Name) {
		cfg.Report.Output = ctx.String(utils.ReportOutputFlag.Name)
	}
	if ctx.IsSet(utils.BatchThreadsFlag.Name) {
		cfg.Batch.Threads = ctx.Int(utils.BatchThreadsFlag.Name)
	}
	if ctx.IsSet(utils.BatchCacheSizeFlag.Name) {
		cfg.Batch.CacheSize = ctx.Int(utils.BatchCacheSizeFlag.Name)
	}
	return cfg, nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := ctx.App.Writer
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		dump = f
	}
	_, err = dump.Write(out)
	return err
}
