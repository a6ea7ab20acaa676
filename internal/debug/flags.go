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

// Package debug configures logging and runtime tracing for the evmcov
// commands.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	asynclog "github.com/bnb-chain/evmcov/log"
	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/slog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const loggingCategory = "LOGGING AND DEBUGGING"

var (
	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: loggingCategory,
	}
	LogFormatFlag = &cli.StringFlag{
		Name:     "log.format",
		Usage:    "Log format to use (json|logfmt|terminal)",
		Category: loggingCategory,
	}
	LogFileFlag = &cli.StringFlag{
		Name:     "log.file",
		Usage:    "Write logs to a file instead of stderr",
		Category: loggingCategory,
	}
	LogRotateFlag = &cli.BoolFlag{
		Name:     "log.rotate",
		Usage:    "Enables size based log file rotation",
		Category: loggingCategory,
	}
	LogMaxSizeMBsFlag = &cli.IntFlag{
		Name:     "log.maxsize",
		Usage:    "Maximum size in MBs of a single log file",
		Value:    100,
		Category: loggingCategory,
	}
	LogMaxBackupsFlag = &cli.IntFlag{
		Name:     "log.maxbackups",
		Usage:    "Maximum number of log files to retain",
		Value:    10,
		Category: loggingCategory,
	}
	LogMaxAgeFlag = &cli.IntFlag{
		Name:     "log.maxage",
		Usage:    "Maximum number of days to retain a log file",
		Value:    30,
		Category: loggingCategory,
	}
	LogCompressFlag = &cli.BoolFlag{
		Name:     "log.compress",
		Usage:    "Compress the log files",
		Value:    false,
		Category: loggingCategory,
	}
	LogRotateHoursFlag = &cli.UintFlag{
		Name:     "log.rotatehours",
		Usage:    "Rotate the log file every N hours when not using size based rotation (0 = never)",
		Category: loggingCategory,
	}
	TraceFlag = &cli.StringFlag{
		Name:     "trace",
		Usage:    "Write a Go execution trace to the given file",
		Category: loggingCategory,
	}
)

// Flags holds all command-line flags required for debugging.
var Flags = []cli.Flag{
	VerbosityFlag,
	LogFormatFlag,
	LogFileFlag,
	LogRotateFlag,
	LogMaxSizeMBsFlag,
	LogMaxBackupsFlag,
	LogMaxAgeFlag,
	LogCompressFlag,
	LogRotateHoursFlag,
	TraceFlag,
}

const asyncLogBuffer = 10000

var (
	glogger     *log.GlogHandler
	asyncWriter *asynclog.AsyncFileWriter
)

func init() {
	glogger = log.NewGlogHandler(log.NewTerminalHandler(os.Stderr, false))
}

// Setup initializes logging and tracing based on the CLI flags.
// It should be called as early as possible in the program.
func Setup(ctx *cli.Context) error {
	var (
		output   io.Writer = os.Stderr
		logFile            = ctx.String(LogFileFlag.Name)
		rotation           = ctx.Bool(LogRotateFlag.Name)
		useColor bool
	)
	if len(logFile) > 0 {
		if err := validateLogLocation(filepath.Dir(logFile)); err != nil {
			return fmt.Errorf("failed to initialize file logger: %v", err)
		}
	}
	switch {
	case len(logFile) > 0 && rotation:
		output = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    ctx.Int(LogMaxSizeMBsFlag.Name),
			MaxBackups: ctx.Int(LogMaxBackupsFlag.Name),
			MaxAge:     ctx.Int(LogMaxAgeFlag.Name),
			Compress:   ctx.Bool(LogCompressFlag.Name),
		}
	case len(logFile) > 0:
		w, err := asynclog.NewAsyncFileWriter(logFile, asyncLogBuffer, ctx.Uint(LogRotateHoursFlag.Name))
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		asyncWriter, output = w, w
	default:
		useColor = (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		if useColor {
			output = colorable.NewColorableStderr()
		}
	}

	handler, err := newHandler(ctx.String(LogFormatFlag.Name), output, useColor)
	if err != nil {
		return err
	}
	glogger = log.NewGlogHandler(handler)
	glogger.Verbosity(log.FromLegacyLevel(ctx.Int(VerbosityFlag.Name)))
	log.SetDefault(log.NewLogger(glogger))

	if traceFile := ctx.String(TraceFlag.Name); traceFile != "" {
		if err := Handler.StartGoTrace(traceFile); err != nil {
			return err
		}
	}
	return nil
}

func newHandler(format string, output io.Writer, useColor bool) (slog.Handler, error) {
	switch format {
	case "json":
		return log.JSONHandler(output), nil
	case "logfmt":
		return log.LogfmtHandler(output), nil
	case "", "terminal":
		return log.NewTerminalHandler(output, useColor), nil
	default:
		return nil, fmt.Errorf("unknown log format: %v", format)
	}
}

// Exit stops all running tracers and flushes the log file, if any.
// This is supposed to be used by the top-level handler before it exits.
func Exit() {
	Handler.StopGoTrace()
	if asyncWriter != nil {
		asyncWriter.Stop()
		asyncWriter = nil
	}
}

func validateLogLocation(path string) error {
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return fmt.Errorf("error creating the directory: %w", err)
	}
	// Check if the path is writable by trying to create a temporary file
	tmp := filepath.Join(path, "tmp")
	if f, err := os.Create(tmp); err != nil {
		return err
	} else {
		f.Close()
	}
	return os.Remove(tmp)
}
