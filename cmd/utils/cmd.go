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

package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/bnb-chain/evmcov/internal/debug"
	"github.com/ethereum/go-ethereum/metrics"
)

// Fatalf formats a message to standard error, flushes logs and exits the
// program with status 1. Standard output is left untouched so no partial
// result is ever printed.
func Fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Fatal: "+format+"\n", args...)
	debug.Exit()
	os.Exit(1)
}

// DumpMetrics writes the collected metrics to w if collection is enabled.
func DumpMetrics(w io.Writer) {
	if !metrics.Enabled {
		return
	}
	metrics.WriteOnce(metrics.DefaultRegistry, w)
}
