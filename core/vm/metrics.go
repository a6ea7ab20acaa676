package vm

import "github.com/ethereum/go-ethereum/metrics"

var (
	scannedBytesMeter    = metrics.NewRegisteredCounter("vm/scan/bytes", nil)
	instructionCounter   = metrics.NewRegisteredCounter("vm/scan/instructions", nil)
	invalidOpcodeCounter = metrics.NewRegisteredCounter("vm/scan/invalid", nil)
	truncatedPushCounter = metrics.NewRegisteredCounter("vm/scan/truncated", nil)
)
