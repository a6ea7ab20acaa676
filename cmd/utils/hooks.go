package utils

import (
	"github.com/bnb-chain/evmcov/core/vm"
	"github.com/bnb-chain/evmcov/log"
)

// ScanLogger is a scan hook printing the scanner's steps at trace level,
// sampled by an EveryN filter.
type ScanLogger struct {
	filter *log.EveryN
}

// NewScanLogger creates a hook logging one step in every.
func NewScanLogger(every uint32) *ScanLogger {
	return &ScanLogger{filter: log.NewEveryN(every)}
}

func (l *ScanLogger) OnInstruction(pc uint64, op vm.OpCode, size int) {
	log.TraceBy(l.filter, "Scanned instruction", "pc", pc, "op", op, "size", size)
}

func (l *ScanLogger) OnInvalid(pc uint64, op vm.OpCode) {
	log.TraceBy(l.filter, "Skipped invalid opcode", "pc", pc, "byte", uint8(op))
}

var _ vm.ScanHook = (*ScanLogger)(nil)
