// Package log adds filtered logging helpers and an asynchronous file writer
// on top of the go-ethereum logger.
package log

import (
	"sync/atomic"

	ethlog "github.com/ethereum/go-ethereum/log"
	"golang.org/x/exp/slog"
)

// LoggerFilter is used to print log when check func returns true.
type LoggerFilter interface {
	check() bool
}

// EveryN lets one record in N through. A nil or zero EveryN lets all through.
type EveryN struct {
	N       uint32
	counter atomic.Uint32
}

// NewEveryN creates a filter passing every n-th record.
func NewEveryN(n uint32) *EveryN {
	return &EveryN{N: n}
}

func (e *EveryN) check() bool {
	if e == nil || e.N == 0 {
		return true
	}
	return e.counter.Add(1)%e.N == 0
}

var _ LoggerFilter = &EveryN{}

type ifCondition struct {
	Condition bool
}

func (i *ifCondition) check() bool {
	return i == nil || i.Condition
}

var _ LoggerFilter = &ifCondition{}

func writeBy(filter LoggerFilter, level slog.Level, msg string, ctx ...interface{}) {
	if filter == nil || filter.check() {
		ethlog.Root().Write(level, msg, ctx...)
	}
}

func TraceBy(filter LoggerFilter, msg string, ctx ...interface{}) {
	writeBy(filter, ethlog.LevelTrace, msg, ctx...)
}

func DebugBy(filter LoggerFilter, msg string, ctx ...interface{}) {
	writeBy(filter, slog.LevelDebug, msg, ctx...)
}

func WarnBy(filter LoggerFilter, msg string, ctx ...interface{}) {
	writeBy(filter, slog.LevelWarn, msg, ctx...)
}

func DebugIf(condition bool, msg string, ctx ...interface{}) {
	DebugBy(&ifCondition{condition}, msg, ctx...)
}

func WarnIf(condition bool, msg string, ctx ...interface{}) {
	WarnBy(&ifCondition{condition}, msg, ctx...)
}
