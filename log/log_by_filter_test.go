package log

import (
	"bytes"
	"strings"
	"testing"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
)

func captureRoot(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := ethlog.Root()
	ethlog.SetDefault(ethlog.NewLogger(ethlog.NewTerminalHandlerWithLevel(&buf, ethlog.LevelTrace, false)))
	t.Cleanup(func() { ethlog.SetDefault(prev) })
	return &buf
}

func TestEveryN(t *testing.T) {
	buf := captureRoot(t)

	filter := NewEveryN(3)
	for i := 0; i < 9; i++ {
		TraceBy(filter, "sampled", "i", i)
	}
	assert.Equal(t, 3, strings.Count(buf.String(), "sampled"))

	buf.Reset()
	var all *EveryN
	for i := 0; i < 4; i++ {
		DebugBy(all, "unsampled")
	}
	assert.Equal(t, 4, strings.Count(buf.String(), "unsampled"))
}

func TestIfCondition(t *testing.T) {
	buf := captureRoot(t)

	DebugIf(false, "hidden")
	WarnIf(true, "shown", "count", 2)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "count=2")
}
