package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnb-chain/evmcov/cmd/utils"
	"github.com/bnb-chain/evmcov/core/coverage"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	app := newApp()
	var stdout, stderr bytes.Buffer
	app.Writer, app.ErrWriter = &stdout, &stderr
	err := app.Run(append([]string{"evmcov"}, args...))
	return stdout.String(), stderr.String(), err
}

func tempFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestCoverage(t *testing.T) {
	tests := []struct {
		name  string
		code  []byte
		trace string
		args  []string
		want  string
	}{
		{
			name:  "full",
			code:  []byte{0x60, 0x01, 0x00}, // PUSH1 0x01, STOP
			trace: "PC: 0\nPC: 2\n",
			want:  "Code Coverage: 1\n",
		},
		{
			name:  "partial with duplicates",
			code:  []byte{0x01, 0x02, 0x03, 0x04, 0x05},
			trace: "PC: 0\nPC: 1\nPC: 1\n",
			want:  "Code Coverage: 0.4\n",
		},
		{
			name:  "immediates are not instructions",
			code:  []byte{0x60, 0x01, 0x00},
			trace: "PC: 1\nPC: 0\n",
			want:  "Code Coverage: 0.5\n",
		},
		{
			name:  "empty trace",
			code:  []byte{0x00},
			trace: "",
			want:  "Code Coverage: 0\n",
		},
		{
			name:  "hex input",
			code:  []byte("0x600100\n"),
			trace: "PC: 2",
			args:  []string{"--hex"},
			want:  "Code Coverage: 0.5\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			args := append(tt.args,
				tempFile(t, dir, "code.bin", tt.code),
				tempFile(t, dir, "code.trace", []byte(tt.trace)),
			)
			stdout, _, err := runApp(t, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestCoverageErrors(t *testing.T) {
	dir := t.TempDir()
	code := tempFile(t, dir, "code.bin", []byte{0x00})
	empty := tempFile(t, dir, "empty.bin", nil)
	trace := tempFile(t, dir, "code.trace", []byte("PC: 0"))
	badTrace := tempFile(t, dir, "bad.trace", []byte("PC: 0\nPC: zero\n"))

	stdout, _, err := runApp(t, code)
	assert.True(t, errors.Is(err, utils.ErrArgumentCount))
	assert.Empty(t, stdout)

	stdout, _, err = runApp(t, code, trace, trace)
	assert.True(t, errors.Is(err, utils.ErrArgumentCount))
	assert.Empty(t, stdout)

	stdout, _, err = runApp(t, filepath.Join(dir, "missing.bin"), trace)
	var inErr *utils.InputError
	assert.True(t, errors.As(err, &inErr))
	assert.Empty(t, stdout)

	stdout, _, err = runApp(t, code, badTrace)
	var perr *coverage.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, perr.Index)
	assert.Empty(t, stdout)

	stdout, _, err = runApp(t, empty, trace)
	assert.True(t, errors.Is(err, coverage.ErrEmptyDomain))
	assert.Empty(t, stdout)

	stdout, _, err = runApp(t, "--instructionset", "frontier", code, trace)
	assert.Error(t, err)
	assert.Empty(t, stdout)
}

func TestCoverageReport(t *testing.T) {
	dir := t.TempDir()
	code := tempFile(t, dir, "code.bin", []byte{0x60, 0x01, 0x60, 0x02, 0x01, 0x00})
	trace := tempFile(t, dir, "code.trace", []byte("PC: 0 PC: 2 PC: 3 PC: 4"))
	out := filepath.Join(dir, "report.json")

	stdout, stderr, err := runApp(t, "--report", "--report.missed", "--report.out", out, code, trace)
	require.NoError(t, err)
	assert.Equal(t, "Code Coverage: 0.75\n", stdout)
	assert.Contains(t, stderr, "arithmetic")
	assert.Contains(t, stderr, "00005: STOP")

	blob, err := os.ReadFile(out)
	require.NoError(t, err)
	var report coverage.Report
	require.NoError(t, json.Unmarshal(blob, &report))
	assert.Equal(t, 4, report.Instructions)
	assert.Equal(t, 3, report.Hits)
	assert.Equal(t, []int64{3}, report.Stray)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	code := tempFile(t, dir, "code.txt", []byte("5f00"))
	trace := tempFile(t, dir, "code.trace", []byte("PC: 0"))
	config := tempFile(t, dir, "config.toml", []byte("[Input]\nHex = true\nInstructionSet = \"shanghai\"\n"))

	// PUSH0 only exists from shanghai on.
	stdout, _, err := runApp(t, "--config", config, code, trace)
	require.NoError(t, err)
	assert.Equal(t, "Code Coverage: 0.5\n", stdout)

	// Flags take precedence over the file.
	stdout, _, err = runApp(t, "--config", config, "--instructionset", "legacy", code, trace)
	require.NoError(t, err)
	assert.Equal(t, "Code Coverage: 0\n", stdout)

	stdout, _, err = runApp(t, "dumpconfig", "--config", config)
	require.NoError(t, err)
	assert.Contains(t, stdout, "[Input]")
	assert.Contains(t, stdout, `InstructionSet = "shanghai"`)

	bad := tempFile(t, dir, "bad.toml", []byte("[Input]\nColour = true\n"))
	_, _, err = runApp(t, "--config", bad, code, trace)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Colour")
}

func TestDisasm(t *testing.T) {
	dir := t.TempDir()
	code := tempFile(t, dir, "code.bin", []byte{0x60, 0x80, 0x0c, 0x00})
	trace := tempFile(t, dir, "code.trace", []byte("PC: 0"))

	stdout, _, err := runApp(t, "disasm", code)
	require.NoError(t, err)
	assert.Contains(t, stdout, "PUSH1")
	assert.Contains(t, stdout, "0x80")
	assert.Contains(t, stdout, "STOP")
	assert.NotContains(t, stdout, "Executed")

	stdout, _, err = runApp(t, "disasm", code, trace)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Executed")
	assert.Contains(t, stdout, "Code Coverage: 0.5\n")

	_, _, err = runApp(t, "disasm")
	assert.True(t, errors.Is(err, utils.ErrArgumentCount))
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	tempFile(t, dir, "a.bin", []byte{0x60, 0x01, 0x00})
	tempFile(t, dir, "a.trace", []byte("PC: 0\nPC: 2\n"))
	tempFile(t, dir, "b.hex", []byte("0102030405"))
	tempFile(t, dir, "b.trace", []byte("PC: 0\nPC: 1\n"))
	tempFile(t, dir, "bad.trace", []byte("PC: -"))

	manifest := tempFile(t, dir, "jobs.toml", []byte(`
[[Job]]
Name = "a"
Bytecode = "a.bin"
Trace = "a.trace"

[[Job]]
Bytecode = "b.hex"
Trace = "b.trace"
Hex = true

[[Job]]
Name = "again"
Bytecode = "a.bin"
Trace = "b.trace"
`))
	stdout, _, err := runApp(t, "batch", "--batch.threads", "2", manifest)
	require.NoError(t, err)
	assert.Equal(t, "Code Coverage (a): 1\nCode Coverage (b.hex): 0.4\nCode Coverage (again): 0.5\n", stdout)

	failing := tempFile(t, dir, "failing.toml", []byte(`
[[Job]]
Name = "ok"
Bytecode = "a.bin"
Trace = "a.trace"

[[Job]]
Name = "broken"
Bytecode = "a.bin"
Trace = "bad.trace"
`))
	stdout, _, err = runApp(t, "batch", failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, "Code Coverage (ok): 1\n", stdout)
}
