package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.log")

	w, err := NewAsyncFileWriter(path, 100, 0)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	assert.Error(t, w.Start(), "double start")

	n, err := w.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	w.Write([]byte("world\n"))
	w.Stop()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", string(content))

	target, err := os.Readlink(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(target), "hello.log."))
	assert.Equal(t, uint64(0), w.Dropped())
}

func TestWriterDropsWhenFull(t *testing.T) {
	w, err := NewAsyncFileWriter(filepath.Join(t.TempDir(), "full.log"), 1, 0)
	require.NoError(t, err)

	// not started, nothing drains the buffer
	w.Write([]byte("a\n"))
	w.Write([]byte("b\n"))
	w.Write([]byte("c\n"))
	assert.Equal(t, uint64(2), w.Dropped())
	w.Stop()
}

func TestNextRotationHour(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 12, 0, 0, time.UTC)
	assert.Equal(t, 11, nextRotationHour(now, 2))
	assert.Equal(t, 10, nextRotationHour(now, 1))
	assert.Equal(t, 9, nextRotationHour(now, 24))
}
