package log

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// rotationTicker fires when the wall clock reaches the next rotation hour.
type rotationTicker struct {
	stop chan struct{}
	C    <-chan time.Time
}

// newRotationTicker creates a ticker that fires every rotateHours hours,
// aligned to the hour: with rotateHours 2 and a current time of 09:12 the
// first tick is at 11:00. A zero rotateHours never ticks.
func newRotationTicker(rotateHours uint) *rotationTicker {
	ch := make(chan time.Time)
	rt := &rotationTicker{
		stop: make(chan struct{}),
		C:    ch,
	}
	if rotateHours > 0 {
		go rt.loop(ch, rotateHours)
	}
	return rt
}

func (rt *rotationTicker) Stop() {
	close(rt.stop)
}

func (rt *rotationTicker) loop(ch chan time.Time, rotateHours uint) {
	next := nextRotationHour(time.Now(), rotateHours)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case t := <-ticker.C:
			if t.Hour() != next {
				continue
			}
			select {
			case ch <- t:
			case <-rt.stop:
				return
			}
			next = nextRotationHour(time.Now(), rotateHours)
		case <-rt.stop:
			return
		}
	}
}

func nextRotationHour(now time.Time, delta uint) int {
	return now.Add(time.Hour * time.Duration(delta)).Hour()
}

// AsyncFileWriter is an io.Writer that hands log lines to a background
// goroutine appending them to a file. The path given to the constructor is a
// symlink to the current file, which is named after the hour it was opened
// in. Lines written while the buffer is full are dropped.
type AsyncFileWriter struct {
	filePath string
	fd       *os.File

	wg      sync.WaitGroup
	started atomic.Bool
	dropped atomic.Uint64
	buf     chan []byte
	stop    chan struct{}
	ticker  *rotationTicker
}

// NewAsyncFileWriter creates a writer for filePath buffering up to
// bufferedLines lines and rotating every rotateHours hours (never when zero).
func NewAsyncFileWriter(filePath string, bufferedLines int, rotateHours uint) (*AsyncFileWriter, error) {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("log file path %q: %w", filePath, err)
	}
	return &AsyncFileWriter{
		filePath: absFilePath,
		buf:      make(chan []byte, bufferedLines),
		stop:     make(chan struct{}),
		ticker:   newRotationTicker(rotateHours),
	}, nil
}

func (w *AsyncFileWriter) initLogFile() error {
	realFilePath := w.timeFilePath(w.filePath)
	fd, err := os.OpenFile(realFilePath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	w.fd = fd

	if _, err := os.Lstat(w.filePath); err == nil {
		if err := os.Remove(w.filePath); err != nil {
			return err
		}
	}
	return os.Symlink(realFilePath, w.filePath)
}

// Start opens the log file and starts the writing goroutine.
func (w *AsyncFileWriter) Start() error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("log writer has already been started")
	}
	if err := w.initLogFile(); err != nil {
		w.started.Store(false)
		return err
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case msg := <-w.buf:
				w.syncWrite(msg)
			case <-w.stop:
				w.flushBuffer()
				if err := w.flushAndClose(); err != nil {
					fmt.Fprintf(os.Stderr, "close log file error. err=%s\n", err)
				}
				return
			}
		}
	}()
	return nil
}

func (w *AsyncFileWriter) flushBuffer() {
	for {
		select {
		case msg := <-w.buf:
			w.syncWrite(msg)
		default:
			return
		}
	}
}

func (w *AsyncFileWriter) syncWrite(msg []byte) {
	w.rotateFile()
	if w.fd != nil {
		w.fd.Write(msg)
	}
}

func (w *AsyncFileWriter) rotateFile() {
	select {
	case <-w.ticker.C:
		if err := w.flushAndClose(); err != nil {
			fmt.Fprintf(os.Stderr, "flush and close file error. err=%s\n", err)
		}
		if err := w.initLogFile(); err != nil {
			fmt.Fprintf(os.Stderr, "init log file error. err=%s\n", err)
		}
	default:
	}
}

// Stop drains the buffer, closes the file and waits for the writing
// goroutine to exit. Stopping a writer that was never started is a no-op.
func (w *AsyncFileWriter) Stop() {
	if !w.started.Load() {
		return
	}
	close(w.stop)
	w.wg.Wait()
	w.ticker.Stop()
}

// Write queues a copy of msg. It never blocks.
func (w *AsyncFileWriter) Write(msg []byte) (n int, err error) {
	buf := make([]byte, len(msg))
	copy(buf, msg)

	select {
	case w.buf <- buf:
	default:
		w.dropped.Add(1)
	}
	return len(msg), nil
}

// Dropped returns the number of lines lost to a full buffer.
func (w *AsyncFileWriter) Dropped() uint64 {
	return w.dropped.Load()
}

func (w *AsyncFileWriter) flushAndClose() error {
	if w.fd == nil {
		return nil
	}
	if err := w.fd.Sync(); err != nil {
		return err
	}
	err := w.fd.Close()
	w.fd = nil
	return err
}

func (w *AsyncFileWriter) timeFilePath(filePath string) string {
	return filePath + "." + time.Now().Format("2006-01-02_15")
}
