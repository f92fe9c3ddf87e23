// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package build

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

// Defaults for the rotated log file.
const (
	DefaultMaxLogFileSize = 10 // MiB
	DefaultMaxLogFiles    = 3
)

// RotatingLogWriter is a wrapper around the log writer that writes to stdout
// and, once InitLogRotator is called, to a rotated log file.  It owns the
// btclog backend every subsystem logger is derived from.
type RotatingLogWriter struct {
	mtx sync.Mutex

	stdout  io.Writer
	pipe    *io.PipeWriter
	rotator *rotator.Rotator
	done    chan struct{}

	backend *btclog.Backend
}

// NewRotatingLogWriter creates a writer that only logs to stdout until a log
// file is configured.
func NewRotatingLogWriter() *RotatingLogWriter {
	return newRotatingLogWriter(os.Stdout)
}

func newRotatingLogWriter(stdout io.Writer) *RotatingLogWriter {
	w := &RotatingLogWriter{stdout: stdout}
	w.backend = btclog.NewBackend(w)
	return w
}

// GenSubLogger creates a new sublogger on the shared backend.
func (w *RotatingLogWriter) GenSubLogger(tag string) btclog.Logger {
	return w.backend.Logger(tag)
}

// InitLogRotator mirrors all output into logFile, rotating it once it
// exceeds maxLogFileSize MiB and keeping maxLogFiles old files.
func (w *RotatingLogWriter) InitLogRotator(logFile string, maxLogFileSize,
	maxLogFiles int) error {

	w.mtx.Lock()
	defer w.mtx.Unlock()

	if w.rotator != nil {
		return fmt.Errorf("log rotator already initialized")
	}

	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return fmt.Errorf("failed to create log directory: %w",
				err)
		}
	}

	r, err := rotator.New(logFile, int64(maxLogFileSize*1024), false,
		maxLogFiles)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	pr, pw := io.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(pr)
	}()

	w.rotator = r
	w.pipe = pw
	w.done = done
	return nil
}

// Write writes p to stdout and, if initialized, the log rotator.
func (w *RotatingLogWriter) Write(p []byte) (int, error) {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	if w.stdout != nil {
		_, _ = w.stdout.Write(p)
	}
	if w.pipe != nil {
		_, _ = w.pipe.Write(p)
	}
	return len(p), nil
}

// Close flushes and closes the log rotator.  Output keeps going to stdout.
func (w *RotatingLogWriter) Close() error {
	w.mtx.Lock()
	pipe, done, r := w.pipe, w.done, w.rotator
	w.pipe, w.done, w.rotator = nil, nil, nil
	w.mtx.Unlock()

	if pipe == nil {
		return nil
	}
	err := pipe.Close()
	<-done
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	return err
}
