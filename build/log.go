// Copyright (c) 2015 The btcsuite developers
// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package build

import (
	"os"

	"github.com/btcsuite/btclog"
)

// LogType is an indicating the type of logging specified by the build flag.
type LogType byte

const (
	// LogTypeNone indicates no logging.
	LogTypeNone LogType = iota

	// LogTypeStdOut all logging is written directly to stdout.
	LogTypeStdOut

	// LogTypeDefault logs to the RotatingLogWriter, which mirrors stdout
	// into a rotated log file when one is configured.
	LogTypeDefault
)

// String returns a human readable identifier for the logging type.
func (t LogType) String() string {
	switch t {
	case LogTypeNone:
		return "none"
	case LogTypeStdOut:
		return "stdout"
	case LogTypeDefault:
		return "default"
	default:
		return "unknown"
	}
}

// NewSubLogger constructs a new subsystem log from the current LogWriter
// implementation.  The actual writer is shared amongst all instantiations.
func NewSubLogger(subsystem string,
	genSubLogger func(string) btclog.Logger) btclog.Logger {

	switch LoggingType {

	// Default logging is used when the core is loaded by a host.  We'll use
	// the sublogger constructor so every subsystem shares the backend.
	case LogTypeDefault:
		if genSubLogger != nil {
			return genSubLogger(subsystem)
		}

	// Logging to stdout is used in unit tests.  It is not important that
	// they share the same backend, since all output is written to stdout.
	case LogTypeStdOut:
		backend := btclog.NewBackend(os.Stdout)
		logger := backend.Logger(subsystem)

		// Set the logging level of the stdout logger to use the
		// configured logging level specified by build flags.
		level, _ := btclog.LevelFromString(LogLevel)
		logger.SetLevel(level)

		return logger
	}

	// For any other configurations, we'll disable logging.
	return btclog.Disabled
}
