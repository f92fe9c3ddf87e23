// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aptwallet/walletcore/build"
	"github.com/aptwallet/walletcore/dispatch"
	"github.com/aptwallet/walletcore/ledger"
	"github.com/aptwallet/walletcore/ownedbuf"
	"github.com/aptwallet/walletcore/taskpool"
	"github.com/aptwallet/walletcore/txn"
	"github.com/btcsuite/btclog"
)

// Subsystem tags.
const (
	subsysCore     = "CORE"
	subsysDispatch = "DISP"
	subsysLedger   = "LDGR"
	subsysPipeline = "TXPL"
	subsysPool     = "POOL"
	subsysBuffer   = "BUFR"
)

// logWriter is the writer all subsystem loggers share.  Every core in the
// process logs through it, like the pool it outlives individual cores.
var logWriter = build.NewRotatingLogWriter()

// Loggers per subsystem.  A single backend logger is created and all
// subsystem loggers created from it write to the backend.  When adding new
// subsystems, add the subsystem logger variable here and to the
// subsystemLoggers map.
var (
	log     = build.NewSubLogger(subsysCore, logWriter.GenSubLogger)
	dispLog = build.NewSubLogger(subsysDispatch, logWriter.GenSubLogger)
	ldgrLog = build.NewSubLogger(subsysLedger, logWriter.GenSubLogger)
	txplLog = build.NewSubLogger(subsysPipeline, logWriter.GenSubLogger)
	poolLog = build.NewSubLogger(subsysPool, logWriter.GenSubLogger)
	bufrLog = build.NewSubLogger(subsysBuffer, logWriter.GenSubLogger)
)

// Initialize package-global logger variables.
func init() {
	dispatch.UseLogger(dispLog)
	ledger.UseLogger(ldgrLog)
	txn.UseLogger(txplLog)
	taskpool.UseLogger(poolLog)
	ownedbuf.UseLogger(bufrLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]btclog.Logger{
	subsysCore:     log,
	subsysDispatch: dispLog,
	subsysLedger:   ldgrLog,
	subsysPipeline: txplLog,
	subsysPool:     poolLog,
	subsysBuffer:   bufrLog,
}

// validLogLevel returns whether or not logLevel is a valid debug log level.
func validLogLevel(logLevel string) bool {
	_, ok := btclog.LevelFromString(logLevel)
	return ok
}

// supportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func supportedSubsystems() []string {
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}
	sort.Strings(subsystems)
	return subsystems
}

// parseDebugLevels parses either a single level applying to every
// subsystem, or a list of subsystem=level pairs.  The returned map is keyed
// by subsystem.
func parseDebugLevels(debugLevel string) (map[string]string, error) {
	levels := make(map[string]string)

	// When the specified string doesn't have any delimiters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") &&
		!strings.Contains(debugLevel, "=") {

		if !validLogLevel(debugLevel) {
			str := "the specified debug level [%v] is invalid"
			return nil, fmt.Errorf(str, debugLevel)
		}
		for subsysID := range subsystemLoggers {
			levels[subsysID] = debugLevel
		}
		return levels, nil
	}

	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		fields := strings.Split(logLevelPair, "=")
		if len(fields) != 2 {
			str := "the specified debug level contains an " +
				"invalid subsystem/level pair [%v]"
			return nil, fmt.Errorf(str, logLevelPair)
		}
		subsysID, logLevel := fields[0], fields[1]

		if _, exists := subsystemLoggers[subsysID]; !exists {
			str := "the specified subsystem [%v] is invalid -- " +
				"supported subsystems %v"
			return nil, fmt.Errorf(str, subsysID,
				supportedSubsystems())
		}
		if !validLogLevel(logLevel) {
			str := "the specified debug level [%v] is invalid"
			return nil, fmt.Errorf(str, logLevel)
		}
		levels[subsysID] = logLevel
	}
	return levels, nil
}

// SetLogLevels applies a debug level string: either one level for every
// subsystem or a list of <subsystem>=<level> pairs.
func SetLogLevels(debugLevel string) error {
	levels, err := parseDebugLevels(debugLevel)
	if err != nil {
		return err
	}
	for subsysID, logLevel := range levels {
		level, _ := btclog.LevelFromString(logLevel)
		subsystemLoggers[subsysID].SetLevel(level)
	}
	return nil
}
