// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package core

import (
	"sync"

	"github.com/aptwallet/walletcore/taskpool"
)

// Runtime is the process-wide execution context shared by every core: the
// async pool and the log output.  A host starts it once before creating
// cores and stops it once after freeing them.
type Runtime struct {
	pool *taskpool.Pool

	stopOnce sync.Once
	logFile  bool
}

// StartRuntime applies the logging options in cfg and starts the pool.
func StartRuntime(cfg *Config) (*Runtime, error) {
	if err := SetLogLevels(cfg.LogLevel); err != nil {
		return nil, err
	}

	rt := &Runtime{pool: taskpool.New()}
	if cfg.LogFile != "" {
		err := logWriter.InitLogRotator(cfg.LogFile, cfg.MaxLogFileSize,
			cfg.MaxLogFiles)
		if err != nil {
			return nil, err
		}
		rt.logFile = true
	}

	log.Infof("Runtime started")
	return rt, nil
}

// Pool returns the runtime's async pool.
func (r *Runtime) Pool() *taskpool.Pool {
	return r.pool
}

// Stop waits for in-flight async requests, then flushes the log file.
// Requests dispatched afterwards receive an error through their callback.
func (r *Runtime) Stop() {
	r.stopOnce.Do(func() {
		log.Infof("Runtime stopping")
		r.pool.Stop()
		if r.logFile {
			if err := logWriter.Close(); err != nil {
				log.Errorf("Unable to close log file: %v", err)
			}
		}
	})
}
