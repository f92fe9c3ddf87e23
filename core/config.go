// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"net/url"
	"time"

	"github.com/aptwallet/walletcore/build"
	"github.com/aptwallet/walletcore/ledger"
	"github.com/aptwallet/walletcore/txn"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultLogLevel  = "info"
	defaultRESTURL   = "http://127.0.0.1:8080"
	defaultFaucetURL = "http://127.0.0.1:8000"
)

// Config holds everything a core needs to reach its ledger and how the
// process logs.
type Config struct {
	// Logging
	LogLevel       string `short:"d" long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	LogFile        string `long:"logfile" description:"Also write log output to this file, rotated by size"`
	MaxLogFileSize int    `long:"maxlogfilesize" description:"Maximum log file size in MiB before it is rotated"`
	MaxLogFiles    int    `long:"maxlogfiles" description:"Number of rotated log files to keep"`

	// Ledger
	RESTURL       string        `long:"resturl" description:"Base URL of the ledger node REST service"`
	FaucetURL     string        `long:"fauceturl" description:"Base URL of the faucet, empty to disable funding"`
	LedgerTimeout time.Duration `long:"ledgertimeout" description:"Timeout for each ledger HTTP exchange, 0 for none"`

	// Transactions
	CoinType     string `long:"cointype" description:"Coin module used for transfers and balances"`
	MaxGasAmount uint64 `long:"maxgas" description:"Maximum gas stamped on every transaction"`
	GasUnitPrice uint64 `long:"gasunitprice" description:"Gas unit price stamped on every transaction"`
	GasCurrency  string `long:"gascurrency" description:"Gas currency code stamped on every transaction"`
}

// DefaultConfig returns a config pointing at a local node and faucet.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       defaultLogLevel,
		MaxLogFileSize: build.DefaultMaxLogFileSize,
		MaxLogFiles:    build.DefaultMaxLogFiles,
		RESTURL:        defaultRESTURL,
		FaucetURL:      defaultFaucetURL,
		CoinType:       txn.DefaultCoinType,
		MaxGasAmount:   txn.DefaultMaxGasAmount,
		GasUnitPrice:   txn.DefaultGasUnitPrice,
		GasCurrency:    txn.DefaultGasCurrencyCode,
	}
}

// LoadConfig starts from DefaultConfig and applies command line options.
// Arguments that are not options are returned.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := DefaultConfig()
	parser := flags.NewParser(cfg, flags.Default)
	remaining, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, remaining, nil
}

func validServiceURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") &&
		u.Host != ""
}

// Validate checks the config is usable.
func (c *Config) Validate() error {
	if _, err := parseDebugLevels(c.LogLevel); err != nil {
		return err
	}
	if !validServiceURL(c.RESTURL) {
		return fmt.Errorf("invalid REST URL %q", c.RESTURL)
	}
	if c.FaucetURL != "" && !validServiceURL(c.FaucetURL) {
		return fmt.Errorf("invalid faucet URL %q", c.FaucetURL)
	}
	if c.LedgerTimeout < 0 {
		return fmt.Errorf("negative ledger timeout %v", c.LedgerTimeout)
	}
	if c.LogFile != "" && (c.MaxLogFileSize <= 0 || c.MaxLogFiles <= 0) {
		return fmt.Errorf("log rotation needs a positive size and count")
	}
	if c.CoinType == "" || c.GasCurrency == "" {
		return fmt.Errorf("coin type and gas currency must be set")
	}
	return nil
}

func (c *Config) restConfig() ledger.RESTConfig {
	return ledger.RESTConfig{
		NodeURL:   c.RESTURL,
		FaucetURL: c.FaucetURL,
		Timeout:   c.LedgerTimeout,
	}
}

func (c *Config) pipelineConfig() txn.Config {
	cfg := txn.DefaultConfig()
	cfg.CoinType = c.CoinType
	cfg.MaxGasAmount = c.MaxGasAmount
	cfg.GasUnitPrice = c.GasUnitPrice
	cfg.GasCurrencyCode = c.GasCurrency
	return cfg
}
