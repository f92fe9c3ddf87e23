// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestLoadConfig checks command line options override the defaults.
func TestLoadConfig(t *testing.T) {
	cfg, rest, err := LoadConfig([]string{
		"--resturl=https://node.example:8443",
		"--ledgertimeout=15s",
		"--maxgas=4000",
		"--loglevel=DISP=debug,LDGR=trace",
		"extra",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"extra"}, rest)
	require.Equal(t, "https://node.example:8443", cfg.RESTURL)
	require.Equal(t, defaultFaucetURL, cfg.FaucetURL)
	require.Equal(t, 15*time.Second, cfg.LedgerTimeout)
	require.Equal(t, uint64(4000), cfg.MaxGasAmount)
	require.Equal(t, "XUS", cfg.GasCurrency)

	pcfg := cfg.pipelineConfig()
	require.Equal(t, uint64(4000), pcfg.MaxGasAmount)
	require.Equal(t, cfg.CoinType, pcfg.CoinType)
}

// TestValidate exercises each rejected setting.
func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{name: "defaults", modify: func(*Config) {}, valid: true},
		{
			name:   "bad level",
			modify: func(c *Config) { c.LogLevel = "loud" },
		},
		{
			name:   "unknown subsystem",
			modify: func(c *Config) { c.LogLevel = "WIRE=debug" },
		},
		{
			name:   "malformed pair",
			modify: func(c *Config) { c.LogLevel = "CORE=debug=x" },
		},
		{
			name:   "relative node url",
			modify: func(c *Config) { c.RESTURL = "localhost:8080" },
		},
		{
			name:   "bad faucet scheme",
			modify: func(c *Config) { c.FaucetURL = "ftp://faucet" },
		},
		{
			name:   "no faucet",
			modify: func(c *Config) { c.FaucetURL = "" },
			valid:  true,
		},
		{
			name:   "negative timeout",
			modify: func(c *Config) { c.LedgerTimeout = -time.Second },
		},
		{
			name: "log file without rotation",
			modify: func(c *Config) {
				c.LogFile = "core.log"
				c.MaxLogFiles = 0
			},
		},
		{
			name:   "no coin type",
			modify: func(c *Config) { c.CoinType = "" },
		},
	}

	for _, tc := range testCases {
		cfg := DefaultConfig()
		tc.modify(cfg)
		err := cfg.Validate()
		if tc.valid {
			require.NoError(t, err, tc.name)
		} else {
			require.Error(t, err, tc.name)
		}
	}
}

// TestSupportedSubsystems checks the subsystem list is sorted and complete.
func TestSupportedSubsystems(t *testing.T) {
	require.Equal(t, []string{"BUFR", "CORE", "DISP", "LDGR", "POOL", "TXPL"},
		supportedSubsystems())
}
