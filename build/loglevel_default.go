// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build !debug && !trace
// +build !debug,!trace

package build

// LogLevel specifies the default log level.
var LogLevel = "info"
