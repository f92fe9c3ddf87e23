// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build debug
// +build debug

package build

// LogLevel specifies a debug log level.
var LogLevel = "debug"
