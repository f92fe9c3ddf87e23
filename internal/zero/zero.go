// Copyright (c) 2015 The btcsuite developers
// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package zero contains functions to clear key material from memory.
package zero

import "crypto/ed25519"

// Bytes sets all bytes in the passed slice to zero.  This is used to
// explicitly clear private key material from memory.
func Bytes(b []byte) {
	z := [32]byte{}
	n := copy(b, z[:])
	for n < len(b) {
		copy(b[n:], b[:n])
		n <<= 1
	}
}

// Bytea32 clears the 32-byte array by filling it with the zero value.
// This is used to explicitly clear ed25519 seeds from memory.
func Bytea32(b *[32]byte) {
	*b = [32]byte{}
}

// Bytea64 clears the 64-byte array by filling it with the zero value.
// This is used to explicitly clear expanded keypairs from memory.
func Bytea64(b *[64]byte) {
	*b = [64]byte{}
}

// PrivateKey clears an ed25519 private key in place.  The key is unusable
// afterwards.
func PrivateKey(k ed25519.PrivateKey) {
	Bytes(k)
}
