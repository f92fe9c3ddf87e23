// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"

	"github.com/aptwallet/walletcore/coreerr"
	"golang.org/x/crypto/sha3"
)

// AddressSize is the length in bytes of a ledger address.
const AddressSize = 32

// Scheme tags appended to the preimage of an address.  They keep a single
// key address from ever colliding with a shared wallet address.
const (
	singleKeyScheme byte = 0x00
	multiKeyScheme  byte = 0x01
)

// Address identifies an account on the ledger.  It doubles as the account's
// authentication key.
type Address [AddressSize]byte

// String returns the address as lower case hex without a prefix.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Hex returns the address with the 0x prefix the ledger expects in
// transaction fields.
func (a Address) Hex() string {
	return "0x" + a.String()
}

// ParseAddress decodes a hex address, with or without a 0x prefix.
func ParseAddress(s string) (Address, error) {
	var a Address
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return a, coreerr.E(coreerr.ErrInvalidRequest, "parse_address",
			"address is not hex", err)
	}
	if len(b) != AddressSize {
		return a, coreerr.Errorf(coreerr.ErrInvalidRequest,
			"parse_address", "address is %d bytes, want %d", len(b),
			AddressSize)
	}
	copy(a[:], b)
	return a, nil
}

// SingleKeyAddress derives the address of a single ed25519 public key.
func SingleKeyAddress(pub ed25519.PublicKey) Address {
	h := sha3.New256()
	h.Write(pub)
	h.Write([]byte{singleKeyScheme})

	var a Address
	copy(a[:], h.Sum(nil))
	return a
}

// ParsePublicKey decodes a hex ed25519 public key, with or without a 0x
// prefix.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, coreerr.E(coreerr.ErrInvalidKeyEncoding,
			"parse_public_key", "public key is not hex", err)
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, coreerr.Errorf(coreerr.ErrInvalidKeyEncoding,
			"parse_public_key", "public key is %d bytes, want %d",
			len(b), ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(b), nil
}

// Verify reports whether sig is a valid signature of msg by pub.
func Verify(pub ed25519.PublicKey, msg, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(pub, msg, sig)
}
