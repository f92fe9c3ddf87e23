// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txn

import (
	"encoding/hex"
	"math/bits"

	"github.com/aptwallet/walletcore/account"
	"github.com/aptwallet/walletcore/coreerr"
)

// BitmapSize is the width in bytes of a signer bitmap.
const BitmapSize = 4

// Bitmap marks which members of a shared wallet contributed a signature.
// Bit i is the i-th most significant bit of byte i/8, counting from the
// first byte.
type Bitmap [BitmapSize]byte

// Set marks member i as a signer.
func (b *Bitmap) Set(i int) error {
	if i < 0 || i >= account.MaxSharedKeys {
		return coreerr.Errorf(coreerr.ErrInvalidRequest, "bitmap",
			"signer index %d out of range", i)
	}
	b[i/8] |= 0x80 >> uint(i%8)
	return nil
}

// IsSet returns whether member i is marked as a signer.
func (b Bitmap) IsSet(i int) bool {
	if i < 0 || i >= account.MaxSharedKeys {
		return false
	}
	return b[i/8]&(0x80>>uint(i%8)) != 0
}

// Count returns the number of marked signers.
func (b Bitmap) Count() int {
	n := 0
	for _, v := range b {
		n += bits.OnesCount8(v)
	}
	return n
}

// Indices returns the marked member positions in ascending order.
func (b Bitmap) Indices() []int {
	var idx []int
	for i := 0; i < account.MaxSharedKeys; i++ {
		if b.IsSet(i) {
			idx = append(idx, i)
		}
	}
	return idx
}

// String returns the bitmap as 0x-prefixed hex.
func (b Bitmap) String() string {
	return "0x" + hex.EncodeToString(b[:])
}
