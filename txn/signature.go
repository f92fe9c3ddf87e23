// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txn

import (
	"crypto/ed25519"
	"encoding/hex"
	"sort"

	"github.com/aptwallet/walletcore/account"
	"github.com/aptwallet/walletcore/coreerr"
)

// Signature payload type tags understood by the ledger.
const (
	SingleSignatureType    = "ed25519_signature"
	ThresholdSignatureType = "multi_ed25519_signature"
)

// SignaturePayload is the signature attached to an envelope.  The single
// form sets PublicKey and Signature.  The threshold form sets PublicKeys,
// Signatures, Threshold and Bitmap, where the i-th key and signature belong
// to the i-th set bit of the bitmap.
type SignaturePayload struct {
	Type       string   `json:"type"`
	PublicKey  string   `json:"public_key,omitempty"`
	Signature  string   `json:"signature,omitempty"`
	PublicKeys []string `json:"public_keys,omitempty"`
	Signatures []string `json:"signatures,omitempty"`
	Threshold  uint8    `json:"threshold,omitempty"`
	Bitmap     string   `json:"bitmap,omitempty"`
}

// Validate checks the structural invariants of the payload.
func (s *SignaturePayload) Validate() error {
	const op = "signature"

	switch s.Type {
	case SingleSignatureType:
		if s.PublicKey == "" || s.Signature == "" {
			return coreerr.Errorf(coreerr.ErrInvalidRequest, op,
				"single signature needs a key and a signature")
		}
		return nil

	case ThresholdSignatureType:
		k := int(s.Threshold)
		if k == 0 || len(s.PublicKeys) != k || len(s.Signatures) != k {
			return coreerr.Errorf(coreerr.ErrInvalidRequest, op,
				"threshold %d with %d keys and %d signatures",
				k, len(s.PublicKeys), len(s.Signatures))
		}
		raw, err := hex.DecodeString(trimHex(s.Bitmap))
		if err != nil || len(raw) != BitmapSize {
			return coreerr.Errorf(coreerr.ErrInvalidRequest, op,
				"malformed bitmap %q", s.Bitmap)
		}
		var bm Bitmap
		copy(bm[:], raw)
		if bm.Count() != k {
			return coreerr.Errorf(coreerr.ErrInvalidRequest, op,
				"bitmap marks %d signers, threshold is %d",
				bm.Count(), k)
		}
		return nil

	default:
		return coreerr.Errorf(coreerr.ErrInvalidRequest, op,
			"unknown signature type %q", s.Type)
	}
}

// SignSingle signs msg with acct and returns the single-key payload.
func SignSingle(acct *account.Account, msg []byte) SignaturePayload {
	return SignaturePayload{
		Type:      SingleSignatureType,
		PublicKey: "0x" + acct.PublicKeyHex(),
		Signature: "0x" + acct.SignHex(msg),
	}
}

// PartialSignature is one member's signature over a signing message.
type PartialSignature struct {
	PublicKey ed25519.PublicKey
	Signature []byte
}

// ParsePartialSignature decodes a hex public key and signature pair.
func ParsePartialSignature(pubHex, sigHex string) (PartialSignature, error) {
	pub, err := account.ParsePublicKey(pubHex)
	if err != nil {
		return PartialSignature{}, err
	}
	sig, err := hex.DecodeString(trimHex(sigHex))
	if err != nil || len(sig) != ed25519.SignatureSize {
		return PartialSignature{}, coreerr.Errorf(
			coreerr.ErrInvalidRequest, "signature",
			"malformed signature %q", sigHex)
	}
	return PartialSignature{PublicKey: pub, Signature: sig}, nil
}

// NewThresholdPayload combines exactly Threshold() member signatures into a
// threshold payload for w.  Each signature's bitmap bit is its signer's
// position in the wallet membership, and signatures are ordered by that
// position regardless of the order they are given in.
func NewThresholdPayload(w *account.SharedWallet,
	partials []PartialSignature) (SignaturePayload, error) {

	const op = "threshold_signature"

	if len(partials) != w.Threshold() {
		return SignaturePayload{}, coreerr.Errorf(
			coreerr.ErrInvalidRequest, op,
			"%d signatures given, wallet needs %d", len(partials),
			w.Threshold())
	}

	type member struct {
		index int
		sig   PartialSignature
	}
	signers := make([]member, 0, len(partials))

	var bm Bitmap
	for _, p := range partials {
		idx := w.IndexOf(p.PublicKey)
		if idx < 0 {
			return SignaturePayload{}, coreerr.Errorf(
				coreerr.ErrInvalidRequest, op,
				"key %x is not a wallet member", p.PublicKey)
		}
		if bm.IsSet(idx) {
			return SignaturePayload{}, coreerr.Errorf(
				coreerr.ErrInvalidRequest, op,
				"member %d signed twice", idx)
		}
		if len(p.Signature) != ed25519.SignatureSize {
			return SignaturePayload{}, coreerr.Errorf(
				coreerr.ErrInvalidRequest, op,
				"member %d signature is %d bytes", idx,
				len(p.Signature))
		}
		if err := bm.Set(idx); err != nil {
			return SignaturePayload{}, err
		}
		signers = append(signers, member{index: idx, sig: p})
	}

	sort.Slice(signers, func(i, j int) bool {
		return signers[i].index < signers[j].index
	})

	payload := SignaturePayload{
		Type:       ThresholdSignatureType,
		PublicKeys: make([]string, len(signers)),
		Signatures: make([]string, len(signers)),
		Threshold:  uint8(w.Threshold()),
		Bitmap:     bm.String(),
	}
	for i, s := range signers {
		payload.PublicKeys[i] = "0x" + hex.EncodeToString(s.sig.PublicKey)
		payload.Signatures[i] = "0x" + hex.EncodeToString(s.sig.Signature)
	}

	log.Debugf("Combined %d of %d member signatures, bitmap %v",
		len(signers), len(w.PublicKeys()), bm)

	return payload, nil
}

// LegacyThresholdPayload combines signatures for an all-of-n wallet whose
// membership is exactly the given signers, in the given order.
func LegacyThresholdPayload(partials []PartialSignature) (SignaturePayload,
	error) {

	pubs := make([]ed25519.PublicKey, len(partials))
	for i, p := range partials {
		pubs[i] = p.PublicKey
	}
	w, err := account.NewSharedWallet(pubs, 0)
	if err != nil {
		return SignaturePayload{}, err
	}
	return NewThresholdPayload(w, partials)
}

func trimHex(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
