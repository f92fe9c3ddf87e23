// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txn

import (
	"encoding/json"
	"strconv"

	"github.com/aptwallet/walletcore/account"
	"github.com/aptwallet/walletcore/coreerr"
)

// Envelope is a transaction as exchanged with the ledger node.  Numeric
// fields are decimal strings.  Once a signature is attached the envelope is
// final.
type Envelope struct {
	Sender                  string            `json:"sender"`
	SequenceNumber          string            `json:"sequence_number"`
	MaxGasAmount            string            `json:"max_gas_amount"`
	GasUnitPrice            string            `json:"gas_unit_price"`
	GasCurrencyCode         string            `json:"gas_currency_code"`
	ExpirationTimestampSecs string            `json:"expiration_timestamp_secs"`
	Payload                 json.RawMessage   `json:"payload"`
	Signature               *SignaturePayload `json:"signature,omitempty"`
}

// ParseEnvelope decodes a JSON envelope handed back by a host.
func ParseEnvelope(b []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, coreerr.E(coreerr.ErrInvalidRequest, "parse_envelope",
			"transaction is not a JSON envelope", err)
	}
	if env.Sender == "" || len(env.Payload) == 0 {
		return nil, coreerr.Errorf(coreerr.ErrInvalidRequest,
			"parse_envelope", "envelope lacks sender or payload")
	}
	return &env, nil
}

// SenderAddress returns the decoded sender field.
func (e *Envelope) SenderAddress() (account.Address, error) {
	return account.ParseAddress(e.Sender)
}

// Sequence returns the decoded sequence number.
func (e *Envelope) Sequence() (uint64, error) {
	return strconv.ParseUint(e.SequenceNumber, 10, 64)
}

// Signed returns whether a signature has been attached.
func (e *Envelope) Signed() bool {
	return e.Signature != nil
}

// AttachSignature attaches sig.  It fails if the envelope already carries a
// signature or sig is malformed.
func (e *Envelope) AttachSignature(sig SignaturePayload) error {
	if e.Signed() {
		return coreerr.Errorf(coreerr.ErrInvalidRequest, "attach_signature",
			"envelope is already signed")
	}
	if err := sig.Validate(); err != nil {
		return err
	}
	e.Signature = &sig
	return nil
}

// JSON encodes the envelope.
func (e *Envelope) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// unsignedJSON encodes the envelope without its signature.
func (e *Envelope) unsignedJSON() ([]byte, error) {
	unsigned := *e
	unsigned.Signature = nil
	return json.Marshal(&unsigned)
}

// ScriptFunctionPayload calls an on-chain script function.
type ScriptFunctionPayload struct {
	Type          string   `json:"type"`
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []string `json:"arguments"`
}

// TransferPayload returns the payload moving amount of coinType to to.
func TransferPayload(coinType string, to account.Address,
	amount uint64) json.RawMessage {

	p := ScriptFunctionPayload{
		Type:          "script_function_payload",
		Function:      coinType + "::transfer",
		TypeArguments: []string{},
		Arguments: []string{
			to.Hex(),
			strconv.FormatUint(amount, 10),
		},
	}
	// Marshalling a struct of strings cannot fail.
	b, _ := json.Marshal(&p)
	return b
}
