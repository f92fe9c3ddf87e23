// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger defines the contract the wallet core relies on to talk to a
// ledger node and its faucet, and a REST implementation of it.
package ledger

import (
	"context"
	"encoding/json"

	"github.com/aptwallet/walletcore/account"
)

// AccountInfo is the on-ledger record of an account.
type AccountInfo struct {
	SequenceNumber    string `json:"sequence_number"`
	AuthenticationKey string `json:"authentication_key"`
}

// Transaction is the ledger's view of a submitted or committed transaction.
type Transaction struct {
	Kind           string `json:"type"`
	Hash           string `json:"hash"`
	SequenceNumber string `json:"sequence_number,omitempty"`
	Version        string `json:"version,omitempty"`
	Success        bool   `json:"success,omitempty"`
	VMStatus       string `json:"vm_status,omitempty"`
}

// Client is the set of ledger operations the core performs.  Every method
// fails with a coreerr.Error carrying ErrTransport, ErrInvalidResponse or
// ErrRemoteRejected, tagged with the operation name.
type Client interface {
	// GetAccount returns the account record for addr.
	GetAccount(ctx context.Context, addr account.Address) (*AccountInfo,
		error)

	// GetResource returns the raw JSON of one resource held by addr.
	GetResource(ctx context.Context, addr account.Address,
		resourceType string) (json.RawMessage, error)

	// GetSigningMessage asks the node for the hex signing message of an
	// unsigned JSON envelope.
	GetSigningMessage(ctx context.Context, unsigned []byte) (string, error)

	// SubmitTransaction submits a signed JSON envelope.
	SubmitTransaction(ctx context.Context, signed []byte) (*Transaction,
		error)

	// GetTransaction looks up a transaction by hash.
	GetTransaction(ctx context.Context, hash string) (*Transaction, error)

	// ListTransactions returns the transactions sent by addr.
	ListTransactions(ctx context.Context, addr account.Address) (
		[]Transaction, error)

	// Fund asks the faucet to mint amount to the account with the given
	// authentication key and returns the minting transaction hashes.
	Fund(ctx context.Context, authKey account.Address, amount uint64) (
		[]string, error)
}
