// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package corepb

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Transaction is the ledger's summary of a transaction.
type Transaction struct {
	Type           string
	Hash           string
	SequenceNumber string
	Success        bool
	VMStatus       string
	Version        string
}

func (m *Transaction) marshal(b []byte) []byte {
	b = appendString(b, 1, m.Type)
	b = appendString(b, 2, m.Hash)
	b = appendString(b, 3, m.SequenceNumber)
	b = appendBool(b, 4, m.Success)
	b = appendString(b, 5, m.VMStatus)
	return appendString(b, 6, m.Version)
}

func (m *Transaction) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.Type, n, err = consumeString(num, typ, b)
	case 2:
		m.Hash, n, err = consumeString(num, typ, b)
	case 3:
		m.SequenceNumber, n, err = consumeString(num, typ, b)
	case 4:
		m.Success, n, err = consumeBool(num, typ, b)
	case 5:
		m.VMStatus, n, err = consumeString(num, typ, b)
	case 6:
		m.Version, n, err = consumeString(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// SignedPayload is one signer's hex public key and signature.
type SignedPayload struct {
	PublicKey string
	Signature string
}

func (m *SignedPayload) marshal(b []byte) []byte {
	b = appendString(b, 1, m.PublicKey)
	return appendString(b, 2, m.Signature)
}

func (m *SignedPayload) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.PublicKey, n, err = consumeString(num, typ, b)
	case 2:
		m.Signature, n, err = consumeString(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// CreateAccountRequest generates a fresh account, or imports PrivateKey when
// set.
type CreateAccountRequest struct {
	PrivateKey []byte
}

func (m *CreateAccountRequest) marshal(b []byte) []byte {
	return appendBytes(b, 1, m.PrivateKey)
}

func (m *CreateAccountRequest) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.PrivateKey, n, err = consumeOwnedBytes(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// CreateAccountResponse describes a created or imported account.  Keypair
// holds the 64 byte seed and public key pair.
type CreateAccountResponse struct {
	Address   string
	PublicKey string
	Keypair   []byte
}

func (m *CreateAccountResponse) marshal(b []byte) []byte {
	b = appendString(b, 1, m.Address)
	b = appendString(b, 2, m.PublicKey)
	return appendBytes(b, 3, m.Keypair)
}

func (m *CreateAccountResponse) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.Address, n, err = consumeString(num, typ, b)
	case 2:
		m.PublicKey, n, err = consumeString(num, typ, b)
	case 3:
		m.Keypair, n, err = consumeOwnedBytes(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// CreateWalletRequest derives a shared wallet.  A zero Threshold means every
// member must sign.
type CreateWalletRequest struct {
	PublicKeys []string
	Threshold  uint32
}

func (m *CreateWalletRequest) marshal(b []byte) []byte {
	for _, k := range m.PublicKeys {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, k)
	}
	return appendUint64(b, 2, uint64(m.Threshold))
}

func (m *CreateWalletRequest) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		n, err = consumeRepeatedString(num, typ, b, &m.PublicKeys)
	case 2:
		m.Threshold, n, err = consumeUint32(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// CreateWalletResponse carries the shared wallet address.
type CreateWalletResponse struct {
	Address   string
	Threshold uint32
}

func (m *CreateWalletResponse) marshal(b []byte) []byte {
	b = appendString(b, 1, m.Address)
	return appendUint64(b, 2, uint64(m.Threshold))
}

func (m *CreateWalletResponse) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.Address, n, err = consumeString(num, typ, b)
	case 2:
		m.Threshold, n, err = consumeUint32(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// GetSyncBacktraceRequest asks for diagnostics from the calling thread.
type GetSyncBacktraceRequest struct{}

func (m *GetSyncBacktraceRequest) marshal(b []byte) []byte { return b }

func (m *GetSyncBacktraceRequest) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (int, error) {

	return skipField(num, typ, b)
}

// GetSyncBacktraceResponse carries diagnostic text.
type GetSyncBacktraceResponse struct {
	Text string
}

func (m *GetSyncBacktraceResponse) marshal(b []byte) []byte {
	return appendString(b, 1, m.Text)
}

func (m *GetSyncBacktraceResponse) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.Text, n, err = consumeString(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// FundWalletRequest mints Amount to Address through the faucet.
type FundWalletRequest struct {
	Address string
	Amount  uint64
}

func (m *FundWalletRequest) marshal(b []byte) []byte {
	b = appendString(b, 1, m.Address)
	return appendUint64(b, 2, m.Amount)
}

func (m *FundWalletRequest) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.Address, n, err = consumeString(num, typ, b)
	case 2:
		m.Amount, n, err = consumeUint64(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// FundWalletResponse carries the minting transaction hashes.
type FundWalletResponse struct {
	Transactions []string
}

func (m *FundWalletResponse) marshal(b []byte) []byte {
	for _, h := range m.Transactions {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, h)
	}
	return b
}

func (m *FundWalletResponse) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		n, err = consumeRepeatedString(num, typ, b, &m.Transactions)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// GetWalletBalanceRequest reads the coin balance of Address.
type GetWalletBalanceRequest struct {
	Address string
}

func (m *GetWalletBalanceRequest) marshal(b []byte) []byte {
	return appendString(b, 1, m.Address)
}

func (m *GetWalletBalanceRequest) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.Address, n, err = consumeString(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// GetWalletBalanceResponse carries a coin balance.
type GetWalletBalanceResponse struct {
	Balance uint64
}

func (m *GetWalletBalanceResponse) marshal(b []byte) []byte {
	return appendUint64(b, 1, m.Balance)
}

func (m *GetWalletBalanceResponse) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.Balance, n, err = consumeUint64(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// GetWalletTransactionsRequest lists the transactions sent by Address.
type GetWalletTransactionsRequest struct {
	Address string
}

func (m *GetWalletTransactionsRequest) marshal(b []byte) []byte {
	return appendString(b, 1, m.Address)
}

func (m *GetWalletTransactionsRequest) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.Address, n, err = consumeString(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// GetWalletTransactionsResponse carries a transaction list.
type GetWalletTransactionsResponse struct {
	Transactions []*Transaction
}

func (m *GetWalletTransactionsResponse) marshal(b []byte) []byte {
	for _, tx := range m.Transactions {
		b = appendMessage(b, 1, tx)
	}
	return b
}

func (m *GetWalletTransactionsResponse) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		tx := new(Transaction)
		n, err = consumeMessage(num, typ, b, tx)
		if err == nil {
			m.Transactions = append(m.Transactions, tx)
		}
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// CreateWalletTransactionRequest builds an unsigned transfer envelope.
type CreateWalletTransactionRequest struct {
	Amount      uint64
	AddressFrom string
	AddressTo   string
}

func (m *CreateWalletTransactionRequest) marshal(b []byte) []byte {
	b = appendUint64(b, 1, m.Amount)
	b = appendString(b, 2, m.AddressFrom)
	return appendString(b, 3, m.AddressTo)
}

func (m *CreateWalletTransactionRequest) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.Amount, n, err = consumeUint64(num, typ, b)
	case 2:
		m.AddressFrom, n, err = consumeString(num, typ, b)
	case 3:
		m.AddressTo, n, err = consumeString(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// CreateWalletTransactionResponse carries the unsigned JSON envelope.
type CreateWalletTransactionResponse struct {
	Transaction string
}

func (m *CreateWalletTransactionResponse) marshal(b []byte) []byte {
	return appendString(b, 1, m.Transaction)
}

func (m *CreateWalletTransactionResponse) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.Transaction, n, err = consumeString(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// SignWalletTransactionRequest signs an envelope with one keypair.
type SignWalletTransactionRequest struct {
	Transaction string
	Keypair     []byte
}

func (m *SignWalletTransactionRequest) marshal(b []byte) []byte {
	b = appendString(b, 1, m.Transaction)
	return appendBytes(b, 2, m.Keypair)
}

func (m *SignWalletTransactionRequest) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.Transaction, n, err = consumeString(num, typ, b)
	case 2:
		m.Keypair, n, err = consumeOwnedBytes(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// SignWalletTransactionResponse carries a hex signature and the signer's
// hex public key.
type SignWalletTransactionResponse struct {
	Signature string
	PublicKey string
}

func (m *SignWalletTransactionResponse) marshal(b []byte) []byte {
	b = appendString(b, 1, m.Signature)
	return appendString(b, 2, m.PublicKey)
}

func (m *SignWalletTransactionResponse) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.Signature, n, err = consumeString(num, typ, b)
	case 2:
		m.PublicKey, n, err = consumeString(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// SubmitWalletTransactionRequest submits an envelope with its signatures.
type SubmitWalletTransactionRequest struct {
	Transaction      string
	SignedPayloads   []*SignedPayload
	WalletPublicKeys []string
	Threshold        uint32
}

func (m *SubmitWalletTransactionRequest) marshal(b []byte) []byte {
	b = appendString(b, 1, m.Transaction)
	for _, p := range m.SignedPayloads {
		b = appendMessage(b, 2, p)
	}
	for _, k := range m.WalletPublicKeys {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, k)
	}
	return appendUint64(b, 4, uint64(m.Threshold))
}

func (m *SubmitWalletTransactionRequest) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.Transaction, n, err = consumeString(num, typ, b)
	case 2:
		p := new(SignedPayload)
		n, err = consumeMessage(num, typ, b, p)
		if err == nil {
			m.SignedPayloads = append(m.SignedPayloads, p)
		}
	case 3:
		n, err = consumeRepeatedString(num, typ, b, &m.WalletPublicKeys)
	case 4:
		m.Threshold, n, err = consumeUint32(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

func marshalTransactionField(b []byte, tx *Transaction) []byte {
	if tx == nil {
		return b
	}
	return appendMessage(b, 1, tx)
}

func unmarshalTransactionField(num protowire.Number, typ protowire.Type,
	b []byte, dst **Transaction) (int, error) {

	if num != 1 {
		return skipField(num, typ, b)
	}
	*dst = new(Transaction)
	return consumeMessage(num, typ, b, *dst)
}

// SubmitWalletTransactionResponse carries the submitted transaction.
type SubmitWalletTransactionResponse struct {
	Transaction *Transaction
}

func (m *SubmitWalletTransactionResponse) marshal(b []byte) []byte {
	return marshalTransactionField(b, m.Transaction)
}

func (m *SubmitWalletTransactionResponse) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (int, error) {

	return unmarshalTransactionField(num, typ, b, &m.Transaction)
}

// GetAsyncBacktraceRequest asks for diagnostics from a pool worker.
type GetAsyncBacktraceRequest struct{}

func (m *GetAsyncBacktraceRequest) marshal(b []byte) []byte { return b }

func (m *GetAsyncBacktraceRequest) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (int, error) {

	return skipField(num, typ, b)
}

// GetAsyncBacktraceResponse carries diagnostic text.
type GetAsyncBacktraceResponse struct {
	Text string
}

func (m *GetAsyncBacktraceResponse) marshal(b []byte) []byte {
	return appendString(b, 1, m.Text)
}

func (m *GetAsyncBacktraceResponse) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.Text, n, err = consumeString(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// GetTransactionRequest looks up a transaction by hash.
type GetTransactionRequest struct {
	Hash string
}

func (m *GetTransactionRequest) marshal(b []byte) []byte {
	return appendString(b, 1, m.Hash)
}

func (m *GetTransactionRequest) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.Hash, n, err = consumeString(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// GetTransactionResponse carries the looked up transaction.
type GetTransactionResponse struct {
	Transaction *Transaction
}

func (m *GetTransactionResponse) marshal(b []byte) []byte {
	return marshalTransactionField(b, m.Transaction)
}

func (m *GetTransactionResponse) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (int, error) {

	return unmarshalTransactionField(num, typ, b, &m.Transaction)
}

// TransferRequest builds, signs and submits a single-key transfer.
type TransferRequest struct {
	Amount      uint64
	AddressFrom string
	AddressTo   string
	Keypair     []byte
}

func (m *TransferRequest) marshal(b []byte) []byte {
	b = appendUint64(b, 1, m.Amount)
	b = appendString(b, 2, m.AddressFrom)
	b = appendString(b, 3, m.AddressTo)
	return appendBytes(b, 4, m.Keypair)
}

func (m *TransferRequest) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (n int, err error) {

	switch num {
	case 1:
		m.Amount, n, err = consumeUint64(num, typ, b)
	case 2:
		m.AddressFrom, n, err = consumeString(num, typ, b)
	case 3:
		m.AddressTo, n, err = consumeString(num, typ, b)
	case 4:
		m.Keypair, n, err = consumeOwnedBytes(num, typ, b)
	default:
		n, err = skipField(num, typ, b)
	}
	return n, err
}

// TransferResponse carries the submitted transaction.
type TransferResponse struct {
	Transaction *Transaction
}

func (m *TransferResponse) marshal(b []byte) []byte {
	return marshalTransactionField(b, m.Transaction)
}

func (m *TransferResponse) unmarshalField(num protowire.Number,
	typ protowire.Type, b []byte) (int, error) {

	return unmarshalTransactionField(num, typ, b, &m.Transaction)
}
