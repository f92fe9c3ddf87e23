// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dispatch

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/aptwallet/walletcore/account"
	"github.com/aptwallet/walletcore/coreerr"
	"github.com/aptwallet/walletcore/corepb"
	"github.com/aptwallet/walletcore/internal/zero"
	"github.com/aptwallet/walletcore/ledger"
	"github.com/aptwallet/walletcore/txn"
	"github.com/davecgh/go-spew/spew"
)

// Handlers serves every request kind.  Shared state is read-only after
// construction; key material lives only for the request that carries it.
type Handlers struct {
	pipeline *txn.Pipeline

	// diagnostics returns a value dumped into backtrace responses.
	diagnostics func() interface{}
}

var (
	_ corepb.SyncHandler  = (*Handlers)(nil)
	_ corepb.AsyncHandler = (*Handlers)(nil)
)

// NewHandlers returns handlers driving pipeline.  diagnostics may be nil.
func NewHandlers(pipeline *txn.Pipeline,
	diagnostics func() interface{}) *Handlers {

	return &Handlers{pipeline: pipeline, diagnostics: diagnostics}
}

func (h *Handlers) client() ledger.Client {
	return h.pipeline.Client()
}

// importKeypair imports and then wipes the key bytes carried by a request.
func importKeypair(keypair []byte) (*account.Account, error) {
	defer zero.Bytes(keypair)
	return account.Import(keypair)
}

func toTransaction(tx *ledger.Transaction) *corepb.Transaction {
	return &corepb.Transaction{
		Type:           tx.Kind,
		Hash:           tx.Hash,
		SequenceNumber: tx.SequenceNumber,
		Success:        tx.Success,
		VMStatus:       tx.VMStatus,
		Version:        tx.Version,
	}
}

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func (h *Handlers) backtrace(where string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s backtrace:\n%s", where, debug.Stack())
	if h.diagnostics != nil {
		b.WriteString("\ncore state:\n")
		b.WriteString(spewConfig.Sdump(h.diagnostics()))
	}
	return b.String()
}

// CreateAccount generates or imports an account.
func (h *Handlers) CreateAccount(req *corepb.CreateAccountRequest) (
	*corepb.CreateAccountResponse, error) {

	var (
		acct *account.Account
		err  error
	)
	importKey := req.ImportKey()
	if importKey.IsSome() {
		acct, err = importKeypair(importKey.UnwrapOr(nil))
	} else {
		acct, err = account.Generate()
	}
	if err != nil {
		return nil, err
	}
	defer acct.Zero()

	return &corepb.CreateAccountResponse{
		Address:   acct.Address().String(),
		PublicKey: acct.PublicKeyHex(),
		Keypair:   acct.KeypairBytes(),
	}, nil
}

// CreateWallet derives a shared wallet address.
func (h *Handlers) CreateWallet(req *corepb.CreateWalletRequest) (
	*corepb.CreateWalletResponse, error) {

	w, err := parseWallet(req.PublicKeys, req.Threshold)
	if err != nil {
		return nil, err
	}
	return &corepb.CreateWalletResponse{
		Address:   w.Address().String(),
		Threshold: uint32(w.Threshold()),
	}, nil
}

func parseWallet(keys []string, threshold uint32) (*account.SharedWallet,
	error) {

	pubs := make([]ed25519.PublicKey, len(keys))
	for i, k := range keys {
		pub, err := account.ParsePublicKey(k)
		if err != nil {
			return nil, err
		}
		pubs[i] = pub
	}
	return account.NewSharedWallet(pubs, int(threshold))
}

// GetSyncBacktrace reports the calling goroutine's stack and core state.
func (h *Handlers) GetSyncBacktrace(*corepb.GetSyncBacktraceRequest) (
	*corepb.GetSyncBacktraceResponse, error) {

	return &corepb.GetSyncBacktraceResponse{
		Text: h.backtrace("sync"),
	}, nil
}

// FundWallet mints coins to an address through the faucet.
func (h *Handlers) FundWallet(ctx context.Context,
	req *corepb.FundWalletRequest) (*corepb.FundWalletResponse, error) {

	addr, err := account.ParseAddress(req.Address)
	if err != nil {
		return nil, err
	}
	hashes, err := h.client().Fund(ctx, addr, req.Amount)
	if err != nil {
		return nil, err
	}
	return &corepb.FundWalletResponse{Transactions: hashes}, nil
}

// GetWalletBalance reads an address's coin balance.
func (h *Handlers) GetWalletBalance(ctx context.Context,
	req *corepb.GetWalletBalanceRequest) (*corepb.GetWalletBalanceResponse,
	error) {

	addr, err := account.ParseAddress(req.Address)
	if err != nil {
		return nil, err
	}
	balance, err := h.pipeline.Balance(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &corepb.GetWalletBalanceResponse{Balance: balance}, nil
}

// GetWalletTransactions lists the transactions sent by an address.
func (h *Handlers) GetWalletTransactions(ctx context.Context,
	req *corepb.GetWalletTransactionsRequest) (
	*corepb.GetWalletTransactionsResponse, error) {

	addr, err := account.ParseAddress(req.Address)
	if err != nil {
		return nil, err
	}
	txs, err := h.client().ListTransactions(ctx, addr)
	if err != nil {
		return nil, err
	}

	resp := &corepb.GetWalletTransactionsResponse{
		Transactions: make([]*corepb.Transaction, len(txs)),
	}
	for i := range txs {
		resp.Transactions[i] = toTransaction(&txs[i])
	}
	return resp, nil
}

// CreateWalletTransaction builds an unsigned transfer envelope.
func (h *Handlers) CreateWalletTransaction(ctx context.Context,
	req *corepb.CreateWalletTransactionRequest) (
	*corepb.CreateWalletTransactionResponse, error) {

	from, err := account.ParseAddress(req.AddressFrom)
	if err != nil {
		return nil, err
	}
	to, err := account.ParseAddress(req.AddressTo)
	if err != nil {
		return nil, err
	}

	payload := txn.TransferPayload(h.pipeline.CoinType(), to, req.Amount)
	env, err := h.pipeline.Build(ctx, from, payload)
	if err != nil {
		return nil, err
	}
	b, err := env.JSON()
	if err != nil {
		return nil, coreerr.E(coreerr.ErrInvalidRequest, "build",
			"unable to encode envelope", err)
	}
	return &corepb.CreateWalletTransactionResponse{
		Transaction: string(b),
	}, nil
}

// SignWalletTransaction signs an envelope's signing message with one key.
func (h *Handlers) SignWalletTransaction(ctx context.Context,
	req *corepb.SignWalletTransactionRequest) (
	*corepb.SignWalletTransactionResponse, error) {

	env, err := txn.ParseEnvelope([]byte(req.Transaction))
	if err != nil {
		return nil, err
	}
	acct, err := importKeypair(req.Keypair)
	if err != nil {
		return nil, err
	}
	defer acct.Zero()

	msg, err := h.pipeline.SigningMessage(ctx, env)
	if err != nil {
		return nil, err
	}
	return &corepb.SignWalletTransactionResponse{
		Signature: "0x" + acct.SignHex(msg),
		PublicKey: "0x" + acct.PublicKeyHex(),
	}, nil
}

// signaturePayload assembles the signature for a submit request: a single
// signature, a threshold signature over an explicit membership, or an
// all-of-n signature whose membership is the signers in order.
func signaturePayload(env *txn.Envelope,
	req *corepb.SubmitWalletTransactionRequest) (txn.SignaturePayload,
	error) {

	const op = "submit_wallet_transaction"

	if len(req.SignedPayloads) == 0 {
		return txn.SignaturePayload{}, coreerr.Errorf(
			coreerr.ErrInvalidRequest, op, "no signatures given")
	}

	partials := make([]txn.PartialSignature, len(req.SignedPayloads))
	for i, p := range req.SignedPayloads {
		partial, err := txn.ParsePartialSignature(p.PublicKey,
			p.Signature)
		if err != nil {
			return txn.SignaturePayload{}, err
		}
		partials[i] = partial
	}

	membership := req.Membership()
	if membership.IsSome() {
		w, err := parseWallet(membership.UnwrapOr(nil), req.Threshold)
		if err != nil {
			return txn.SignaturePayload{}, err
		}
		sender, err := env.SenderAddress()
		if err != nil {
			return txn.SignaturePayload{}, err
		}
		if sender != w.Address() {
			return txn.SignaturePayload{}, coreerr.Errorf(
				coreerr.ErrInvalidRequest, op,
				"sender %v is not the wallet address %v",
				sender, w.Address())
		}
		return txn.NewThresholdPayload(w, partials)
	}

	if len(partials) == 1 {
		return txn.SignaturePayload{
			Type: txn.SingleSignatureType,
			PublicKey: "0x" + hex.EncodeToString(
				partials[0].PublicKey),
			Signature: "0x" + hex.EncodeToString(
				partials[0].Signature),
		}, nil
	}
	return txn.LegacyThresholdPayload(partials)
}

// SubmitWalletTransaction attaches signatures to an envelope and submits it.
func (h *Handlers) SubmitWalletTransaction(ctx context.Context,
	req *corepb.SubmitWalletTransactionRequest) (
	*corepb.SubmitWalletTransactionResponse, error) {

	env, err := txn.ParseEnvelope([]byte(req.Transaction))
	if err != nil {
		return nil, err
	}
	sig, err := signaturePayload(env, req)
	if err != nil {
		return nil, err
	}
	tx, err := h.pipeline.Submit(ctx, env, sig)
	if err != nil {
		return nil, err
	}
	return &corepb.SubmitWalletTransactionResponse{
		Transaction: toTransaction(tx),
	}, nil
}

// GetAsyncBacktrace reports a pool goroutine's stack and core state.
func (h *Handlers) GetAsyncBacktrace(context.Context,
	*corepb.GetAsyncBacktraceRequest) (*corepb.GetAsyncBacktraceResponse,
	error) {

	return &corepb.GetAsyncBacktraceResponse{
		Text: h.backtrace("async"),
	}, nil
}

// GetTransaction looks up a transaction by hash.
func (h *Handlers) GetTransaction(ctx context.Context,
	req *corepb.GetTransactionRequest) (*corepb.GetTransactionResponse,
	error) {

	if req.Hash == "" {
		return nil, coreerr.Errorf(coreerr.ErrInvalidRequest,
			ledger.OpGetTransaction, "no hash given")
	}
	tx, err := h.client().GetTransaction(ctx, req.Hash)
	if err != nil {
		return nil, err
	}
	return &corepb.GetTransactionResponse{
		Transaction: toTransaction(tx),
	}, nil
}

// Transfer builds, signs and submits a single-key transfer.
func (h *Handlers) Transfer(ctx context.Context,
	req *corepb.TransferRequest) (*corepb.TransferResponse, error) {

	acct, err := importKeypair(req.Keypair)
	if err != nil {
		return nil, err
	}
	defer acct.Zero()

	if req.AddressFrom != "" {
		from, err := account.ParseAddress(req.AddressFrom)
		if err != nil {
			return nil, err
		}
		if from != acct.Address() {
			return nil, coreerr.Errorf(coreerr.ErrInvalidRequest,
				"transfer", "keypair does not control %v", from)
		}
	}
	to, err := account.ParseAddress(req.AddressTo)
	if err != nil {
		return nil, err
	}

	tx, err := h.pipeline.Transfer(ctx, acct, to, req.Amount)
	if err != nil {
		return nil, err
	}
	return &corepb.TransferResponse{Transaction: toTransaction(tx)}, nil
}
