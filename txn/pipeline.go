// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txn drives a transaction from construction through signing to
// submission against a ledger.Client.
//
// The stages are Build, SigningMessage plus signing, and Submit.  Nothing is
// retried: a failed stage is re-run by the caller starting from Build.
package txn

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/aptwallet/walletcore/account"
	"github.com/aptwallet/walletcore/coreerr"
	"github.com/aptwallet/walletcore/ledger"
)

// Default gas parameters and expiration window.
const (
	DefaultMaxGasAmount     = 1000
	DefaultGasUnitPrice     = 1
	DefaultGasCurrencyCode  = "XUS"
	DefaultCoinType         = "0x1::TestCoin"
	DefaultExpirationWindow = 600 * time.Second
)

// Config holds the fixed parameters stamped onto every envelope.
type Config struct {
	MaxGasAmount     uint64
	GasUnitPrice     uint64
	GasCurrencyCode  string
	CoinType         string
	ExpirationWindow time.Duration

	// Now returns the wall clock.  time.Now is used when nil.
	Now func() time.Time
}

// DefaultConfig returns the parameters used by the public test networks.
func DefaultConfig() Config {
	return Config{
		MaxGasAmount:     DefaultMaxGasAmount,
		GasUnitPrice:     DefaultGasUnitPrice,
		GasCurrencyCode:  DefaultGasCurrencyCode,
		CoinType:         DefaultCoinType,
		ExpirationWindow: DefaultExpirationWindow,
	}
}

// Pipeline builds, signs and submits transactions.  It holds no mutable
// state and may be shared between goroutines.
type Pipeline struct {
	client ledger.Client
	cfg    Config
}

// New returns a pipeline talking to client.
func New(client ledger.Client, cfg Config) *Pipeline {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pipeline{client: client, cfg: cfg}
}

// Client returns the ledger client the pipeline talks to.
func (p *Pipeline) Client() ledger.Client {
	return p.client
}

// CoinType returns the coin module transfers and balances refer to.
func (p *Pipeline) CoinType() string {
	return p.cfg.CoinType
}

// Build creates an unsigned envelope for sender carrying payload.  The
// sequence number is read from the ledger and the expiration is the
// configured window past the current time.
func (p *Pipeline) Build(ctx context.Context, sender account.Address,
	payload json.RawMessage) (*Envelope, error) {

	const op = "build"

	info, err := p.client.GetAccount(ctx, sender)
	if err != nil {
		return nil, err
	}
	seq, err := strconv.ParseUint(info.SequenceNumber, 10, 64)
	if err != nil {
		return nil, coreerr.E(coreerr.ErrSequenceNumberUnavailable, op,
			"account record has no usable sequence number", err)
	}

	now := p.cfg.Now()
	if now.Before(time.Unix(0, 0)) {
		return nil, coreerr.Errorf(coreerr.ErrClock, op,
			"clock reads %v, before the Unix epoch", now)
	}
	expiration := now.Add(p.cfg.ExpirationWindow).Unix()

	env := &Envelope{
		Sender:          sender.Hex(),
		SequenceNumber:  strconv.FormatUint(seq, 10),
		MaxGasAmount:    strconv.FormatUint(p.cfg.MaxGasAmount, 10),
		GasUnitPrice:    strconv.FormatUint(p.cfg.GasUnitPrice, 10),
		GasCurrencyCode: p.cfg.GasCurrencyCode,
		ExpirationTimestampSecs: strconv.FormatInt(
			expiration, 10),
		Payload: payload,
	}

	log.Debugf("Built envelope for %v at sequence %d", sender, seq)
	return env, nil
}

// SigningMessage fetches the bytes every signer must sign for env.
func (p *Pipeline) SigningMessage(ctx context.Context,
	env *Envelope) ([]byte, error) {

	unsigned, err := env.unsignedJSON()
	if err != nil {
		return nil, coreerr.E(coreerr.ErrInvalidRequest,
			ledger.OpSigningMessage, "unable to encode envelope", err)
	}

	msg, err := p.client.GetSigningMessage(ctx, unsigned)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(msg, "0x") {
		return nil, coreerr.Errorf(coreerr.ErrInvalidResponse,
			ledger.OpSigningMessage, "signing message lacks 0x marker")
	}
	raw, err := hex.DecodeString(msg[2:])
	if err != nil {
		return nil, coreerr.E(coreerr.ErrInvalidResponse,
			ledger.OpSigningMessage, "signing message is not hex", err)
	}
	return raw, nil
}

// Sign returns acct's single-key signature over env's signing message.
func (p *Pipeline) Sign(ctx context.Context, env *Envelope,
	acct *account.Account) (SignaturePayload, error) {

	msg, err := p.SigningMessage(ctx, env)
	if err != nil {
		return SignaturePayload{}, err
	}
	return SignSingle(acct, msg), nil
}

// Submit attaches sig to env and submits it.
func (p *Pipeline) Submit(ctx context.Context, env *Envelope,
	sig SignaturePayload) (*ledger.Transaction, error) {

	if err := env.AttachSignature(sig); err != nil {
		return nil, err
	}
	signed, err := env.JSON()
	if err != nil {
		return nil, coreerr.E(coreerr.ErrInvalidRequest,
			ledger.OpSubmitTransaction, "unable to encode envelope", err)
	}

	tx, err := p.client.SubmitTransaction(ctx, signed)
	switch {
	case coreerr.Is(err, coreerr.ErrRemoteRejected):
		return nil, coreerr.E(coreerr.ErrRemoteRejected,
			ledger.OpSubmitTransaction, "submission rejected", err)
	case err != nil:
		return nil, err
	}

	log.Infof("Submitted transaction %s from %s", tx.Hash, env.Sender)
	return tx, nil
}

// Transfer moves amount from acct to to in one build, sign and submit pass.
func (p *Pipeline) Transfer(ctx context.Context, acct *account.Account,
	to account.Address, amount uint64) (*ledger.Transaction, error) {

	payload := TransferPayload(p.cfg.CoinType, to, amount)
	env, err := p.Build(ctx, acct.Address(), payload)
	if err != nil {
		return nil, err
	}
	sig, err := p.Sign(ctx, env, acct)
	if err != nil {
		return nil, err
	}
	return p.Submit(ctx, env, sig)
}

// balanceResource is the JSON shape of a coin balance resource.
type balanceResource struct {
	Data struct {
		Coin struct {
			Value string `json:"value"`
		} `json:"coin"`
	} `json:"data"`
}

// Balance returns the coin balance held at addr.
func (p *Pipeline) Balance(ctx context.Context,
	addr account.Address) (uint64, error) {

	raw, err := p.client.GetResource(ctx, addr, p.cfg.CoinType+"::Balance")
	if err != nil {
		return 0, err
	}

	var res balanceResource
	if err := json.Unmarshal(raw, &res); err != nil {
		return 0, coreerr.E(coreerr.ErrInvalidResponse,
			ledger.OpGetResource, "balance resource has wrong shape", err)
	}
	value, err := strconv.ParseUint(res.Data.Coin.Value, 10, 64)
	if err != nil {
		return 0, coreerr.E(coreerr.ErrInvalidResponse,
			ledger.OpGetResource, "balance is not a number", err)
	}
	return value, nil
}
