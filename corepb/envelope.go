// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package corepb holds the request and response envelopes exchanged with a
// host, and their protobuf wire encoding.  The schema is core.proto.
package corepb

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Envelope field numbers.  A request arm and the response arm answering it
// share a number.
const (
	FieldCreateAccount           protowire.Number = 1
	FieldCreateWallet            protowire.Number = 2
	FieldGetSyncBacktrace        protowire.Number = 3
	FieldFundWallet              protowire.Number = 10
	FieldGetWalletBalance        protowire.Number = 11
	FieldGetWalletTransactions   protowire.Number = 12
	FieldCreateWalletTransaction protowire.Number = 13
	FieldSignWalletTransaction   protowire.Number = 14
	FieldSubmitWalletTransaction protowire.Number = 15
	FieldGetAsyncBacktrace       protowire.Number = 16
	FieldGetTransaction          protowire.Number = 17
	FieldTransfer                protowire.Number = 18
)

var fieldNames = map[protowire.Number]string{
	FieldCreateAccount:           "create_account",
	FieldCreateWallet:            "create_wallet",
	FieldGetSyncBacktrace:        "get_sync_backtrace",
	FieldFundWallet:              "fund_wallet",
	FieldGetWalletBalance:        "get_wallet_balance",
	FieldGetWalletTransactions:   "get_wallet_transactions",
	FieldCreateWalletTransaction: "create_wallet_transaction",
	FieldSignWalletTransaction:   "sign_wallet_transaction",
	FieldSubmitWalletTransaction: "submit_wallet_transaction",
	FieldGetAsyncBacktrace:       "get_async_backtrace",
	FieldGetTransaction:          "get_transaction",
	FieldTransfer:                "transfer",
}

// FieldName returns the schema name of an envelope field.
func FieldName(num protowire.Number) string {
	if s, ok := fieldNames[num]; ok {
		return s
	}
	return fmt.Sprintf("field_%d", num)
}

// SyncRequest is an arm of the sync_requests oneof.
type SyncRequest interface {
	message

	// SyncField returns the arm's field number.
	SyncField() protowire.Number

	// ServeSync hands the request to the matching handler method.
	ServeSync(h SyncHandler) (ResponseArm, error)
}

// AsyncRequest is an arm of the async_requests oneof.
type AsyncRequest interface {
	message

	// AsyncField returns the arm's field number.
	AsyncField() protowire.Number

	// ServeAsync hands the request to the matching handler method.
	ServeAsync(ctx context.Context, h AsyncHandler) (ResponseArm, error)
}

// ResponseArm is an arm of the response oneof.
type ResponseArm interface {
	message

	// ResponseField returns the arm's field number.
	ResponseField() protowire.Number
}

var syncArms = map[protowire.Number]func() SyncRequest{
	FieldCreateAccount: func() SyncRequest {
		return new(CreateAccountRequest)
	},
	FieldCreateWallet: func() SyncRequest {
		return new(CreateWalletRequest)
	},
	FieldGetSyncBacktrace: func() SyncRequest {
		return new(GetSyncBacktraceRequest)
	},
}

var asyncArms = map[protowire.Number]func() AsyncRequest{
	FieldFundWallet: func() AsyncRequest {
		return new(FundWalletRequest)
	},
	FieldGetWalletBalance: func() AsyncRequest {
		return new(GetWalletBalanceRequest)
	},
	FieldGetWalletTransactions: func() AsyncRequest {
		return new(GetWalletTransactionsRequest)
	},
	FieldCreateWalletTransaction: func() AsyncRequest {
		return new(CreateWalletTransactionRequest)
	},
	FieldSignWalletTransaction: func() AsyncRequest {
		return new(SignWalletTransactionRequest)
	},
	FieldSubmitWalletTransaction: func() AsyncRequest {
		return new(SubmitWalletTransactionRequest)
	},
	FieldGetAsyncBacktrace: func() AsyncRequest {
		return new(GetAsyncBacktraceRequest)
	},
	FieldGetTransaction: func() AsyncRequest {
		return new(GetTransactionRequest)
	},
	FieldTransfer: func() AsyncRequest {
		return new(TransferRequest)
	},
}

var responseArms = map[protowire.Number]func() ResponseArm{
	FieldCreateAccount: func() ResponseArm {
		return new(CreateAccountResponse)
	},
	FieldCreateWallet: func() ResponseArm {
		return new(CreateWalletResponse)
	},
	FieldGetSyncBacktrace: func() ResponseArm {
		return new(GetSyncBacktraceResponse)
	},
	FieldFundWallet: func() ResponseArm {
		return new(FundWalletResponse)
	},
	FieldGetWalletBalance: func() ResponseArm {
		return new(GetWalletBalanceResponse)
	},
	FieldGetWalletTransactions: func() ResponseArm {
		return new(GetWalletTransactionsResponse)
	},
	FieldCreateWalletTransaction: func() ResponseArm {
		return new(CreateWalletTransactionResponse)
	},
	FieldSignWalletTransaction: func() ResponseArm {
		return new(SignWalletTransactionResponse)
	},
	FieldSubmitWalletTransaction: func() ResponseArm {
		return new(SubmitWalletTransactionResponse)
	},
	FieldGetAsyncBacktrace: func() ResponseArm {
		return new(GetAsyncBacktraceResponse)
	},
	FieldGetTransaction: func() ResponseArm {
		return new(GetTransactionResponse)
	},
	FieldTransfer: func() ResponseArm {
		return new(TransferResponse)
	},
}

// Request is the envelope a host sends.  A well-formed request sets exactly
// one of Sync and Async.
type Request struct {
	Sync  SyncRequest
	Async AsyncRequest
}

// Kind returns the schema name of the populated arm, or "empty".
func (r *Request) Kind() string {
	switch {
	case r.Sync != nil:
		return FieldName(r.Sync.SyncField())
	case r.Async != nil:
		return FieldName(r.Async.AsyncField())
	default:
		return "empty"
	}
}

// Marshal encodes the request.
func (r *Request) Marshal() ([]byte, error) {
	var b []byte
	if r.Sync != nil {
		b = appendMessage(b, r.Sync.SyncField(), r.Sync)
	}
	if r.Async != nil {
		b = appendMessage(b, r.Async.AsyncField(), r.Async)
	}
	return b, nil
}

// Unmarshal decodes b into r.  Fields outside both oneofs are skipped.
func (r *Request) Unmarshal(b []byte) error {
	*r = Request{}
	return unmarshalMessage(b, r)
}

func (r *Request) marshal(b []byte) []byte {
	out, _ := r.Marshal()
	return append(b, out...)
}

func (r *Request) unmarshalField(num protowire.Number, typ protowire.Type,
	b []byte) (int, error) {

	if newArm, ok := syncArms[num]; ok {
		arm := newArm()
		n, err := consumeMessage(num, typ, b, arm)
		if err != nil {
			return 0, err
		}
		r.Sync = arm
		return n, nil
	}
	if newArm, ok := asyncArms[num]; ok {
		arm := newArm()
		n, err := consumeMessage(num, typ, b, arm)
		if err != nil {
			return 0, err
		}
		r.Async = arm
		return n, nil
	}
	return skipField(num, typ, b)
}

// Response is the envelope returned to a host.
type Response struct {
	Result ResponseArm
}

// Marshal encodes the response.
func (r *Response) Marshal() ([]byte, error) {
	if r.Result == nil {
		return nil, fmt.Errorf("response has no result")
	}
	return appendMessage(nil, r.Result.ResponseField(), r.Result), nil
}

// Unmarshal decodes b into r.
func (r *Response) Unmarshal(b []byte) error {
	*r = Response{}
	if err := unmarshalMessage(b, r); err != nil {
		return err
	}
	if r.Result == nil {
		return fmt.Errorf("response has no result")
	}
	return nil
}

func (r *Response) marshal(b []byte) []byte {
	out, _ := r.Marshal()
	return append(b, out...)
}

func (r *Response) unmarshalField(num protowire.Number, typ protowire.Type,
	b []byte) (int, error) {

	newArm, ok := responseArms[num]
	if !ok {
		return skipField(num, typ, b)
	}
	arm := newArm()
	n, err := consumeMessage(num, typ, b, arm)
	if err != nil {
		return 0, err
	}
	r.Result = arm
	return n, nil
}
