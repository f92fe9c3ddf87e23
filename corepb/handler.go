// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package corepb

import (
	"context"
	"errors"

	fn "github.com/lightningnetwork/lnd/fn/v2"
	"google.golang.org/protobuf/encoding/protowire"
)

// SyncHandler serves every sync_requests arm.  Adding an arm adds a method
// here, so no handler compiles until it serves the new arm.
type SyncHandler interface {
	CreateAccount(*CreateAccountRequest) (*CreateAccountResponse, error)
	CreateWallet(*CreateWalletRequest) (*CreateWalletResponse, error)
	GetSyncBacktrace(*GetSyncBacktraceRequest) (*GetSyncBacktraceResponse,
		error)
}

// AsyncHandler serves every async_requests arm.
type AsyncHandler interface {
	FundWallet(context.Context, *FundWalletRequest) (*FundWalletResponse,
		error)
	GetWalletBalance(context.Context, *GetWalletBalanceRequest) (
		*GetWalletBalanceResponse, error)
	GetWalletTransactions(context.Context, *GetWalletTransactionsRequest) (
		*GetWalletTransactionsResponse, error)
	CreateWalletTransaction(context.Context,
		*CreateWalletTransactionRequest) (
		*CreateWalletTransactionResponse, error)
	SignWalletTransaction(context.Context, *SignWalletTransactionRequest) (
		*SignWalletTransactionResponse, error)
	SubmitWalletTransaction(context.Context,
		*SubmitWalletTransactionRequest) (
		*SubmitWalletTransactionResponse, error)
	GetAsyncBacktrace(context.Context, *GetAsyncBacktraceRequest) (
		*GetAsyncBacktraceResponse, error)
	GetTransaction(context.Context, *GetTransactionRequest) (
		*GetTransactionResponse, error)
	Transfer(context.Context, *TransferRequest) (*TransferResponse, error)
}

// serve adapts a typed handler result to a response arm without letting a
// nil pointer leak into the interface.
func serve[T ResponseArm](resp T, err error, isNil bool) (ResponseArm,
	error) {

	if err != nil {
		return nil, err
	}
	if isNil {
		return nil, errNilResponse
	}
	return resp, nil
}

var errNilResponse = errors.New("handler returned no response")

// Sync arms.

// SyncField implements SyncRequest.
func (m *CreateAccountRequest) SyncField() protowire.Number {
	return FieldCreateAccount
}

// ServeSync implements SyncRequest.
func (m *CreateAccountRequest) ServeSync(h SyncHandler) (ResponseArm, error) {
	resp, err := h.CreateAccount(m)
	return serve(resp, err, resp == nil)
}

// ImportKey returns the key to import, if any.
func (m *CreateAccountRequest) ImportKey() fn.Option[[]byte] {
	if len(m.PrivateKey) == 0 {
		return fn.None[[]byte]()
	}
	return fn.Some(m.PrivateKey)
}

// SyncField implements SyncRequest.
func (m *CreateWalletRequest) SyncField() protowire.Number {
	return FieldCreateWallet
}

// ServeSync implements SyncRequest.
func (m *CreateWalletRequest) ServeSync(h SyncHandler) (ResponseArm, error) {
	resp, err := h.CreateWallet(m)
	return serve(resp, err, resp == nil)
}

// SyncField implements SyncRequest.
func (m *GetSyncBacktraceRequest) SyncField() protowire.Number {
	return FieldGetSyncBacktrace
}

// ServeSync implements SyncRequest.
func (m *GetSyncBacktraceRequest) ServeSync(h SyncHandler) (ResponseArm,
	error) {

	resp, err := h.GetSyncBacktrace(m)
	return serve(resp, err, resp == nil)
}

// Async arms.

// AsyncField implements AsyncRequest.
func (m *FundWalletRequest) AsyncField() protowire.Number {
	return FieldFundWallet
}

// ServeAsync implements AsyncRequest.
func (m *FundWalletRequest) ServeAsync(ctx context.Context,
	h AsyncHandler) (ResponseArm, error) {

	resp, err := h.FundWallet(ctx, m)
	return serve(resp, err, resp == nil)
}

// AsyncField implements AsyncRequest.
func (m *GetWalletBalanceRequest) AsyncField() protowire.Number {
	return FieldGetWalletBalance
}

// ServeAsync implements AsyncRequest.
func (m *GetWalletBalanceRequest) ServeAsync(ctx context.Context,
	h AsyncHandler) (ResponseArm, error) {

	resp, err := h.GetWalletBalance(ctx, m)
	return serve(resp, err, resp == nil)
}

// AsyncField implements AsyncRequest.
func (m *GetWalletTransactionsRequest) AsyncField() protowire.Number {
	return FieldGetWalletTransactions
}

// ServeAsync implements AsyncRequest.
func (m *GetWalletTransactionsRequest) ServeAsync(ctx context.Context,
	h AsyncHandler) (ResponseArm, error) {

	resp, err := h.GetWalletTransactions(ctx, m)
	return serve(resp, err, resp == nil)
}

// AsyncField implements AsyncRequest.
func (m *CreateWalletTransactionRequest) AsyncField() protowire.Number {
	return FieldCreateWalletTransaction
}

// ServeAsync implements AsyncRequest.
func (m *CreateWalletTransactionRequest) ServeAsync(ctx context.Context,
	h AsyncHandler) (ResponseArm, error) {

	resp, err := h.CreateWalletTransaction(ctx, m)
	return serve(resp, err, resp == nil)
}

// AsyncField implements AsyncRequest.
func (m *SignWalletTransactionRequest) AsyncField() protowire.Number {
	return FieldSignWalletTransaction
}

// ServeAsync implements AsyncRequest.
func (m *SignWalletTransactionRequest) ServeAsync(ctx context.Context,
	h AsyncHandler) (ResponseArm, error) {

	resp, err := h.SignWalletTransaction(ctx, m)
	return serve(resp, err, resp == nil)
}

// AsyncField implements AsyncRequest.
func (m *SubmitWalletTransactionRequest) AsyncField() protowire.Number {
	return FieldSubmitWalletTransaction
}

// ServeAsync implements AsyncRequest.
func (m *SubmitWalletTransactionRequest) ServeAsync(ctx context.Context,
	h AsyncHandler) (ResponseArm, error) {

	resp, err := h.SubmitWalletTransaction(ctx, m)
	return serve(resp, err, resp == nil)
}

// Membership returns the shared wallet membership carried by the request,
// if any.
func (m *SubmitWalletTransactionRequest) Membership() fn.Option[[]string] {
	if len(m.WalletPublicKeys) == 0 {
		return fn.None[[]string]()
	}
	return fn.Some(m.WalletPublicKeys)
}

// AsyncField implements AsyncRequest.
func (m *GetAsyncBacktraceRequest) AsyncField() protowire.Number {
	return FieldGetAsyncBacktrace
}

// ServeAsync implements AsyncRequest.
func (m *GetAsyncBacktraceRequest) ServeAsync(ctx context.Context,
	h AsyncHandler) (ResponseArm, error) {

	resp, err := h.GetAsyncBacktrace(ctx, m)
	return serve(resp, err, resp == nil)
}

// AsyncField implements AsyncRequest.
func (m *GetTransactionRequest) AsyncField() protowire.Number {
	return FieldGetTransaction
}

// ServeAsync implements AsyncRequest.
func (m *GetTransactionRequest) ServeAsync(ctx context.Context,
	h AsyncHandler) (ResponseArm, error) {

	resp, err := h.GetTransaction(ctx, m)
	return serve(resp, err, resp == nil)
}

// AsyncField implements AsyncRequest.
func (m *TransferRequest) AsyncField() protowire.Number {
	return FieldTransfer
}

// ServeAsync implements AsyncRequest.
func (m *TransferRequest) ServeAsync(ctx context.Context,
	h AsyncHandler) (ResponseArm, error) {

	resp, err := h.Transfer(ctx, m)
	return serve(resp, err, resp == nil)
}

// Response arms.

// ResponseField implements ResponseArm.
func (m *CreateAccountResponse) ResponseField() protowire.Number {
	return FieldCreateAccount
}

// ResponseField implements ResponseArm.
func (m *CreateWalletResponse) ResponseField() protowire.Number {
	return FieldCreateWallet
}

// ResponseField implements ResponseArm.
func (m *GetSyncBacktraceResponse) ResponseField() protowire.Number {
	return FieldGetSyncBacktrace
}

// ResponseField implements ResponseArm.
func (m *FundWalletResponse) ResponseField() protowire.Number {
	return FieldFundWallet
}

// ResponseField implements ResponseArm.
func (m *GetWalletBalanceResponse) ResponseField() protowire.Number {
	return FieldGetWalletBalance
}

// ResponseField implements ResponseArm.
func (m *GetWalletTransactionsResponse) ResponseField() protowire.Number {
	return FieldGetWalletTransactions
}

// ResponseField implements ResponseArm.
func (m *CreateWalletTransactionResponse) ResponseField() protowire.Number {
	return FieldCreateWalletTransaction
}

// ResponseField implements ResponseArm.
func (m *SignWalletTransactionResponse) ResponseField() protowire.Number {
	return FieldSignWalletTransaction
}

// ResponseField implements ResponseArm.
func (m *SubmitWalletTransactionResponse) ResponseField() protowire.Number {
	return FieldSubmitWalletTransaction
}

// ResponseField implements ResponseArm.
func (m *GetAsyncBacktraceResponse) ResponseField() protowire.Number {
	return FieldGetAsyncBacktrace
}

// ResponseField implements ResponseArm.
func (m *GetTransactionResponse) ResponseField() protowire.Number {
	return FieldGetTransaction
}

// ResponseField implements ResponseArm.
func (m *TransferResponse) ResponseField() protowire.Number {
	return FieldTransfer
}
