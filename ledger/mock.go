// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"context"
	"encoding/json"

	"github.com/aptwallet/walletcore/account"
	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client for use in tests.
type MockClient struct {
	mock.Mock
}

var _ Client = (*MockClient)(nil)

// GetAccount implements Client.
func (m *MockClient) GetAccount(ctx context.Context,
	addr account.Address) (*AccountInfo, error) {

	args := m.Called(ctx, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AccountInfo), args.Error(1)
}

// GetResource implements Client.
func (m *MockClient) GetResource(ctx context.Context, addr account.Address,
	resourceType string) (json.RawMessage, error) {

	args := m.Called(ctx, addr, resourceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// GetSigningMessage implements Client.
func (m *MockClient) GetSigningMessage(ctx context.Context,
	unsigned []byte) (string, error) {

	args := m.Called(ctx, unsigned)
	return args.String(0), args.Error(1)
}

// SubmitTransaction implements Client.
func (m *MockClient) SubmitTransaction(ctx context.Context,
	signed []byte) (*Transaction, error) {

	args := m.Called(ctx, signed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Transaction), args.Error(1)
}

// GetTransaction implements Client.
func (m *MockClient) GetTransaction(ctx context.Context,
	hash string) (*Transaction, error) {

	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Transaction), args.Error(1)
}

// ListTransactions implements Client.
func (m *MockClient) ListTransactions(ctx context.Context,
	addr account.Address) ([]Transaction, error) {

	args := m.Called(ctx, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Transaction), args.Error(1)
}

// Fund implements Client.
func (m *MockClient) Fund(ctx context.Context, authKey account.Address,
	amount uint64) ([]string, error) {

	args := m.Called(ctx, authKey, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
