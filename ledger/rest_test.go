// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aptwallet/walletcore/account"
	"github.com/aptwallet/walletcore/coreerr"
	"github.com/stretchr/testify/require"
)

var testAddr = account.Address{0x01, 0x02}

func newTestClient(t *testing.T, handler http.HandlerFunc) *RESTClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewRESTClient(RESTConfig{
		NodeURL:   srv.URL,
		FaucetURL: srv.URL + "/",
	})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// TestGetAccount checks the account route and decoding.
func TestGetAccount(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/accounts/"+testAddr.String(), r.URL.Path)
		writeJSON(w, http.StatusOK, `{"sequence_number":"7",`+
			`"authentication_key":"0xab"}`)
	})

	info, err := c.GetAccount(context.Background(), testAddr)
	require.NoError(t, err)
	require.Equal(t, "7", info.SequenceNumber)
	require.Equal(t, "0xab", info.AuthenticationKey)
}

// TestErrorClassification asserts transport, shape and remote failures map
// to distinct codes and carry the operation tag.
func TestErrorClassification(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		status int
		body   string
		code   coreerr.ErrorCode
	}{
		{
			name:   "remote message on error status",
			status: http.StatusNotFound,
			body:   `{"message":"account not found"}`,
			code:   coreerr.ErrRemoteRejected,
		},
		{
			name:   "garbage body",
			status: http.StatusOK,
			body:   `not json`,
			code:   coreerr.ErrInvalidResponse,
		},
		{
			name:   "error status without message",
			status: http.StatusInternalServerError,
			body:   `{}`,
			code:   coreerr.ErrInvalidResponse,
		},
		{
			name:   "success status with message",
			status: http.StatusAccepted,
			body:   `{"code":400,"message":"INVALID_SIGNATURE"}`,
			code:   coreerr.ErrRemoteRejected,
		},
		{
			name:   "success status without hash",
			status: http.StatusAccepted,
			body:   `{"type":"pending_transaction"}`,
			code:   coreerr.ErrInvalidResponse,
		},
		{
			name:   "wrong shape with message",
			status: http.StatusOK,
			body:   `{"message":"mempool full","hash":7}`,
			code:   coreerr.ErrRemoteRejected,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, func(w http.ResponseWriter,
				r *http.Request) {

				writeJSON(w, tc.status, tc.body)
			})

			_, err := c.SubmitTransaction(context.Background(),
				[]byte(`{}`))
			require.True(t, coreerr.Is(err, tc.code), "got %v", err)

			var cerr *coreerr.Error
			require.ErrorAs(t, err, &cerr)
			require.Equal(t, OpSubmitTransaction, cerr.Op)
		})
	}
}

// TestTransportError asserts an unreachable node is a transport failure.
func TestTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := NewRESTClient(RESTConfig{NodeURL: srv.URL})
	require.NoError(t, err)

	_, err = c.GetTransaction(context.Background(), "0xaa")
	require.True(t, coreerr.Is(err, coreerr.ErrTransport), "got %v", err)

	_, err = c.Fund(context.Background(), testAddr, 1)
	require.True(t, coreerr.Is(err, coreerr.ErrInvalidRequest))
}

// TestSigningMessageAndSubmit checks the bodies posted for the signing and
// submission routes.
func TestSigningMessageAndSubmit(t *testing.T) {
	t.Parallel()

	envelope := []byte(`{"sender":"0x01"}`)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json",
			r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, string(envelope), string(body))

		switch r.URL.Path {
		case "/transactions/signing_message":
			writeJSON(w, http.StatusOK, `{"message":"0xdead"}`)
		case "/transactions":
			writeJSON(w, http.StatusAccepted, `{"type":`+
				`"pending_transaction","hash":"0xbeef",`+
				`"sequence_number":"3"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	msg, err := c.GetSigningMessage(context.Background(), envelope)
	require.NoError(t, err)
	require.Equal(t, "0xdead", msg)

	tx, err := c.SubmitTransaction(context.Background(), envelope)
	require.NoError(t, err)
	require.Equal(t, &Transaction{
		Kind:           "pending_transaction",
		Hash:           "0xbeef",
		SequenceNumber: "3",
	}, tx)
}

// TestSigningMessageMissing asserts a body without a message is refused.
func TestSigningMessageMissing(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	_, err := c.GetSigningMessage(context.Background(), []byte(`{}`))
	require.True(t, coreerr.Is(err, coreerr.ErrInvalidResponse))
}

// TestFundAndLists checks the faucet query and the list routes.
func TestFundAndLists(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mint":
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "5000", r.URL.Query().Get("amount"))
			require.Equal(t, testAddr.String(),
				r.URL.Query().Get("auth_key"))
			writeJSON(w, http.StatusOK, `["0x1","0x2"]`)

		case "/accounts/" + testAddr.String() + "/transactions":
			writeJSON(w, http.StatusOK, `[{"type":`+
				`"user_transaction","hash":"0x1",`+
				`"success":true}]`)

		case "/accounts/" + testAddr.String() +
			"/resource/0x1::TestCoin::Balance":

			writeJSON(w, http.StatusOK, `{"type":`+
				`"0x1::TestCoin::Balance","data":{"coin":`+
				`{"value":"42"}}}`)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()

	hashes, err := c.Fund(ctx, testAddr, 5000)
	require.NoError(t, err)
	require.Equal(t, []string{"0x1", "0x2"}, hashes)

	txs, err := c.ListTransactions(ctx, testAddr)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.True(t, txs[0].Success)

	res, err := c.GetResource(ctx, testAddr, "0x1::TestCoin::Balance")
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(res, &decoded))
	require.Equal(t, "0x1::TestCoin::Balance", decoded["type"])
}

// TestNewRESTClientValidation asserts unusable URLs are refused.
func TestNewRESTClientValidation(t *testing.T) {
	t.Parallel()

	_, err := NewRESTClient(RESTConfig{NodeURL: "not a url"})
	require.Error(t, err)

	_, err = NewRESTClient(RESTConfig{
		NodeURL:   "http://localhost:8080",
		FaucetURL: "::",
	})
	require.Error(t, err)
}
