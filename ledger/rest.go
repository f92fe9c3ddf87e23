// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aptwallet/walletcore/account"
	"github.com/aptwallet/walletcore/coreerr"
)

// Operation tags carried by errors returned from the REST client.
const (
	OpGetAccount        = "get_account"
	OpGetResource       = "get_account_resource"
	OpSigningMessage    = "signing_message"
	OpSubmitTransaction = "submit_transaction"
	OpGetTransaction    = "get_transaction"
	OpListTransactions  = "get_account_transactions"
	OpFund              = "fund"
)

// RESTConfig configures a RESTClient.
type RESTConfig struct {
	// NodeURL is the base URL of the ledger node REST service.
	NodeURL string

	// FaucetURL is the base URL of the faucet.  Fund fails when empty.
	FaucetURL string

	// Timeout bounds each HTTP exchange.  Zero means no timeout.
	Timeout time.Duration

	// HTTPClient overrides the client used for requests.
	HTTPClient *http.Client
}

// RESTClient implements Client over the ledger node's JSON REST interface.
// It is safe for concurrent use.
type RESTClient struct {
	node       *url.URL
	faucet     *url.URL
	httpClient *http.Client
}

var _ Client = (*RESTClient)(nil)

// NewRESTClient creates a client for the node and faucet in cfg.
func NewRESTClient(cfg RESTConfig) (*RESTClient, error) {
	node, err := parseBaseURL(cfg.NodeURL)
	if err != nil {
		return nil, err
	}

	var faucet *url.URL
	if cfg.FaucetURL != "" {
		faucet, err = parseBaseURL(cfg.FaucetURL)
		if err != nil {
			return nil, err
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &RESTClient{
		node:       node,
		faucet:     faucet,
		httpClient: httpClient,
	}, nil
}

func parseBaseURL(s string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(s, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, coreerr.Errorf(coreerr.ErrInvalidRequest, "config",
			"invalid service URL %q", s)
	}
	return u, nil
}

func (c *RESTClient) endpoint(base *url.URL, path string,
	query url.Values) string {

	u := *base
	u.Path = base.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// remoteError is the body the node and faucet answer with on failure.
type remoteError struct {
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
}

func (c *RESTClient) do(ctx context.Context, op, method, target string,
	body []byte, result interface{}) error {

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return coreerr.E(coreerr.ErrTransport, op,
			"unable to create request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	log.Debugf("%s %s", method, target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return coreerr.E(coreerr.ErrTransport, op, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return coreerr.E(coreerr.ErrTransport, op,
			"unable to read response", err)
	}

	return handleResponse(op, resp.StatusCode, raw, result)
}

// messageResponse is implemented by results whose successful body has a
// top level message field of its own.
type messageResponse interface {
	ownsMessage()
}

// signingMessageResponse is the body of the signing message route.
type signingMessageResponse struct {
	Message *string `json:"message"`
}

func (*signingMessageResponse) ownsMessage() {}

// handleResponse decodes raw into result.  A body carrying a message field
// the result does not own is the remote side refusing the operation, even
// with a success status.
func handleResponse(op string, status int, raw []byte,
	result interface{}) error {

	ok := status >= 200 && status < 300
	if ok {
		_, owned := result.(messageResponse)
		_, opaque := result.(*json.RawMessage)
		if !owned && !opaque {
			if rerr := parseRemoteError(op, raw); rerr != nil {
				return rerr
			}
		}

		decodeErr := json.Unmarshal(raw, result)
		if decodeErr == nil {
			return nil
		}
		if rerr := parseRemoteError(op, raw); rerr != nil {
			return rerr
		}
		return coreerr.E(coreerr.ErrInvalidResponse, op,
			"unexpected response body", decodeErr)
	}

	if rerr := parseRemoteError(op, raw); rerr != nil {
		return rerr
	}
	return coreerr.Errorf(coreerr.ErrInvalidResponse, op,
		"unexpected status %d", status)
}

func parseRemoteError(op string, raw []byte) error {
	var rerr remoteError
	if json.Unmarshal(raw, &rerr) != nil || rerr.Message == "" {
		return nil
	}
	log.Debugf("%s rejected by remote: %s", op, rerr.Message)
	return coreerr.Errorf(coreerr.ErrRemoteRejected, op, "%s", rerr.Message)
}

// GetAccount returns the account record for addr.
func (c *RESTClient) GetAccount(ctx context.Context,
	addr account.Address) (*AccountInfo, error) {

	var info AccountInfo
	target := c.endpoint(c.node, "/accounts/"+addr.String(), nil)
	err := c.do(ctx, OpGetAccount, http.MethodGet, target, nil, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GetResource returns the raw JSON of one resource held by addr.
func (c *RESTClient) GetResource(ctx context.Context, addr account.Address,
	resourceType string) (json.RawMessage, error) {

	var res json.RawMessage
	path := "/accounts/" + addr.String() + "/resource/" + resourceType
	target := c.endpoint(c.node, path, nil)
	err := c.do(ctx, OpGetResource, http.MethodGet, target, nil, &res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetSigningMessage returns the hex signing message of an unsigned envelope.
func (c *RESTClient) GetSigningMessage(ctx context.Context,
	unsigned []byte) (string, error) {

	var resp signingMessageResponse
	target := c.endpoint(c.node, "/transactions/signing_message", nil)
	err := c.do(ctx, OpSigningMessage, http.MethodPost, target, unsigned,
		&resp)
	if err != nil {
		return "", err
	}
	if resp.Message == nil {
		return "", coreerr.Errorf(coreerr.ErrInvalidResponse,
			OpSigningMessage, "response carries no message")
	}
	return *resp.Message, nil
}

// SubmitTransaction submits a signed envelope.
func (c *RESTClient) SubmitTransaction(ctx context.Context,
	signed []byte) (*Transaction, error) {

	var tx Transaction
	target := c.endpoint(c.node, "/transactions", nil)
	err := c.do(ctx, OpSubmitTransaction, http.MethodPost, target, signed,
		&tx)
	if err != nil {
		return nil, err
	}
	if tx.Hash == "" {
		return nil, coreerr.Errorf(coreerr.ErrInvalidResponse,
			OpSubmitTransaction, "response carries no hash")
	}
	return &tx, nil
}

// GetTransaction looks up a transaction by hash.
func (c *RESTClient) GetTransaction(ctx context.Context,
	hash string) (*Transaction, error) {

	var tx Transaction
	target := c.endpoint(c.node, "/transactions/"+hash, nil)
	err := c.do(ctx, OpGetTransaction, http.MethodGet, target, nil, &tx)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListTransactions returns the transactions sent by addr.
func (c *RESTClient) ListTransactions(ctx context.Context,
	addr account.Address) ([]Transaction, error) {

	var txs []Transaction
	path := "/accounts/" + addr.String() + "/transactions"
	target := c.endpoint(c.node, path, nil)
	err := c.do(ctx, OpListTransactions, http.MethodGet, target, nil, &txs)
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// Fund asks the faucet to mint amount to authKey.
func (c *RESTClient) Fund(ctx context.Context, authKey account.Address,
	amount uint64) ([]string, error) {

	if c.faucet == nil {
		return nil, coreerr.Errorf(coreerr.ErrInvalidRequest, OpFund,
			"no faucet configured")
	}

	query := url.Values{}
	query.Set("amount", strconv.FormatUint(amount, 10))
	query.Set("auth_key", authKey.String())
	target := c.endpoint(c.faucet, "/mint", query)

	var hashes []string
	err := c.do(ctx, OpFund, http.MethodPost, target, nil, &hashes)
	if err != nil {
		return nil, err
	}
	return hashes, nil
}
