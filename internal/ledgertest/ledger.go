// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledgertest provides an in-process ledger node and faucet speaking
// the REST dialect the core expects.  Signatures are verified, sequence
// numbers enforced and balances moved, so tests exercise the full pipeline.
package ledgertest

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/bits"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/sha3"
)

// BalanceResource is the resource type balances are served under.
const BalanceResource = "0x1::TestCoin::Balance"

type accountState struct {
	sequence uint64
	balance  uint64
	sent     []string
}

type walletState struct {
	members   [][]byte
	threshold int
}

type transaction struct {
	Type           string `json:"type"`
	Hash           string `json:"hash"`
	SequenceNumber string `json:"sequence_number"`
	Success        bool   `json:"success"`
	VMStatus       string `json:"vm_status"`
}

// Ledger is a fake ledger node and faucet.
type Ledger struct {
	*httptest.Server

	mtx      sync.Mutex
	accounts map[string]*accountState
	wallets  map[string]*walletState
	txs      map[string]*transaction
	mints    int

	// Submissions counts accepted transactions.
	Submissions int
}

// New starts a fake ledger that is shut down when the test ends.
func New(t testing.TB) *Ledger {
	t.Helper()

	l := &Ledger{
		accounts: make(map[string]*accountState),
		wallets:  make(map[string]*walletState),
		txs:      make(map[string]*transaction),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/", l.handleAccounts)
	mux.HandleFunc("/transactions", l.handleSubmit)
	mux.HandleFunc("/transactions/signing_message", l.handleSigningMessage)
	mux.HandleFunc("/transactions/", l.handleGetTransaction)
	mux.HandleFunc("/mint", l.handleMint)

	l.Server = httptest.NewServer(mux)
	t.Cleanup(l.Server.Close)
	return l
}

// Balance returns the balance held by the hex address addr.
func (l *Ledger) Balance(addr string) uint64 {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if acct, ok := l.accounts[normalize(addr)]; ok {
		return acct.balance
	}
	return 0
}

// Sequence returns the sequence number of the hex address addr.
func (l *Ledger) Sequence(addr string) uint64 {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if acct, ok := l.accounts[normalize(addr)]; ok {
		return acct.sequence
	}
	return 0
}

func normalize(addr string) string {
	return strings.ToLower(strings.TrimPrefix(addr, "0x"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func reject(w http.ResponseWriter, status int, format string,
	args ...interface{}) {

	writeJSON(w, status, map[string]string{
		"message": fmt.Sprintf(format, args...),
	})
}

func (l *Ledger) handleAccounts(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/accounts/"),
		"/")

	l.mtx.Lock()
	defer l.mtx.Unlock()

	acct, ok := l.accounts[normalize(parts[0])]
	if !ok {
		reject(w, http.StatusNotFound, "account %s not found", parts[0])
		return
	}

	switch {
	case len(parts) == 1:
		writeJSON(w, http.StatusOK, map[string]string{
			"sequence_number":    strconv.FormatUint(acct.sequence, 10),
			"authentication_key": "0x" + normalize(parts[0]),
		})

	case len(parts) == 3 && parts[1] == "resource" &&
		parts[2] == BalanceResource:

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"type": BalanceResource,
			"data": map[string]interface{}{
				"coin": map[string]string{
					"value": strconv.FormatUint(
						acct.balance, 10),
				},
			},
		})

	case len(parts) == 2 && parts[1] == "transactions":
		txs := make([]*transaction, 0, len(acct.sent))
		for _, h := range acct.sent {
			txs = append(txs, l.txs[h])
		}
		writeJSON(w, http.StatusOK, txs)

	default:
		reject(w, http.StatusNotFound, "no route %s", r.URL.Path)
	}
}

func (l *Ledger) handleMint(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseUint(r.URL.Query().Get("amount"), 10, 64)
	if err != nil {
		reject(w, http.StatusBadRequest, "bad amount")
		return
	}
	authKey := normalize(r.URL.Query().Get("auth_key"))
	if len(authKey) != 64 {
		reject(w, http.StatusBadRequest, "bad auth_key")
		return
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	acct, ok := l.accounts[authKey]
	if !ok {
		acct = &accountState{}
		l.accounts[authKey] = acct
	}
	acct.balance += amount
	l.mints++

	hash := fmt.Sprintf("0x%064x", l.mints)
	l.txs[hash] = &transaction{
		Type: "user_transaction", Hash: hash, Success: true,
		VMStatus: "Executed successfully",
	}
	writeJSON(w, http.StatusOK, []string{hash})
}

// signingMessage derives the message signers must sign for a JSON envelope.
// The signature field, if present, is ignored.
func signingMessage(body map[string]interface{}) []byte {
	unsigned := make(map[string]interface{}, len(body))
	for k, v := range body {
		if k != "signature" {
			unsigned[k] = v
		}
	}
	canonical, _ := json.Marshal(unsigned)
	digest := sha3.Sum256(append([]byte("RawTransaction::"),
		canonical...))
	return digest[:]
}

func readBody(r *http.Request) (map[string]interface{}, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return body, nil
}

func (l *Ledger) handleSigningMessage(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		reject(w, http.StatusBadRequest, "bad body: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "0x" + hex.EncodeToString(signingMessage(body)),
	})
}

func decodeHex(v interface{}) []byte {
	s, _ := v.(string)
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil
	}
	return b
}

// RegisterWallet records the ordered membership of a shared wallet so
// threshold signatures from its address are checked against it.  It
// returns the wallet's hex address.
func (l *Ledger) RegisterWallet(pubs []ed25519.PublicKey,
	threshold int) string {

	members := make([][]byte, len(pubs))
	for i, pub := range pubs {
		members[i] = append([]byte(nil), pub...)
	}
	addr := walletAddress(members, threshold)

	l.mtx.Lock()
	l.wallets[addr] = &walletState{members: members, threshold: threshold}
	l.mtx.Unlock()

	return addr
}

func singleKeyAddress(pub []byte) string {
	h := sha3.New256()
	h.Write(pub)
	h.Write([]byte{0x00})
	return hex.EncodeToString(h.Sum(nil))
}

func walletAddress(members [][]byte, threshold int) string {
	h := sha3.New256()
	for _, pub := range members {
		h.Write(pub)
	}
	h.Write([]byte{byte(threshold), 0x01})
	return hex.EncodeToString(h.Sum(nil))
}

// bitmapIndices returns the set bits of a 4 byte bitmap, most significant
// bit of the first byte being member 0.
func bitmapIndices(bitmap []byte) []int {
	var indices []int
	for i := 0; i < len(bitmap)*8; i++ {
		if bitmap[i/8]&(0x80>>(i%8)) != 0 {
			indices = append(indices, i)
		}
	}
	return indices
}

// verifySignature checks sig over msg and that the signing keys authorize
// sender.  The caller must hold the mutex.
func (l *Ledger) verifySignature(sender string, sig map[string]interface{},
	msg []byte) error {

	switch sig["type"] {
	case "ed25519_signature":
		pub := decodeHex(sig["public_key"])
		if len(pub) != ed25519.PublicKeySize ||
			!ed25519.Verify(pub, msg, decodeHex(sig["signature"])) {

			return fmt.Errorf("INVALID_SIGNATURE")
		}
		if singleKeyAddress(pub) != sender {
			return fmt.Errorf("INVALID_AUTH_KEY")
		}
		return nil

	case "multi_ed25519_signature":
		pubs, _ := sig["public_keys"].([]interface{})
		sigs, _ := sig["signatures"].([]interface{})
		threshold, _ := sig["threshold"].(float64)
		bitmap := decodeHex(sig["bitmap"])

		popcount := 0
		for _, b := range bitmap {
			popcount += bits.OnesCount8(b)
		}
		k := int(threshold)
		if len(bitmap) != 4 || k == 0 || popcount != k ||
			len(pubs) != k || len(sigs) != k {

			return fmt.Errorf("INVALID_AUTH_KEY")
		}

		keys := make([][]byte, k)
		for i := range pubs {
			keys[i] = decodeHex(pubs[i])
			if len(keys[i]) != ed25519.PublicKeySize ||
				!ed25519.Verify(keys[i], msg, decodeHex(sigs[i])) {

				return fmt.Errorf("INVALID_SIGNATURE")
			}
		}

		// Unregistered senders are all-of-n wallets whose membership
		// is exactly the signers.
		wallet, ok := l.wallets[sender]
		if !ok {
			wallet = &walletState{members: keys, threshold: k}
		}
		if wallet.threshold != k ||
			walletAddress(wallet.members, k) != sender {

			return fmt.Errorf("INVALID_AUTH_KEY")
		}
		for j, idx := range bitmapIndices(bitmap) {
			if idx >= len(wallet.members) ||
				!bytes.Equal(wallet.members[idx], keys[j]) {

				return fmt.Errorf("INVALID_AUTH_KEY")
			}
		}
		return nil

	default:
		return fmt.Errorf("UNKNOWN_SIGNATURE_TYPE")
	}
}

func (l *Ledger) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		reject(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	body, err := readBody(r)
	if err != nil {
		reject(w, http.StatusBadRequest, "bad body: %v", err)
		return
	}
	sig, ok := body["signature"].(map[string]interface{})
	if !ok {
		reject(w, http.StatusBadRequest, "missing signature")
		return
	}

	sender, _ := body["sender"].(string)
	seqStr, _ := body["sequence_number"].(string)
	seq, _ := strconv.ParseUint(seqStr, 10, 64)

	l.mtx.Lock()
	defer l.mtx.Unlock()

	err = l.verifySignature(normalize(sender), sig, signingMessage(body))
	if err != nil {
		reject(w, http.StatusBadRequest, "%v", err)
		return
	}

	acct, ok := l.accounts[normalize(sender)]
	if !ok {
		reject(w, http.StatusBadRequest, "SENDING_ACCOUNT_DOES_NOT_EXIST")
		return
	}
	if seq != acct.sequence {
		reject(w, http.StatusBadRequest, "SEQUENCE_NUMBER_TOO_OLD")
		return
	}

	if payload, ok := body["payload"].(map[string]interface{}); ok {
		args, _ := payload["arguments"].([]interface{})
		if len(args) == 2 {
			to, _ := args[0].(string)
			amountStr, _ := args[1].(string)
			amount, _ := strconv.ParseUint(amountStr, 10, 64)
			if amount > acct.balance {
				reject(w, http.StatusBadRequest,
					"INSUFFICIENT_BALANCE")
				return
			}
			dest, ok := l.accounts[normalize(to)]
			if !ok {
				dest = &accountState{}
				l.accounts[normalize(to)] = dest
			}
			acct.balance -= amount
			dest.balance += amount
		}
	}

	digest := sha3.Sum256(signingMessage(body))
	hash := "0x" + hex.EncodeToString(digest[:])
	l.txs[hash] = &transaction{
		Type: "user_transaction", Hash: hash, SequenceNumber: seqStr,
		Success: true, VMStatus: "Executed successfully",
	}
	acct.sent = append(acct.sent, hash)
	acct.sequence++
	l.Submissions++

	writeJSON(w, http.StatusAccepted, map[string]string{
		"type":            "pending_transaction",
		"hash":            hash,
		"sequence_number": seqStr,
	})
}

func (l *Ledger) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	hash := strings.TrimPrefix(r.URL.Path, "/transactions/")

	l.mtx.Lock()
	defer l.mtx.Unlock()

	tx, ok := l.txs[hash]
	if !ok {
		reject(w, http.StatusNotFound, "transaction %s not found", hash)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}
