// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command coreprobe drives a wallet core through encoded requests the way a
// host does: it creates or imports an account, optionally funds it and
// transfers from it, then prints the resulting balance.
package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aptwallet/walletcore/core"
	"github.com/aptwallet/walletcore/corepb"
	"github.com/aptwallet/walletcore/internal/zero"
	"github.com/aptwallet/walletcore/ownedbuf"
	"github.com/aptwallet/walletcore/taskpool"
	"github.com/jessevdk/go-flags"
	"golang.org/x/term"
)

var newlineBytes = []byte{'\n'}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Stderr.Write(newlineBytes)
	os.Exit(1)
}

// Flags.
var opts = struct {
	core.Config `group:"Core Options"`

	ImportKey bool   `long:"importkey" description:"Prompt for a hex private key instead of generating one"`
	Fund      uint64 `long:"fund" description:"Amount to mint to the account through the faucet"`
	To        string `long:"to" description:"Address to transfer to"`
	Amount    uint64 `long:"amount" description:"Amount to transfer"`
	Backtrace bool   `long:"backtrace" description:"Print the core backtrace before exiting"`
}{
	Config: *core.DefaultConfig(),
}

// Parse and validate flags.
func init() {
	_, err := flags.Parse(&opts)
	if err != nil {
		os.Exit(1)
	}
	if err := opts.Config.Validate(); err != nil {
		fatalf("%v", err)
	}
	if opts.To != "" && opts.Amount == 0 {
		fatalf("--to requires a positive --amount")
	}
}

func main() {
	ctx, addInterruptHandler := interruptContext()
	if err := probe(ctx, addInterruptHandler); err != nil {
		fatalf("%v", err)
	}
}

// promptSecret reads a line from the terminal without echoing it.
func promptSecret(what string) ([]byte, error) {
	fmt.Printf("%s: ", what)
	fd := int(os.Stdin.Fd())
	input, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return nil, err
	}
	return bytes.TrimSpace(input), nil
}

// client reads responses out of the core's buffers.
type client struct {
	core  *core.Core
	arena *ownedbuf.Arena
}

func (c *client) take(buf ownedbuf.Buffer) (corepb.ResponseArm, error) {
	defer func() {
		if err := c.arena.Release(buf); err != nil {
			fmt.Fprintf(os.Stderr, "unable to release buffer: %v\n",
				err)
		}
	}()

	if buf.IsError() {
		msg, err := c.arena.ErrorText(buf)
		if err != nil {
			return nil, err
		}
		return nil, errors.New(msg)
	}
	b, err := c.arena.Bytes(buf)
	if err != nil {
		return nil, err
	}
	var resp corepb.Response
	if err := resp.Unmarshal(b); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func (c *client) sync(arm corepb.SyncRequest) (corepb.ResponseArm, error) {
	raw, err := (&corepb.Request{Sync: arm}).Marshal()
	if err != nil {
		return nil, err
	}
	buf, err := c.core.CallSync(raw)
	if err != nil {
		return nil, err
	}
	return c.take(buf)
}

func (c *client) async(ctx context.Context, arm corepb.AsyncRequest) (
	corepb.ResponseArm, error) {

	raw, err := (&corepb.Request{Async: arm}).Marshal()
	if err != nil {
		return nil, err
	}

	// Buffered so a callback firing after an interrupt never blocks a
	// pool goroutine.
	results := make(chan ownedbuf.Buffer, 1)
	cb := taskpool.NewCallback(func(b ownedbuf.Buffer) {
		results <- b
	})
	if err := c.core.CallAsync(raw, cb); err != nil {
		return nil, err
	}

	select {
	case buf := <-results:
		return c.take(buf)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func probe(ctx context.Context, addInterruptHandler func(func())) error {
	rt, err := core.StartRuntime(&opts.Config)
	if err != nil {
		return err
	}
	defer rt.Stop()

	c, err := core.New(&opts.Config, rt)
	if err != nil {
		return err
	}
	defer c.Close()
	addInterruptHandler(rt.Stop)

	cl := &client{core: c, arena: c.Arena()}

	var seed []byte
	if opts.ImportKey {
		input, err := promptSecret("Private key (hex)")
		if err != nil {
			return err
		}
		seed, err = hex.DecodeString(strings.TrimPrefix(
			string(input), "0x"))
		zero.Bytes(input)
		if err != nil {
			return fmt.Errorf("private key: %v", err)
		}
	}

	resp, err := cl.sync(&corepb.CreateAccountRequest{PrivateKey: seed})
	zero.Bytes(seed)
	if err != nil {
		return err
	}
	acct := resp.(*corepb.CreateAccountResponse)
	defer zero.Bytes(acct.Keypair)
	fmt.Printf("Address:    %s\nPublic key: %s\n", acct.Address,
		acct.PublicKey)

	if opts.Fund > 0 {
		resp, err := cl.async(ctx, &corepb.FundWalletRequest{
			Address: acct.Address,
			Amount:  opts.Fund,
		})
		if err != nil {
			return fmt.Errorf("fund: %v", err)
		}
		for _, hash := range resp.(*corepb.FundWalletResponse).Transactions {
			fmt.Printf("Funded in:  %s\n", hash)
		}
	}

	if opts.To != "" {
		resp, err := cl.async(ctx, &corepb.TransferRequest{
			Amount:      opts.Amount,
			AddressFrom: acct.Address,
			AddressTo:   opts.To,
			Keypair:     acct.Keypair,
		})
		if err != nil {
			return fmt.Errorf("transfer: %v", err)
		}
		tx := resp.(*corepb.TransferResponse).Transaction
		fmt.Printf("Submitted:  %s (sequence %s)\n", tx.Hash,
			tx.SequenceNumber)
	}

	resp, err = cl.async(ctx, &corepb.GetWalletBalanceRequest{
		Address: acct.Address,
	})
	if err != nil {
		return fmt.Errorf("balance: %v", err)
	}
	fmt.Printf("Balance:    %d\n",
		resp.(*corepb.GetWalletBalanceResponse).Balance)

	if opts.Backtrace {
		resp, err := cl.sync(&corepb.GetSyncBacktraceRequest{})
		if err != nil {
			return err
		}
		fmt.Println(resp.(*corepb.GetSyncBacktraceResponse).Text)
	}
	return nil
}
