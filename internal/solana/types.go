package solana

import (
	"fmt"
	"math"
	"strconv"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// AccountKey is one entry of a parsed message's account list.
type AccountKey struct {
	Pubkey   string
	Signer   bool
	Writable bool
}

// TokenBalance is an SPL token account balance snapshot from transaction meta.
type TokenBalance struct {
	AccountIndex int
	Mint         string
	Owner        string
	ProgramID    string
	Amount       string // raw integer amount
	Decimals     uint8
}

// UIAmount returns the balance scaled by the mint decimals.
func (b TokenBalance) UIAmount() (float64, error) {
	raw, err := strconv.ParseUint(b.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("token balance of account %d: %w", b.AccountIndex, err)
	}
	return float64(raw) / math.Pow10(int(b.Decimals)), nil
}

// Instruction is a top-level or inner instruction. Parsed instructions carry
// Type and Info; unparsed ones carry Accounts and Data.
type Instruction struct {
	ProgramID string
	Program   string // e.g. "spl-token", "system"
	Type      string // e.g. "transfer", "transferChecked", "mintTo", "burn"
	Info      map[string]interface{}
	Accounts  []string
	Data      string
}

// InfoString returns a string field of the parsed info, or "".
func (ix Instruction) InfoString(key string) string {
	if ix.Info == nil {
		return ""
	}
	s, _ := ix.Info[key].(string)
	return s
}

// InnerInstructions are the CPI instructions invoked by top-level instruction Index.
type InnerInstructions struct {
	Index        int
	Instructions []Instruction
}

// Failed reports whether the transaction errored on-chain.
func (tx *Transaction) Failed() bool {
	return tx.Meta != nil && tx.Meta.Err != nil
}

// Signers returns the addresses that signed the transaction.
func (tx *Transaction) Signers() []string {
	if tx.Message == nil {
		return nil
	}
	var signers []string
	for _, k := range tx.Message.AccountKeys {
		if k.Signer {
			signers = append(signers, k.Pubkey)
		}
	}
	return signers
}

// IsSigner reports whether address signed the transaction.
func (tx *Transaction) IsSigner(address string) bool {
	for _, s := range tx.Signers() {
		if s == address {
			return true
		}
	}
	return false
}

// AccountIndex returns the position of address in the account list, or -1.
func (tx *Transaction) AccountIndex(address string) int {
	if tx.Message == nil {
		return -1
	}
	for i, k := range tx.Message.AccountKeys {
		if k.Pubkey == address {
			return i
		}
	}
	return -1
}

// AccountAt returns the address at index i, or "".
func (tx *Transaction) AccountAt(i int) string {
	if tx.Message == nil || i < 0 || i >= len(tx.Message.AccountKeys) {
		return ""
	}
	return tx.Message.AccountKeys[i].Pubkey
}

// AllInstructions returns top-level instructions followed by their inner
// instructions, in execution order.
func (tx *Transaction) AllInstructions() []Instruction {
	if tx.Message == nil {
		return nil
	}

	inner := make(map[int][]Instruction)
	if tx.Meta != nil {
		for _, group := range tx.Meta.InnerInstructions {
			inner[group.Index] = append(inner[group.Index], group.Instructions...)
		}
	}

	var all []Instruction
	for i, ix := range tx.Message.Instructions {
		all = append(all, ix)
		all = append(all, inner[i]...)
	}
	return all
}

// LamportDelta returns post - pre lamports of address.
// ok is false if the address is not in the account list or balances are missing.
func (tx *Transaction) LamportDelta(address string) (delta int64, ok bool) {
	idx := tx.AccountIndex(address)
	if idx < 0 || tx.Meta == nil {
		return 0, false
	}
	if idx >= len(tx.Meta.PreBalances) || idx >= len(tx.Meta.PostBalances) {
		return 0, false
	}
	return int64(tx.Meta.PostBalances[idx]) - int64(tx.Meta.PreBalances[idx]), true
}

// TokenDelta sums post - pre UI balances of mint across token accounts that
// are owned by owner or listed in accounts. A balance missing on one side
// counts as zero (account created or closed in the transaction).
// ok is false if no matching token account appears on either side. A matching
// balance with an unparsable amount is an error.
func (tx *Transaction) TokenDelta(owner, mint string, accounts []string) (delta float64, ok bool, err error) {
	if tx.Meta == nil {
		return 0, false, nil
	}

	match := func(b TokenBalance) bool {
		if b.Mint != mint {
			return false
		}
		if b.Owner != "" && b.Owner == owner {
			return true
		}
		addr := tx.AccountAt(b.AccountIndex)
		for _, a := range accounts {
			if a == addr {
				return true
			}
		}
		return false
	}

	for _, b := range tx.Meta.PreTokenBalances {
		if !match(b) {
			continue
		}
		amount, err := b.UIAmount()
		if err != nil {
			return 0, false, fmt.Errorf("pre %w", err)
		}
		delta -= amount
		ok = true
	}
	for _, b := range tx.Meta.PostTokenBalances {
		if !match(b) {
			continue
		}
		amount, err := b.UIAmount()
		if err != nil {
			return 0, false, fmt.Errorf("post %w", err)
		}
		delta += amount
		ok = true
	}
	return delta, ok, nil
}

// TokenAccountsForMint returns addresses of token accounts in the transaction
// that hold mint according to pre/post token balances.
func (tx *Transaction) TokenAccountsForMint(mint string) map[string]struct{} {
	result := make(map[string]struct{})
	if tx.Meta == nil {
		return result
	}
	for _, list := range [][]TokenBalance{tx.Meta.PreTokenBalances, tx.Meta.PostTokenBalances} {
		for _, b := range list {
			if b.Mint == mint {
				if addr := tx.AccountAt(b.AccountIndex); addr != "" {
					result[addr] = struct{}{}
				}
			}
		}
	}
	return result
}
