package stub

import (
	"strconv"

	"github.com/HeroDappDev/Claude-Fun/internal/solana"
)

// TxBuilder assembles parsed transactions for tests.
type TxBuilder struct {
	tx    *solana.Transaction
	index map[string]int
}

// NewTx starts a successful transaction with the given signature.
func NewTx(signature string, slot int64) *TxBuilder {
	return &TxBuilder{
		tx: &solana.Transaction{
			Signature: signature,
			Slot:      slot,
			BlockTime: 1_700_000_000 + slot,
			Meta:      &solana.TransactionMeta{Fee: 5000},
			Message:   &solana.TransactionMessage{},
		},
		index: make(map[string]int),
	}
}

// account returns the index of address, appending it if new.
func (b *TxBuilder) account(address string, signer bool) int {
	if i, ok := b.index[address]; ok {
		if signer {
			b.tx.Message.AccountKeys[i].Signer = true
		}
		return i
	}
	i := len(b.tx.Message.AccountKeys)
	b.index[address] = i
	b.tx.Message.AccountKeys = append(b.tx.Message.AccountKeys, solana.AccountKey{
		Pubkey:   address,
		Signer:   signer,
		Writable: true,
	})
	b.tx.Meta.PreBalances = append(b.tx.Meta.PreBalances, 0)
	b.tx.Meta.PostBalances = append(b.tx.Meta.PostBalances, 0)
	return i
}

// Signer marks address as a signer.
func (b *TxBuilder) Signer(address string) *TxBuilder {
	b.account(address, true)
	return b
}

// Lamports sets pre/post native balances of address.
func (b *TxBuilder) Lamports(address string, pre, post uint64) *TxBuilder {
	i := b.account(address, false)
	b.tx.Meta.PreBalances[i] = pre
	b.tx.Meta.PostBalances[i] = post
	return b
}

// TokenBalance records pre/post raw balances of a token account.
// A negative pre or post omits that side (account created or closed).
func (b *TxBuilder) TokenBalance(account, owner, mint string, decimals uint8, pre, post int64) *TxBuilder {
	i := b.account(account, false)
	mk := func(amount int64) solana.TokenBalance {
		return solana.TokenBalance{
			AccountIndex: i,
			Mint:         mint,
			Owner:        owner,
			ProgramID:    solana.TokenProgramID,
			Amount:       strconv.FormatInt(amount, 10),
			Decimals:     decimals,
		}
	}
	if pre >= 0 {
		b.tx.Meta.PreTokenBalances = append(b.tx.Meta.PreTokenBalances, mk(pre))
	}
	if post >= 0 {
		b.tx.Meta.PostTokenBalances = append(b.tx.Meta.PostTokenBalances, mk(post))
	}
	return b
}

// Instruction appends a parsed top-level instruction.
func (b *TxBuilder) Instruction(programID, ixType string, info map[string]interface{}) *TxBuilder {
	b.tx.Message.Instructions = append(b.tx.Message.Instructions, parsed(programID, ixType, info))
	return b
}

// Inner appends a parsed inner instruction under top-level instruction index.
func (b *TxBuilder) Inner(index int, programID, ixType string, info map[string]interface{}) *TxBuilder {
	for i := range b.tx.Meta.InnerInstructions {
		if b.tx.Meta.InnerInstructions[i].Index == index {
			b.tx.Meta.InnerInstructions[i].Instructions = append(b.tx.Meta.InnerInstructions[i].Instructions, parsed(programID, ixType, info))
			return b
		}
	}
	b.tx.Meta.InnerInstructions = append(b.tx.Meta.InnerInstructions, solana.InnerInstructions{
		Index:        index,
		Instructions: []solana.Instruction{parsed(programID, ixType, info)},
	})
	return b
}

// Raw appends an unparsed top-level instruction, e.g. a custom curve program.
func (b *TxBuilder) Raw(programID string, accounts ...string) *TxBuilder {
	b.tx.Message.Instructions = append(b.tx.Message.Instructions, solana.Instruction{
		ProgramID: programID,
		Accounts:  accounts,
	})
	return b
}

// Failed marks the transaction as errored on-chain.
func (b *TxBuilder) Failed(err interface{}) *TxBuilder {
	b.tx.Meta.Err = err
	return b
}

// Build returns the assembled transaction.
func (b *TxBuilder) Build() *solana.Transaction {
	return b.tx
}

func parsed(programID, ixType string, info map[string]interface{}) solana.Instruction {
	program := ""
	if solana.IsTokenProgram(programID) {
		program = "spl-token"
	} else if programID == solana.SystemProgramID {
		program = "system"
	}
	return solana.Instruction{
		ProgramID: programID,
		Program:   program,
		Type:      ixType,
		Info:      info,
	}
}
