package solana

import "context"

// RPCClient defines the Solana RPC reads the launchpad depends on.
type RPCClient interface {
	// GetTransaction retrieves the parsed effects of a transaction.
	// Returns nil, nil if the transaction is unknown at the configured commitment.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetSlot retrieves the current slot.
	GetSlot(ctx context.Context) (int64, error)
}

// Transaction represents a Solana transaction with jsonParsed effects.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix timestamp (seconds)
	Meta      *TransactionMeta
	Message   *TransactionMessage
}

// TransactionMeta contains transaction metadata.
type TransactionMeta struct {
	Err               interface{}
	Fee               uint64
	LogMessages       []string
	PreBalances       []uint64 // lamports, indexed like Message.AccountKeys
	PostBalances      []uint64
	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
	InnerInstructions []InnerInstructions
}

// TransactionMessage contains parsed transaction message.
type TransactionMessage struct {
	AccountKeys  []AccountKey
	Instructions []Instruction
}
