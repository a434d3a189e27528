package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBalance_UIAmount(t *testing.T) {
	amount, err := TokenBalance{Amount: "1500000", Decimals: 6}.UIAmount()
	require.NoError(t, err)
	assert.Equal(t, 1.5, amount)

	amount, err = TokenBalance{Amount: "42", Decimals: 0}.UIAmount()
	require.NoError(t, err)
	assert.Equal(t, 42.0, amount)

	for _, bad := range []string{"garbage", "", "-5", "1.5"} {
		_, err = TokenBalance{Amount: bad, Decimals: 6}.UIAmount()
		assert.Error(t, err, "amount %q", bad)
	}
}

func TestTransaction_TokenDelta(t *testing.T) {
	tx := &Transaction{
		Message: &TransactionMessage{
			AccountKeys: []AccountKey{
				{Pubkey: "wallet", Signer: true},
				{Pubkey: "ata"},
				{Pubkey: "other-ata"},
			},
		},
		Meta: &TransactionMeta{
			PreTokenBalances: []TokenBalance{
				{AccountIndex: 1, Mint: "mint", Amount: "5000", Decimals: 3},
				{AccountIndex: 2, Mint: "mint", Owner: "someone", Amount: "9000", Decimals: 3},
			},
			PostTokenBalances: []TokenBalance{
				{AccountIndex: 2, Mint: "mint", Owner: "someone", Amount: "14000", Decimals: 3},
			},
		},
	}

	// Owner missing on the balance; matched through the supplied account list.
	// Account closed in the transaction, so post counts as zero.
	delta, ok, err := tx.TokenDelta("wallet", "mint", []string{"ata"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, -5.0, delta, 1e-12)

	delta, ok, err = tx.TokenDelta("someone", "mint", nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 5.0, delta, 1e-12)

	_, ok, err = tx.TokenDelta("wallet", "other-mint", []string{"ata"})
	require.NoError(t, err)
	assert.False(t, ok)

	accounts := tx.TokenAccountsForMint("mint")
	assert.Contains(t, accounts, "ata")
	assert.Contains(t, accounts, "other-ata")
}

func TestTransaction_TokenDelta_MalformedAmount(t *testing.T) {
	tx := &Transaction{
		Message: &TransactionMessage{AccountKeys: []AccountKey{{Pubkey: "wallet", Signer: true}, {Pubkey: "ata"}}},
		Meta: &TransactionMeta{
			PreTokenBalances:  []TokenBalance{{AccountIndex: 1, Mint: "mint", Owner: "wallet", Amount: "not-a-number", Decimals: 6}},
			PostTokenBalances: []TokenBalance{{AccountIndex: 1, Mint: "mint", Owner: "wallet", Amount: "0", Decimals: 6}},
		},
	}

	_, ok, err := tx.TokenDelta("wallet", "mint", nil)
	assert.Error(t, err)
	assert.False(t, ok)

	// Balances of other mints are not parsed
	_, ok, err = tx.TokenDelta("wallet", "other-mint", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransaction_LamportDelta_Missing(t *testing.T) {
	tx := &Transaction{
		Message: &TransactionMessage{AccountKeys: []AccountKey{{Pubkey: "a"}}},
		Meta:    &TransactionMeta{},
	}
	_, ok := tx.LamportDelta("a")
	assert.False(t, ok)

	_, ok = tx.LamportDelta("b")
	assert.False(t, ok)
}

func TestTransaction_AllInstructions_Order(t *testing.T) {
	tx := &Transaction{
		Message: &TransactionMessage{
			Instructions: []Instruction{{Type: "a"}, {Type: "b"}},
		},
		Meta: &TransactionMeta{
			InnerInstructions: []InnerInstructions{
				{Index: 1, Instructions: []Instruction{{Type: "b1"}, {Type: "b2"}}},
				{Index: 0, Instructions: []Instruction{{Type: "a1"}}},
			},
		},
	}

	var types []string
	for _, ix := range tx.AllInstructions() {
		types = append(types, ix.Type)
	}
	assert.Equal(t, []string{"a", "a1", "b", "b1", "b2"}, types)
}
