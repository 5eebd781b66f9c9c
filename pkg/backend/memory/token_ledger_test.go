package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTokenLedgerMintAndBalance(t *testing.T) {
	ledger := NewTokenLedger("TT", 18)

	assert.Equal(t, "TT", ledger.Symbol())
	assert.Equal(t, int32(18), ledger.Decimals())
	assert.True(t, ledger.BalanceOf("alice").IsZero())

	ledger.Mint("alice", dec("1000"))
	ledger.Mint("alice", dec("500"))

	assert.True(t, ledger.BalanceOf("alice").Equal(dec("1500")))
}

func TestEscrowTransfers(t *testing.T) {
	ctx := context.Background()
	ledger := NewTokenLedger("TT", 18)
	escrow := ledger.Escrow("escrow:TT/USD")

	ledger.Mint("alice", dec("1000"))

	require.NoError(t, escrow.TransferIn(ctx, "alice", dec("600")))
	assert.True(t, ledger.BalanceOf("alice").Equal(dec("400")))
	assert.True(t, ledger.BalanceOf("escrow:TT/USD").Equal(dec("600")))

	require.NoError(t, escrow.TransferOut(ctx, "bob", dec("250")))
	assert.True(t, ledger.BalanceOf("bob").Equal(dec("250")))
	assert.True(t, ledger.BalanceOf("escrow:TT/USD").Equal(dec("350")))
}

func TestEscrowTransferFailures(t *testing.T) {
	ctx := context.Background()
	ledger := NewTokenLedger("TT", 18)
	escrow := ledger.Escrow("escrow:TT/USD")

	ledger.Mint("alice", dec("100"))

	err := escrow.TransferIn(ctx, "alice", dec("101"))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	err = escrow.TransferOut(ctx, "alice", dec("1"))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	err = escrow.TransferIn(ctx, "alice", dec("-5"))
	assert.ErrorIs(t, err, ErrNegativeAmount)

	// failed transfers leave balances untouched
	assert.True(t, ledger.BalanceOf("alice").Equal(dec("100")))
	assert.True(t, ledger.BalanceOf("escrow:TT/USD").IsZero())
}
