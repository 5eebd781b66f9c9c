// Package memory provides an in-memory token ledger with escrow accounts,
// used as the custody backend for trading pairs.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ezcrow/ramp/pkg/core"
)

// Errors
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNegativeAmount      = errors.New("transfer amount is negative")
)

// TokenLedger tracks balances of one token across accounts. Escrow accounts
// are ordinary accounts named after their pair, so the whole custody flow is
// observable through BalanceOf.
type TokenLedger struct {
	symbol   string
	decimals int32

	mu       sync.Mutex
	balances map[string]decimal.Decimal
}

// NewTokenLedger creates an empty ledger for one token
func NewTokenLedger(symbol string, decimals int32) *TokenLedger {
	return &TokenLedger{
		symbol:   symbol,
		decimals: decimals,
		balances: make(map[string]decimal.Decimal),
	}
}

// Symbol returns the token symbol
func (t *TokenLedger) Symbol() string {
	return t.symbol
}

// Decimals returns the token's smallest-unit scaling
func (t *TokenLedger) Decimals() int32 {
	return t.decimals
}

// Mint credits amount to account out of thin air
func (t *TokenLedger) Mint(account string, amount decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[account] = t.balances[account].Add(amount)
}

// BalanceOf returns the current balance of account
func (t *TokenLedger) BalanceOf(account string) decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[account]
}

// transfer moves amount between two accounts atomically
func (t *TokenLedger) transfer(from, to string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	balance := t.balances[from]
	if balance.LessThan(amount) {
		return fmt.Errorf("%w: %s has %s %s, needs %s", ErrInsufficientBalance, from, balance, t.symbol, amount)
	}

	t.balances[from] = balance.Sub(amount)
	t.balances[to] = t.balances[to].Add(amount)
	return nil
}

// Escrow returns a custody handle that moves tokens between parties and the
// named escrow account
func (t *TokenLedger) Escrow(account string) core.Custody {
	return &escrowAccount{ledger: t, account: account}
}

type escrowAccount struct {
	ledger  *TokenLedger
	account string
}

// TransferIn pulls amount from the party into escrow
func (e *escrowAccount) TransferIn(_ context.Context, from string, amount decimal.Decimal) error {
	return e.ledger.transfer(from, e.account, amount)
}

// TransferOut releases amount from escrow to the party
func (e *escrowAccount) TransferOut(_ context.Context, to string, amount decimal.Decimal) error {
	return e.ledger.transfer(e.account, to, amount)
}

// Ensure escrowAccount implements Custody
var _ core.Custody = (*escrowAccount)(nil)
