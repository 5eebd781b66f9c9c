package ramp

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezcrow/ramp/pkg/backend/memory"
	"github.com/ezcrow/ramp/pkg/core"
)

const (
	owner = "0x0000000000000000000000000000000000000001"
	alice = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	bob   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func tokens(n int64) decimal.Decimal {
	return decimal.NewFromInt(n).Shift(18)
}

func fiat(n int64) decimal.Decimal {
	return decimal.NewFromInt(n).Shift(3)
}

func fv(priceWhole, tokensWhole int64) decimal.Decimal {
	return core.FiatValue(fiat(priceWhole), tokens(tokensWhole), 3, 18)
}

// newTestManager builds a manager with a TT/USD pair, funds alice and bob
// and whitelists them for USD
func newTestManager(t *testing.T) (*Manager, *memory.TokenLedger) {
	t.Helper()
	ctx := context.Background()

	m := NewManager(Config{Owner: owner, MaxQueryItems: 100})

	ledger := memory.NewTokenLedger("TT", 18)
	ledger.Mint(alice, tokens(100000))
	ledger.Mint(bob, tokens(100000))

	require.NoError(t, m.AddToken(ctx, owner, ledger))
	require.NoError(t, m.AddCurrencySettings(ctx, owner, "USD", 3))
	require.NoError(t, m.ConnectPair(ctx, owner, "TT", "USD", 1, 1))

	for _, user := range []string{alice, bob} {
		m.UpdateUser(user, "USD", "@"+user[:6], []string{"bank transfer"})
		require.NoError(t, m.WhitelistUser(ctx, owner, user, "USD"))
	}

	return m, ledger
}

func TestManagerOwnership(t *testing.T) {
	ctx := context.Background()
	m := NewManager(Config{Owner: owner})

	assert.True(t, m.IsOwner(owner))
	assert.False(t, m.IsOwner(alice))

	assert.ErrorIs(t, m.AddOwner(ctx, alice, alice), ErrNotOwner)

	require.NoError(t, m.AddOwner(ctx, owner, alice))
	assert.True(t, m.IsOwner(alice))

	require.NoError(t, m.RemoveOwner(ctx, alice, owner))
	assert.False(t, m.IsOwner(owner))

	assert.ErrorIs(t, m.RemoveOwner(ctx, alice, alice), ErrLastOwner)
}

func TestManagerRegistration(t *testing.T) {
	ctx := context.Background()
	m := NewManager(Config{Owner: owner})
	ledger := memory.NewTokenLedger("TT", 18)

	assert.ErrorIs(t, m.AddToken(ctx, alice, ledger), ErrNotOwner)
	require.NoError(t, m.AddToken(ctx, owner, ledger))
	assert.ErrorIs(t, m.AddToken(ctx, owner, ledger), ErrTokenExists)

	require.NoError(t, m.AddCurrencySettings(ctx, owner, "USD", 3))
	assert.ErrorIs(t, m.AddCurrencySettings(ctx, owner, "USD", 2), ErrCurrencyExists)

	assert.ErrorIs(t, m.ConnectPair(ctx, owner, "TT", "EUR", 1, 1), ErrCurrencyNotFound)
	assert.ErrorIs(t, m.ConnectPair(ctx, owner, "XX", "USD", 1, 1), ErrTokenNotFound)

	require.NoError(t, m.ConnectPair(ctx, owner, "TT", "USD", 1, 1))
	assert.ErrorIs(t, m.ConnectPair(ctx, owner, "TT", "USD", 1, 1), ErrPairExists)

	assert.Equal(t, []string{"TT/USD"}, m.ListPairs())

	_, err := m.Pair("TT", "USD")
	require.NoError(t, err)
	_, err = m.Pair("TT", "EUR")
	assert.ErrorIs(t, err, ErrPairNotFound)

	require.NoError(t, m.SetCurrencyDecimals(ctx, owner, "USD", 2))
	assert.ErrorIs(t, m.SetCurrencyDecimals(ctx, owner, "EUR", 2), ErrCurrencyNotFound)
}

func TestManagerListingEntryGuards(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	t.Run("requires whitelisting", func(t *testing.T) {
		stranger := "0xcccccccccccccccccccccccccccccccccccccccc"
		_, err := m.CreateListing(ctx, "TT", "USD", core.Buy, fiat(1), tokens(100), fv(1, 10), fv(1, 100), stranger, 0)
		assert.ErrorIs(t, err, ErrUserNotWhitelisted)
	})

	t.Run("requires a connected pair", func(t *testing.T) {
		m.UpdateUser(alice, "EUR", "@alice", nil)
		require.NoError(t, m.WhitelistUser(ctx, owner, alice, "EUR"))

		_, err := m.CreateListing(ctx, "TT", "EUR", core.Buy, fiat(1), tokens(100), fv(1, 10), fv(1, 100), alice, 0)
		assert.ErrorIs(t, err, ErrPairNotFound)
	})

	t.Run("consumes nonces", func(t *testing.T) {
		_, err := m.CreateListing(ctx, "TT", "USD", core.Buy, fiat(1), tokens(100), fv(1, 10), fv(1, 100), alice, 0)
		require.NoError(t, err)

		_, err = m.CreateListing(ctx, "TT", "USD", core.Buy, fiat(1), tokens(100), fv(1, 10), fv(1, 100), alice, 0)
		assert.ErrorIs(t, err, ErrInvalidNonce)

		_, err = m.CreateListing(ctx, "TT", "USD", core.Buy, fiat(1), tokens(100), fv(1, 10), fv(1, 100), alice, 1)
		require.NoError(t, err)
	})
}

func TestManagerOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	m, ledger := newTestManager(t)

	listingID, err := m.CreateListing(ctx, "TT", "USD", core.Buy, fiat(1), tokens(5000), fv(1, 5000), fv(1, 5000), alice, 0)
	require.NoError(t, err)

	orderID, err := m.CreateOrder(ctx, "TT", "USD", listingID, tokens(5000), bob, 0)
	require.NoError(t, err)

	require.NoError(t, m.AcceptOrder(ctx, "TT", "USD", orderID, alice, 1))
	require.NoError(t, m.AcceptOrder(ctx, "TT", "USD", orderID, bob, 1))
	require.NoError(t, m.AcceptOrder(ctx, "TT", "USD", orderID, alice, 2))
	require.NoError(t, m.AcceptOrder(ctx, "TT", "USD", orderID, bob, 2))

	pair, err := m.Pair("TT", "USD")
	require.NoError(t, err)

	order, err := pair.GetOrder(orderID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, order.CurrentStatus())

	assert.True(t, ledger.BalanceOf(alice).Equal(tokens(105000)))
	assert.True(t, ledger.BalanceOf(bob).Equal(tokens(95000)))
}

func TestManagerDisputeArbitration(t *testing.T) {
	ctx := context.Background()
	m, ledger := newTestManager(t)

	listingID, err := m.CreateListing(ctx, "TT", "USD", core.Buy, fiat(1), tokens(5000), fv(1, 5000), fv(1, 5000), alice, 0)
	require.NoError(t, err)
	orderID, err := m.CreateOrder(ctx, "TT", "USD", listingID, tokens(5000), bob, 0)
	require.NoError(t, err)

	require.NoError(t, m.AcceptOrder(ctx, "TT", "USD", orderID, alice, 1))
	require.NoError(t, m.AcceptOrder(ctx, "TT", "USD", orderID, bob, 1))
	require.NoError(t, m.AcceptOrder(ctx, "TT", "USD", orderID, alice, 2))
	require.NoError(t, m.RejectOrder(ctx, "TT", "USD", orderID, bob, 2))

	// only owners arbitrate
	assert.ErrorIs(t, m.AcceptDispute(ctx, "TT", "USD", orderID, alice), ErrNotOwner)
	assert.ErrorIs(t, m.RejectDispute(ctx, "TT", "USD", orderID, bob), ErrNotOwner)

	require.NoError(t, m.AcceptDispute(ctx, "TT", "USD", orderID, owner))

	pair, err := m.Pair("TT", "USD")
	require.NoError(t, err)
	order, err := pair.GetOrder(orderID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCancelled, order.CurrentStatus())
	assert.True(t, ledger.BalanceOf(bob).Equal(tokens(100000)))
}

func TestManagerCrossPairListingMove(t *testing.T) {
	ctx := context.Background()
	m, ledger := newTestManager(t)

	require.NoError(t, m.AddCurrencySettings(ctx, owner, "EUR", 2))
	require.NoError(t, m.ConnectPair(ctx, owner, "TT", "EUR", 1, 1))

	listingID, err := m.CreateListing(ctx, "TT", "USD", core.Sell, fiat(1), tokens(1000), fv(1, 100), fv(1, 1000), alice, 0)
	require.NoError(t, err)
	require.True(t, ledger.BalanceOf("escrow:TT/USD").Equal(tokens(1000)))

	eurPrice := decimal.NewFromInt(1).Shift(2)
	eurMin := core.FiatValue(eurPrice, tokens(100), 2, 18)
	eurMax := core.FiatValue(eurPrice, tokens(1000), 2, 18)

	t.Run("destination currency requires whitelisting", func(t *testing.T) {
		_, err := m.UpdateListing(ctx, "TT", "USD", listingID, "TT", "EUR", core.Sell, eurPrice, tokens(1000), eurMin, eurMax, alice, 1)
		assert.ErrorIs(t, err, ErrUserNotWhitelisted)
	})

	m.UpdateUser(alice, "EUR", "@alice", nil)
	require.NoError(t, m.WhitelistUser(ctx, owner, alice, "EUR"))

	t.Run("malformed destination bounds keep the source listing", func(t *testing.T) {
		badMax := core.FiatValue(eurPrice, tokens(2000), 2, 18)
		_, err := m.UpdateListing(ctx, "TT", "USD", listingID, "TT", "EUR", core.Sell, eurPrice, tokens(1000), eurMin, badMax, alice, 2)
		assert.ErrorIs(t, err, core.ErrMaxAboveTotal)

		usdPair, err := m.Pair("TT", "USD")
		require.NoError(t, err)
		listing, err := usdPair.GetListing(listingID)
		require.NoError(t, err)
		assert.False(t, listing.IsDeleted())
		assert.True(t, ledger.BalanceOf("escrow:TT/USD").Equal(tokens(1000)))
	})

	newID, err := m.UpdateListing(ctx, "TT", "USD", listingID, "TT", "EUR", core.Sell, eurPrice, tokens(1000), eurMin, eurMax, alice, 3)
	require.NoError(t, err)

	// escrow moved from the source pair's account to the destination's
	assert.True(t, ledger.BalanceOf("escrow:TT/USD").IsZero())
	assert.True(t, ledger.BalanceOf("escrow:TT/EUR").Equal(tokens(1000)))

	usdPair, err := m.Pair("TT", "USD")
	require.NoError(t, err)
	old, err := usdPair.GetListing(listingID)
	require.NoError(t, err)
	assert.True(t, old.IsDeleted())

	eurPair, err := m.Pair("TT", "EUR")
	require.NoError(t, err)
	moved, err := eurPair.GetListing(newID)
	require.NoError(t, err)
	assert.Equal(t, alice, moved.Creator())
	assert.False(t, moved.IsDeleted())
}

func TestManagerUserData(t *testing.T) {
	m, _ := newTestManager(t)

	// the user and owners see private fields
	private, err := m.UserData(alice, alice, "USD")
	require.NoError(t, err)
	assert.NotEmpty(t, private.TelegramHandle)
	assert.NotEmpty(t, private.PaymentMethods)

	asOwner, err := m.UserData(owner, alice, "USD")
	require.NoError(t, err)
	assert.NotEmpty(t, asOwner.TelegramHandle)

	// everyone else sees the public projection
	public, err := m.UserData(bob, alice, "USD")
	require.NoError(t, err)
	assert.Empty(t, public.TelegramHandle)
	assert.Empty(t, public.PaymentMethods)
}
