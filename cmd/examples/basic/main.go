package main

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/ezcrow/ramp/pkg/backend/memory"
	"github.com/ezcrow/ramp/pkg/core"
	"github.com/ezcrow/ramp/pkg/logging"
	"github.com/ezcrow/ramp/pkg/ramp"
)

func main() {
	logging.Setup(logging.Config{Level: "info", Pretty: true})
	ctx := logging.WithRequestID(context.Background(), "basic-example")

	owner, _ := core.GenerateAddress()
	alice, _ := core.GenerateAddress()
	bob, _ := core.GenerateAddress()

	// Set up a manager with one TT/USD pair backed by an in-memory ledger
	manager := ramp.NewManager(ramp.Config{Owner: owner, MaxQueryItems: 100})

	ledger := memory.NewTokenLedger("TT", 18)
	ledger.Mint(alice, tokens(10000))
	ledger.Mint(bob, tokens(10000))

	must(manager.AddToken(ctx, owner, ledger))
	must(manager.AddCurrencySettings(ctx, owner, "USD", 3))
	must(manager.ConnectPair(ctx, owner, "TT", "USD", 1, 1))

	// Whitelist both traders for USD
	manager.UpdateUser(alice, "USD", "@alice", []string{"bank transfer"})
	manager.UpdateUser(bob, "USD", "@bob", []string{"cash"})
	must(manager.WhitelistUser(ctx, owner, alice, "USD"))
	must(manager.WhitelistUser(ctx, owner, bob, "USD"))

	// Alice wants to buy 5000 TT at 1.000 USD per token
	price := fiat(1)
	amount := tokens(5000)
	total := core.FiatValue(price, amount, 3, 18)

	listingID, err := manager.CreateListing(ctx, "TT", "USD", core.Buy, price, amount, total, total, alice, 0)
	must(err)
	fmt.Printf("Created listing %d\n", listingID)

	// Bob takes the whole listing
	orderID, err := manager.CreateOrder(ctx, "TT", "USD", listingID, amount, bob, 0)
	must(err)
	fmt.Printf("Created order %d\n", orderID)

	// Walk the confirmation protocol: confirm, deposit, pay, release
	must(manager.AcceptOrder(ctx, "TT", "USD", orderID, alice, 1))
	must(manager.AcceptOrder(ctx, "TT", "USD", orderID, bob, 1))
	must(manager.AcceptOrder(ctx, "TT", "USD", orderID, alice, 2))
	must(manager.AcceptOrder(ctx, "TT", "USD", orderID, bob, 2))

	pair, err := manager.Pair("TT", "USD")
	must(err)

	order, err := pair.GetOrder(orderID)
	must(err)

	fmt.Printf("Order: %s\n", order)
	fmt.Printf("Alice now holds %s TT smallest units\n", ledger.BalanceOf(alice))
	fmt.Printf("Bob now holds   %s TT smallest units\n", ledger.BalanceOf(bob))
}

func tokens(n int64) decimal.Decimal {
	return decimal.NewFromInt(n).Shift(18)
}

func fiat(n int64) decimal.Decimal {
	return decimal.NewFromInt(n).Shift(3)
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
