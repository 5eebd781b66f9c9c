// Package ramp wires trading pairs, tokens, currencies, the whitelist and
// nonce replay protection into one entry surface for user and owner actions.
package ramp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ezcrow/ramp/pkg/core"
	"github.com/ezcrow/ramp/pkg/index"
	"github.com/ezcrow/ramp/pkg/logging"
	"github.com/ezcrow/ramp/pkg/messaging"
)

// Errors
var (
	ErrNotOwner         = errors.New("caller is not an owner")
	ErrLastOwner        = errors.New("cannot remove the last owner")
	ErrTokenExists      = errors.New("token already added")
	ErrTokenNotFound    = errors.New("token not found")
	ErrCurrencyExists   = errors.New("currency already added")
	ErrCurrencyNotFound = errors.New("currency not found")
	ErrPairExists       = errors.New("pair already connected")
	ErrPairNotFound     = errors.New("pair not connected")
)

// Token is the custody provider for one token symbol
type Token interface {
	// Symbol returns the token symbol
	Symbol() string
	// Decimals returns the token's smallest-unit scaling
	Decimals() int32
	// Escrow returns a custody handle bound to the named escrow account
	Escrow(account string) core.Custody
}

// Config configures a Manager
type Config struct {
	// Owner is the initial member of the owner set
	Owner string
	// MaxQueryItems caps the page size of pair queries
	MaxQueryItems int
	// Events receives lifecycle events from every pair. Defaults to a
	// process-local recorder.
	Events messaging.EventSender
	// Nonces provides replay protection for user actions. Defaults to a
	// process-local store.
	Nonces NonceStore
}

// Manager is the single entry surface of the ramp. Owners administer tokens,
// currencies, pairs, the whitelist and disputes; whitelisted users create
// listings and orders and drive the confirmation protocol. Every mutating
// user action consumes a nonce, whether or not the action itself succeeds.
type Manager struct {
	mu         sync.RWMutex
	owners     map[string]bool
	tokens     map[string]Token
	currencies map[string]int32
	pairs      map[string]*core.Pair

	whitelist *Whitelist
	events    messaging.EventSender
	nonces    NonceStore

	maxQueryItems int
}

// NewManager creates a Manager with cfg.Owner as the sole owner
func NewManager(cfg Config) *Manager {
	events := cfg.Events
	if events == nil {
		events = messaging.NewMockEventSender()
	}
	nonces := cfg.Nonces
	if nonces == nil {
		nonces = NewMemoryNonceStore()
	}

	return &Manager{
		owners:        map[string]bool{cfg.Owner: true},
		tokens:        make(map[string]Token),
		currencies:    make(map[string]int32),
		pairs:         make(map[string]*core.Pair),
		whitelist:     NewWhitelist(),
		events:        events,
		nonces:        nonces,
		maxQueryItems: cfg.MaxQueryItems,
	}
}

// PairSymbol builds the canonical pair key, e.g. "TT/USD"
func PairSymbol(tokenSymbol, currencySymbol string) string {
	return tokenSymbol + "/" + currencySymbol
}

// IsOwner reports whether user is in the owner set
func (m *Manager) IsOwner(user string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.owners[user]
}

// AddOwner adds newOwner to the owner set
func (m *Manager) AddOwner(ctx context.Context, actor, newOwner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.owners[actor] {
		return fmt.Errorf("%w: %s", ErrNotOwner, actor)
	}

	m.owners[newOwner] = true
	logging.FromContext(ctx).Info().Str("owner", newOwner).Msg("Added owner")
	return nil
}

// RemoveOwner removes owner from the owner set. The set never becomes empty.
func (m *Manager) RemoveOwner(ctx context.Context, actor, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.owners[actor] {
		return fmt.Errorf("%w: %s", ErrNotOwner, actor)
	}
	if len(m.owners) == 1 && m.owners[owner] {
		return ErrLastOwner
	}

	delete(m.owners, owner)
	logging.FromContext(ctx).Info().Str("owner", owner).Msg("Removed owner")
	return nil
}

// AddToken registers a token custody provider under its symbol
func (m *Manager) AddToken(ctx context.Context, actor string, token Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.owners[actor] {
		return fmt.Errorf("%w: %s", ErrNotOwner, actor)
	}
	if _, exists := m.tokens[token.Symbol()]; exists {
		return fmt.Errorf("%w: %s", ErrTokenExists, token.Symbol())
	}

	m.tokens[token.Symbol()] = token
	logging.FromContext(ctx).Info().Str("token", token.Symbol()).Int32("decimals", token.Decimals()).Msg("Added token")
	return nil
}

// AddCurrencySettings registers a currency symbol with its decimals
func (m *Manager) AddCurrencySettings(ctx context.Context, actor, symbol string, decimals int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.owners[actor] {
		return fmt.Errorf("%w: %s", ErrNotOwner, actor)
	}
	if _, exists := m.currencies[symbol]; exists {
		return fmt.Errorf("%w: %s", ErrCurrencyExists, symbol)
	}

	m.currencies[symbol] = decimals
	logging.FromContext(ctx).Info().Str("currency", symbol).Int32("decimals", decimals).Msg("Added currency")
	return nil
}

// SetCurrencyDecimals changes a currency's decimals and propagates the new
// scaling to every connected pair on that currency
func (m *Manager) SetCurrencyDecimals(ctx context.Context, actor, symbol string, decimals int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.owners[actor] {
		return fmt.Errorf("%w: %s", ErrNotOwner, actor)
	}
	if _, exists := m.currencies[symbol]; !exists {
		return fmt.Errorf("%w: %s", ErrCurrencyNotFound, symbol)
	}

	m.currencies[symbol] = decimals
	for _, p := range m.pairs {
		if p.CurrencySymbol() == symbol {
			p.SetCurrencyDecimals(decimals)
		}
	}

	logging.FromContext(ctx).Info().Str("currency", symbol).Int32("decimals", decimals).Msg("Updated currency decimals")
	return nil
}

// ConnectPair creates the trading pair for a registered token and currency.
// Escrowed tokens live on an account named after the pair.
func (m *Manager) ConnectPair(ctx context.Context, actor, tokenSymbol, currencySymbol string, initialListingID, initialOrderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.owners[actor] {
		return fmt.Errorf("%w: %s", ErrNotOwner, actor)
	}

	token, ok := m.tokens[tokenSymbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, tokenSymbol)
	}
	currencyDecimals, ok := m.currencies[currencySymbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCurrencyNotFound, currencySymbol)
	}

	symbol := PairSymbol(tokenSymbol, currencySymbol)
	if _, exists := m.pairs[symbol]; exists {
		return fmt.Errorf("%w: %s", ErrPairExists, symbol)
	}

	m.pairs[symbol] = core.NewPair(core.PairConfig{
		Symbol:           symbol,
		TokenSymbol:      tokenSymbol,
		CurrencySymbol:   currencySymbol,
		TokenDecimals:    token.Decimals(),
		CurrencyDecimals: currencyDecimals,
		InitialListingID: initialListingID,
		InitialOrderID:   initialOrderID,
		MaxQueryItems:    m.maxQueryItems,
	}, token.Escrow("escrow:"+symbol), index.NewListings(), index.NewOrders(), m.events)

	logging.FromContext(ctx).Info().Str("pair", symbol).Msg("Connected pair")
	return nil
}

// Pair returns the connected pair for the token and currency
func (m *Manager) Pair(tokenSymbol, currencySymbol string) (*core.Pair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pair(tokenSymbol, currencySymbol)
}

func (m *Manager) pair(tokenSymbol, currencySymbol string) (*core.Pair, error) {
	p, ok := m.pairs[PairSymbol(tokenSymbol, currencySymbol)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPairNotFound, PairSymbol(tokenSymbol, currencySymbol))
	}
	return p, nil
}

// ListPairs returns the symbols of all connected pairs
func (m *Manager) ListPairs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	symbols := make([]string, 0, len(m.pairs))
	for symbol := range m.pairs {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// userEntry runs the shared preamble of every user action: resolve the pair
// and consume the nonce. The nonce burns even if the action later fails.
func (m *Manager) userEntry(ctx context.Context, tokenSymbol, currencySymbol, user string, nonce uint64) (*core.Pair, error) {
	m.mu.RLock()
	p, err := m.pair(tokenSymbol, currencySymbol)
	m.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if err := m.nonces.Use(ctx, user, nonce); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateListing creates a listing on behalf of a whitelisted creator
func (m *Manager) CreateListing(ctx context.Context, tokenSymbol, currencySymbol string, action core.ListingAction, price, totalAmount, minPerOrder, maxPerOrder decimal.Decimal, creator string, nonce uint64) (int64, error) {
	if !m.whitelist.IsWhitelisted(creator, currencySymbol) {
		return 0, fmt.Errorf("%w: %s for %s", ErrUserNotWhitelisted, creator, currencySymbol)
	}

	p, err := m.userEntry(ctx, tokenSymbol, currencySymbol, creator, nonce)
	if err != nil {
		return 0, err
	}

	id, err := p.CreateListing(ctx, action, price, totalAmount, minPerOrder, maxPerOrder, creator)
	if err != nil {
		return 0, err
	}

	logging.FromContext(ctx).Info().
		Str("pair", p.Symbol()).
		Int64("listing_id", id).
		Str("action", action.String()).
		Str("creator", creator).
		Msg("Created listing")
	return id, nil
}

// UpdateListing updates a listing, moving it to another pair when the token
// or currency changes. A move deletes the listing at the source and creates
// a fresh one at the destination, so the id changes.
func (m *Manager) UpdateListing(ctx context.Context, tokenSymbol, currencySymbol string, listingID int64, newTokenSymbol, newCurrencySymbol string, action core.ListingAction, price, totalAmount, minPerOrder, maxPerOrder decimal.Decimal, actor string, nonce uint64) (int64, error) {
	source, err := m.userEntry(ctx, tokenSymbol, currencySymbol, actor, nonce)
	if err != nil {
		return 0, err
	}

	if newTokenSymbol == tokenSymbol && newCurrencySymbol == currencySymbol {
		return source.UpdateListing(ctx, listingID, action, price, totalAmount, minPerOrder, maxPerOrder, actor)
	}

	// Cross-pair move: the destination must accept the listing before the
	// source copy is destroyed.
	if !m.whitelist.IsWhitelisted(actor, newCurrencySymbol) {
		return 0, fmt.Errorf("%w: %s for %s", ErrUserNotWhitelisted, actor, newCurrencySymbol)
	}

	m.mu.RLock()
	destination, err := m.pair(newTokenSymbol, newCurrencySymbol)
	m.mu.RUnlock()
	if err != nil {
		return 0, err
	}

	// The bounds are checked against the destination's decimals before the
	// source copy is deleted, so a malformed move leaves the listing in place.
	if err := destination.ValidateListing(price, totalAmount, minPerOrder, maxPerOrder); err != nil {
		return 0, err
	}

	if err := source.DeleteListing(ctx, listingID, actor); err != nil {
		return 0, err
	}

	id, err := destination.CreateListing(ctx, action, price, totalAmount, minPerOrder, maxPerOrder, actor)
	if err != nil {
		return 0, err
	}

	logging.FromContext(ctx).Info().
		Str("from", source.Symbol()).
		Str("to", destination.Symbol()).
		Int64("old_listing_id", listingID).
		Int64("listing_id", id).
		Msg("Moved listing across pairs")
	return id, nil
}

// DeleteListing soft-deletes a listing on behalf of its creator
func (m *Manager) DeleteListing(ctx context.Context, tokenSymbol, currencySymbol string, listingID int64, actor string, nonce uint64) error {
	p, err := m.userEntry(ctx, tokenSymbol, currencySymbol, actor, nonce)
	if err != nil {
		return err
	}
	return p.DeleteListing(ctx, listingID, actor)
}

// CreateOrder opens an order on behalf of a whitelisted creator
func (m *Manager) CreateOrder(ctx context.Context, tokenSymbol, currencySymbol string, listingID int64, tokenAmount decimal.Decimal, creator string, nonce uint64) (int64, error) {
	if !m.whitelist.IsWhitelisted(creator, currencySymbol) {
		return 0, fmt.Errorf("%w: %s for %s", ErrUserNotWhitelisted, creator, currencySymbol)
	}

	p, err := m.userEntry(ctx, tokenSymbol, currencySymbol, creator, nonce)
	if err != nil {
		return 0, err
	}

	id, err := p.CreateOrder(ctx, listingID, tokenAmount, creator)
	if err != nil {
		return 0, err
	}

	logging.FromContext(ctx).Info().
		Str("pair", p.Symbol()).
		Int64("order_id", id).
		Int64("listing_id", listingID).
		Str("creator", creator).
		Msg("Created order")
	return id, nil
}

// AcceptOrder advances the order on behalf of actor
func (m *Manager) AcceptOrder(ctx context.Context, tokenSymbol, currencySymbol string, orderID int64, actor string, nonce uint64) error {
	p, err := m.userEntry(ctx, tokenSymbol, currencySymbol, actor, nonce)
	if err != nil {
		return err
	}
	return p.AcceptOrder(ctx, orderID, actor)
}

// RejectOrder cancels or disputes the order on behalf of actor
func (m *Manager) RejectOrder(ctx context.Context, tokenSymbol, currencySymbol string, orderID int64, actor string, nonce uint64) error {
	p, err := m.userEntry(ctx, tokenSymbol, currencySymbol, actor, nonce)
	if err != nil {
		return err
	}
	return p.RejectOrder(ctx, orderID, actor)
}

// AcceptDispute resolves a disputed order in favour of the order creator.
// Only owners arbitrate.
func (m *Manager) AcceptDispute(ctx context.Context, tokenSymbol, currencySymbol string, orderID int64, arbiter string) error {
	p, err := m.arbiterEntry(tokenSymbol, currencySymbol, arbiter)
	if err != nil {
		return err
	}
	return p.AcceptDispute(ctx, orderID, arbiter)
}

// RejectDispute resolves a disputed order in favour of the listing creator.
// Only owners arbitrate.
func (m *Manager) RejectDispute(ctx context.Context, tokenSymbol, currencySymbol string, orderID int64, arbiter string) error {
	p, err := m.arbiterEntry(tokenSymbol, currencySymbol, arbiter)
	if err != nil {
		return err
	}
	return p.RejectDispute(ctx, orderID, arbiter)
}

func (m *Manager) arbiterEntry(tokenSymbol, currencySymbol, arbiter string) (*core.Pair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.owners[arbiter] {
		return nil, fmt.Errorf("%w: %s", ErrNotOwner, arbiter)
	}
	return m.pair(tokenSymbol, currencySymbol)
}

// UpdateUser stages a user's whitelist data for a currency. Users stage their
// own data; staging does not grant access until an owner whitelists it.
func (m *Manager) UpdateUser(address, currency, telegramHandle string, paymentMethods []string) {
	m.whitelist.UpdateUser(address, currency, telegramHandle, paymentMethods)
}

// WhitelistUser promotes a user's staged data to live
func (m *Manager) WhitelistUser(ctx context.Context, actor, address, currency string) error {
	if !m.IsOwner(actor) {
		return fmt.Errorf("%w: %s", ErrNotOwner, actor)
	}
	if err := m.whitelist.WhitelistUser(address, currency); err != nil {
		return err
	}
	logging.FromContext(ctx).Info().Str("user", address).Str("currency", currency).Msg("Whitelisted user")
	return nil
}

// DelistUser revokes a user's whitelisted status for a currency
func (m *Manager) DelistUser(ctx context.Context, actor, address, currency string) error {
	if !m.IsOwner(actor) {
		return fmt.Errorf("%w: %s", ErrNotOwner, actor)
	}
	m.whitelist.DelistUser(address, currency)
	logging.FromContext(ctx).Info().Str("user", address).Str("currency", currency).Msg("Delisted user")
	return nil
}

// IsWhitelisted reports whether the user is whitelisted for the currency
func (m *Manager) IsWhitelisted(address, currency string) bool {
	return m.whitelist.IsWhitelisted(address, currency)
}

// UserData returns a user's whitelist data. The private fields are included
// only when the caller is the user themselves or an owner.
func (m *Manager) UserData(caller, address, currency string) (UserData, error) {
	includePrivate := caller == address || m.IsOwner(caller)
	return m.whitelist.UserData(address, currency, includePrivate)
}
