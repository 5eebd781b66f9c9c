package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/ezcrow/ramp/pkg/messaging"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PairConfig describes one trading venue for a (token, currency) combination.
type PairConfig struct {
	Symbol           string
	TokenSymbol      string
	CurrencySymbol   string
	TokenDecimals    int32
	CurrencyDecimals int32
	InitialListingID int64
	InitialOrderID   int64
	// MaxQueryItems caps the page size of queries
	MaxQueryItems int
}

// Pair owns the listings and orders of one trading pair. It is the only
// writer of entity state: every mutation updates the indices and moves
// custody in the same step, and a failed custody move aborts the whole call.
// All mutating calls are serialized under one lock.
type Pair struct {
	mu  sync.Mutex
	cfg PairConfig

	custody Custody
	events  messaging.EventSender

	listings map[int64]*Listing
	orders   map[int64]*Order

	listingIDs *AutoIncrementID
	orderIDs   *AutoIncrementID

	listingIndex ListingIndex
	orderIndex   OrderIndex
}

// NewPair creates a Pair with its own id counters, indices and escrow custody
func NewPair(cfg PairConfig, custody Custody, listingIndex ListingIndex, orderIndex OrderIndex, events messaging.EventSender) *Pair {
	if cfg.MaxQueryItems <= 0 {
		cfg.MaxQueryItems = 100
	}
	if events == nil {
		events = messaging.NewMockEventSender()
	}

	return &Pair{
		cfg:          cfg,
		custody:      custody,
		events:       events,
		listings:     make(map[int64]*Listing),
		orders:       make(map[int64]*Order),
		listingIDs:   NewAutoIncrementID(cfg.InitialListingID),
		orderIDs:     NewAutoIncrementID(cfg.InitialOrderID),
		listingIndex: listingIndex,
		orderIndex:   orderIndex,
	}
}

// Symbol returns the pair symbol, e.g. "TT/USD"
func (p *Pair) Symbol() string {
	return p.cfg.Symbol
}

// TokenSymbol returns the token side of the pair
func (p *Pair) TokenSymbol() string {
	return p.cfg.TokenSymbol
}

// CurrencySymbol returns the currency side of the pair
func (p *Pair) CurrencySymbol() string {
	return p.cfg.CurrencySymbol
}

// SetCurrencyDecimals changes the currency scaling used for future fiat
// conversions. Existing orders keep their frozen fiat amounts.
func (p *Pair) SetCurrencyDecimals(decimals int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.CurrencyDecimals = decimals
}

// fiatValue converts price times token amount into this pair's currency decimals
func (p *Pair) fiatValue(price, tokenAmount decimal.Decimal) decimal.Decimal {
	return FiatValue(price, tokenAmount, p.cfg.CurrencyDecimals, p.cfg.TokenDecimals)
}

func (p *Pair) validateListingBounds(price, totalAmount, minPerOrder, maxPerOrder decimal.Decimal) error {
	if !minPerOrder.IsPositive() {
		return ErrMinPerOrderIsZero
	}
	if minPerOrder.GreaterThan(maxPerOrder) {
		return amountErr(ErrMinAboveMax, minPerOrder, maxPerOrder)
	}
	totalPrice := p.fiatValue(price, totalAmount)
	if maxPerOrder.GreaterThan(totalPrice) {
		return amountErr(ErrMaxAboveTotal, maxPerOrder, totalPrice)
	}
	return nil
}

// CreateListing validates the per-order bounds, escrows the offered tokens
// for a sell listing, and registers the listing under all index keys.
func (p *Pair) CreateListing(ctx context.Context, action ListingAction, price, totalAmount, minPerOrder, maxPerOrder decimal.Decimal, creator string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.createListing(ctx, action, price, totalAmount, minPerOrder, maxPerOrder, creator)
}

func (p *Pair) createListing(ctx context.Context, action ListingAction, price, totalAmount, minPerOrder, maxPerOrder decimal.Decimal, creator string) (int64, error) {
	if err := p.validateListingBounds(price, totalAmount, minPerOrder, maxPerOrder); err != nil {
		return 0, err
	}

	// A sell listing escrows the whole offered amount up front; the deposit
	// failing must leave no trace of the listing.
	if action == Sell {
		if err := p.custody.TransferIn(ctx, creator, totalAmount); err != nil {
			return 0, &CustodyError{Op: "transfer in", Err: err}
		}
	}

	return p.registerListing(action, price, totalAmount, minPerOrder, maxPerOrder, creator), nil
}

// registerListing mints the id and stores the already validated and funded
// listing. Nothing past this point can fail.
func (p *Pair) registerListing(action ListingAction, price, totalAmount, minPerOrder, maxPerOrder decimal.Decimal, creator string) int64 {
	l := NewListing(p.listingIDs.Next(), action, price, totalAmount, minPerOrder, maxPerOrder, creator)

	p.listings[l.id] = l
	p.listingIndex.Add(l)
	p.emitListingEvent(messaging.ListingCreated, l)

	return l.id
}

// ValidateListing checks the per-order bounds against this pair's decimal
// scaling without touching any state
func (p *Pair) ValidateListing(price, totalAmount, minPerOrder, maxPerOrder decimal.Decimal) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.validateListingBounds(price, totalAmount, minPerOrder, maxPerOrder)
}

// UpdateListing mutates a listing in place, or, when the action changes,
// soft-deletes it and mints a replacement under a fresh id. Blocked while the
// listing has non-terminal orders. Returns the id of the resulting listing.
func (p *Pair) UpdateListing(ctx context.Context, id int64, action ListingAction, price, totalAmount, minPerOrder, maxPerOrder decimal.Decimal, actor string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, err := p.editableListing(id, actor)
	if err != nil {
		return 0, err
	}

	if action != l.action {
		// Identity is tied to the action at creation time: replace instead of
		// mutating, so the old id stays queryable as deleted. Everything that
		// can fail runs before the old listing is touched; the delete's own
		// refund only applies when the old listing sold, in which case the
		// replacement buys and took no deposit.
		if err := p.validateListingBounds(price, totalAmount, minPerOrder, maxPerOrder); err != nil {
			return 0, err
		}
		if action == Sell {
			if err := p.custody.TransferIn(ctx, actor, totalAmount); err != nil {
				return 0, &CustodyError{Op: "transfer in", Err: err}
			}
		}
		if err := p.deleteListing(ctx, l); err != nil {
			return 0, err
		}
		return p.registerListing(action, price, totalAmount, minPerOrder, maxPerOrder, actor), nil
	}

	if err := p.validateListingBounds(price, totalAmount, minPerOrder, maxPerOrder); err != nil {
		return 0, err
	}

	if l.action == Sell {
		delta := totalAmount.Sub(l.totalAmount)
		switch {
		case delta.IsPositive():
			if err := p.custody.TransferIn(ctx, l.creator, delta); err != nil {
				return 0, &CustodyError{Op: "transfer in", Err: err}
			}
		case delta.IsNegative():
			if err := p.custody.TransferOut(ctx, l.creator, delta.Neg()); err != nil {
				return 0, &CustodyError{Op: "transfer out", Err: err}
			}
		}
	}

	l.price = price
	l.totalAmount = totalAmount
	l.availableAmount = totalAmount
	l.minPricePerOrder = minPerOrder
	l.maxPricePerOrder = maxPerOrder

	p.listingIndex.Update(l)
	p.emitListingEvent(messaging.ListingUpdated, l)

	return l.id, nil
}

// DeleteListing soft-deletes a listing and returns escrowed tokens to the
// creator for a sell listing. Blocked while non-terminal orders exist.
func (p *Pair) DeleteListing(ctx context.Context, id int64, actor string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, err := p.editableListing(id, actor)
	if err != nil {
		return err
	}

	return p.deleteListing(ctx, l)
}

// editableListing resolves a listing and checks every precondition shared by
// update and delete
func (p *Pair) editableListing(id int64, actor string) (*Listing, error) {
	l, ok := p.listings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrListingNotFound, id)
	}
	if l.deleted {
		return nil, fmt.Errorf("%w: %d", ErrListingDeleted, id)
	}
	if l.creator != actor {
		return nil, fmt.Errorf("%w: listing %d, user %s", ErrNotListingCreator, id, actor)
	}
	if p.hasActiveOrders(id) {
		return nil, fmt.Errorf("%w: %d", ErrListingHasOrders, id)
	}
	return l, nil
}

func (p *Pair) deleteListing(ctx context.Context, l *Listing) error {
	if l.action == Sell && l.availableAmount.IsPositive() {
		if err := p.custody.TransferOut(ctx, l.creator, l.availableAmount); err != nil {
			return &CustodyError{Op: "transfer out", Err: err}
		}
	}

	l.deleted = true
	p.listingIndex.Remove(l.id)
	p.emitListingEvent(messaging.ListingDeleted, l)

	return nil
}

func (p *Pair) hasActiveOrders(listingID int64) bool {
	for _, orderID := range p.orderIndex.ListingOrders(listingID) {
		if o, ok := p.orders[orderID]; ok && !o.IsTerminal() {
			return true
		}
	}
	return false
}

// CreateOrder opens an order against a non-deleted listing. The fiat amount
// is computed and frozen here; available capacity is deliberately not checked
// until the listing creator confirms, so competing orders race on a
// first-confirmed basis.
func (p *Pair) CreateOrder(ctx context.Context, listingID int64, tokenAmount decimal.Decimal, creator string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, ok := p.listings[listingID]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrListingNotFound, listingID)
	}
	if l.deleted {
		return 0, fmt.Errorf("%w: %d", ErrListingDeleted, listingID)
	}

	fiatAmount := p.fiatValue(l.price, tokenAmount)
	if fiatAmount.LessThan(l.minPricePerOrder) {
		return 0, amountErr(ErrOrderBelowMin, fiatAmount, l.minPricePerOrder)
	}
	if fiatAmount.GreaterThan(l.maxPricePerOrder) {
		return 0, amountErr(ErrOrderAboveMax, fiatAmount, l.maxPricePerOrder)
	}

	o := NewOrder(p.orderIDs.Next(), listingID, fiatAmount, tokenAmount, creator)

	p.orders[o.id] = o
	p.orderIndex.Add(o, l.creator)
	p.emitOrderEvent(messaging.OrderCreated, o, creator, StatusRequestSent)

	return o.id, nil
}

// AcceptOrder advances the order along the confirmation protocol on behalf
// of actor, performing the transition's custody effect atomically with the
// status append.
func (p *Pair) AcceptOrder(ctx context.Context, orderID int64, actor string) error {
	return p.interact(ctx, orderID, actor, VerbAccept)
}

// RejectOrder cancels or disputes the order on behalf of actor, depending on
// its current status and the actor's role.
func (p *Pair) RejectOrder(ctx context.Context, orderID int64, actor string) error {
	return p.interact(ctx, orderID, actor, VerbReject)
}

func (p *Pair) interact(ctx context.Context, orderID int64, actor string, verb Verb) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	o, ok := p.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
	}
	l := p.listings[o.listingID]

	role := RoleNone
	switch actor {
	case l.creator:
		role = RoleListingCreator
	case o.creator:
		role = RoleOrderCreator
	}

	t, ok := lookupTransition(l.action, o.CurrentStatus(), role, verb)
	if !ok {
		return fmt.Errorf("%w: order %d", ErrCannotInteract, orderID)
	}

	return p.applyTransition(ctx, l, o, t, actor, verb)
}

// AcceptDispute resolves a disputed order in favour of the order creator,
// cancelling it. Arbiter authorization is the caller's responsibility.
func (p *Pair) AcceptDispute(ctx context.Context, orderID int64, arbiter string) error {
	return p.resolveDispute(ctx, orderID, arbiter, transition{StatusCancelled, effectCancel}, VerbReject)
}

// RejectDispute resolves a disputed order in favour of the listing creator,
// completing it.
func (p *Pair) RejectDispute(ctx context.Context, orderID int64, arbiter string) error {
	return p.resolveDispute(ctx, orderID, arbiter, transition{StatusCompleted, effectComplete}, VerbAccept)
}

func (p *Pair) resolveDispute(ctx context.Context, orderID int64, arbiter string, t transition, verb Verb) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	o, ok := p.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
	}
	if o.CurrentStatus() != StatusInDispute {
		return fmt.Errorf("%w: %d", ErrOrderNotInDispute, orderID)
	}

	return p.applyTransition(ctx, p.listings[o.listingID], o, t, arbiter, verb)
}

// applyTransition performs the custody effect and only then appends the new
// status and re-keys the order index, so a failed transfer leaves no trace.
func (p *Pair) applyTransition(ctx context.Context, l *Listing, o *Order, t transition, actor string, verb Verb) error {
	switch t.effect {
	case effectConfirmAssets:
		if l.availableAmount.LessThan(o.tokenAmount) {
			return amountErr(ErrInsufficientAvailable, o.tokenAmount, l.availableAmount)
		}
		l.availableAmount = l.availableAmount.Sub(o.tokenAmount)
		p.listingIndex.Update(l)

	case effectDepositTokens:
		if err := p.custody.TransferIn(ctx, o.creator, o.tokenAmount); err != nil {
			return &CustodyError{Op: "transfer in", Err: err}
		}

	case effectCancel:
		// Tokens deposited by the order creator go back to them; capacity
		// reserved at confirmation goes back to the listing.
		if o.HasStatus(StatusTokensDeposited) {
			if err := p.custody.TransferOut(ctx, o.creator, o.tokenAmount); err != nil {
				return &CustodyError{Op: "transfer out", Err: err}
			}
		}
		if o.HasStatus(StatusAssetsConfirmed) {
			l.availableAmount = l.availableAmount.Add(o.tokenAmount)
			p.listingIndex.Update(l)
		}

	case effectComplete:
		receiver := l.creator
		if l.action == Sell {
			receiver = o.creator
		}
		if err := p.custody.TransferOut(ctx, receiver, o.tokenAmount); err != nil {
			return &CustodyError{Op: "transfer out", Err: err}
		}
	}

	o.appendStatus(t.next)
	p.orderIndex.UpdateStatus(o.id, t.next)

	kind := messaging.OrderAccepted
	if verb == VerbReject {
		kind = messaging.OrderRejected
	}
	p.emitOrderEvent(kind, o, actor, t.next)

	return nil
}

// GetListing returns the listing with the given id, deleted or not
func (p *Pair) GetListing(id int64) (*Listing, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, ok := p.listings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrListingNotFound, id)
	}
	return l, nil
}

// GetListings returns listings in the requested order, id ascending on ties
func (p *Pair) GetListings(filter ListingsFilter, sortBy ListingsSortBy, dir SortDirection, offset, limit int) []*Listing {
	p.mu.Lock()
	defer p.mu.Unlock()

	if limit <= 0 || limit > p.cfg.MaxQueryItems {
		limit = p.cfg.MaxQueryItems
	}

	ids := p.listingIndex.Query(filter, sortBy, dir, offset, limit)
	listings := make([]*Listing, 0, len(ids))
	for _, id := range ids {
		listings = append(listings, p.listings[id])
	}
	return listings
}

// GetUserListings returns all listings ever created by creator, including
// deleted ones, id ascending
func (p *Pair) GetUserListings(creator string) []*Listing {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.collectListings(p.listingIndex.CreatorListings(creator))
}

// GetOrder returns the order with the given id
func (p *Pair) GetOrder(id int64) (*Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	o, ok := p.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, id)
	}
	return o, nil
}

// GetOrders returns orders sorted by token amount, id ascending on ties
func (p *Pair) GetOrders(filter OrdersFilter, dir SortDirection, offset, limit int) []*Order {
	p.mu.Lock()
	defer p.mu.Unlock()

	if limit <= 0 || limit > p.cfg.MaxQueryItems {
		limit = p.cfg.MaxQueryItems
	}

	ids := p.orderIndex.Query(filter, dir, offset, limit)
	orders := make([]*Order, 0, len(ids))
	for _, id := range ids {
		orders = append(orders, p.orders[id])
	}
	return orders
}

// GetUserOrders returns all orders opened by creator, id ascending
func (p *Pair) GetUserOrders(creator string) []*Order {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.collectOrders(p.orderIndex.CreatorOrders(creator))
}

// GetListingCreatorOrders returns all orders opened against listings created
// by creator, id ascending
func (p *Pair) GetListingCreatorOrders(creator string) []*Order {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.collectOrders(p.orderIndex.ListingCreatorOrders(creator))
}

// GetListingOrders returns all orders referencing the listing, id ascending
func (p *Pair) GetListingOrders(listingID int64) []*Order {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.collectOrders(p.orderIndex.ListingOrders(listingID))
}

func (p *Pair) collectListings(ids []int64) []*Listing {
	listings := make([]*Listing, 0, len(ids))
	for _, id := range ids {
		if l, ok := p.listings[id]; ok {
			listings = append(listings, l)
		}
	}
	return listings
}

func (p *Pair) collectOrders(ids []int64) []*Order {
	orders := make([]*Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := p.orders[id]; ok {
			orders = append(orders, o)
		}
	}
	return orders
}

// ListingIDs exposes the listing id source for inspection
func (p *Pair) ListingIDs() *AutoIncrementID {
	return p.listingIDs
}

// OrderIDs exposes the order id source for inspection
func (p *Pair) OrderIDs() *AutoIncrementID {
	return p.orderIDs
}

func (p *Pair) emitListingEvent(kind string, l *Listing) {
	err := p.events.SendListingEvent(&messaging.ListingEvent{
		Pair:                 p.cfg.Symbol,
		Kind:                 kind,
		ListingID:            l.id,
		Action:               l.action.String(),
		Price:                l.price.String(),
		TotalTokenAmount:     l.totalAmount.String(),
		AvailableTokenAmount: l.availableAmount.String(),
		MinPricePerOrder:     l.minPricePerOrder.String(),
		MaxPricePerOrder:     l.maxPricePerOrder.String(),
		Creator:              l.creator,
		Deleted:              l.deleted,
	})
	if err != nil {
		log.Error().Err(err).Str("pair", p.cfg.Symbol).Int64("listing_id", l.id).Msg("Failed to send listing event")
	}
}

func (p *Pair) emitOrderEvent(kind string, o *Order, actor string, current OrderStatus) {
	previous := current
	if n := len(o.statusHistory); n > 1 {
		previous = o.statusHistory[n-2]
	}

	err := p.events.SendOrderEvent(&messaging.OrderEvent{
		Pair:           p.cfg.Symbol,
		Kind:           kind,
		OrderID:        o.id,
		ListingID:      o.listingID,
		Actor:          actor,
		Creator:        o.creator,
		TokenAmount:    o.tokenAmount.String(),
		FiatAmount:     o.fiatAmount.String(),
		PreviousStatus: previous.String(),
		CurrentStatus:  current.String(),
	})
	if err != nil {
		log.Error().Err(err).Str("pair", p.cfg.Symbol).Int64("order_id", o.id).Msg("Failed to send order event")
	}
}
