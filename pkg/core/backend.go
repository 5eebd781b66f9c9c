package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// ListingIndex keeps derived, queryable views over a pair's listings. The
// Pair is the only writer; every mutation of a sort-relevant attribute must
// be reflected through Update in the same step.
type ListingIndex interface {
	// Add registers a freshly created listing under all keys
	Add(l *Listing)
	// Update repositions the listing under every key whose value changed
	Update(l *Listing)
	// Remove drops the listing from the sorted views. Creator membership is
	// retained for historical lookup.
	Remove(id int64)

	// CreatorListings returns the ids of all listings ever created by creator,
	// ascending
	CreatorListings(creator string) []int64
	// Query returns listing ids in the requested order, id ascending on ties
	Query(filter ListingsFilter, sortBy ListingsSortBy, dir SortDirection, offset, limit int) []int64
}

// OrderIndex keeps derived, queryable views over a pair's orders.
type OrderIndex interface {
	// Add registers a freshly created order under all keys
	Add(o *Order, listingCreator string)
	// UpdateStatus re-keys the order after a status append
	UpdateStatus(id int64, status OrderStatus)

	// CreatorOrders returns the ids of all orders opened by creator, ascending
	CreatorOrders(creator string) []int64
	// ListingCreatorOrders returns the ids of all orders opened against
	// listings created by creator, ascending
	ListingCreatorOrders(creator string) []int64
	// ListingOrders returns the ids of all orders referencing the listing,
	// ascending
	ListingOrders(listingID int64) []int64
	// Query returns order ids sorted by token amount, id ascending on ties
	Query(filter OrdersFilter, dir SortDirection, offset, limit int) []int64
}

// Custody moves tokens between a party and the pair's escrow account. Both
// operations must be atomic and report failure without partial effect.
type Custody interface {
	// TransferIn pulls amount from the party into escrow
	TransferIn(ctx context.Context, from string, amount decimal.Decimal) error
	// TransferOut releases amount from escrow to the party
	TransferOut(ctx context.Context, to string, amount decimal.Decimal) error
}
