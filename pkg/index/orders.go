package index

import (
	"github.com/ezcrow/ramp/pkg/core"
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
)

// orderEntry caches the attributes queries filter and sort on
type orderEntry struct {
	amount decimal.Decimal
	status core.OrderStatus
}

// Orders implements core.OrderIndex. Orders sort by token amount; the
// relation views (creator, listing creator, listing) are append-only and
// naturally id ascending because ids only grow.
// Not safe for concurrent use; the owning Pair serializes access.
type Orders struct {
	byAmount *btree.BTreeG[sortKey]

	entries         map[int64]orderEntry
	creators        map[string][]int64
	listingCreators map[string][]int64
	listings        map[int64][]int64
}

// NewOrders creates an empty order index
func NewOrders() *Orders {
	return &Orders{
		byAmount:        btree.NewBTreeG(sortKeyLess),
		entries:         make(map[int64]orderEntry),
		creators:        make(map[string][]int64),
		listingCreators: make(map[string][]int64),
		listings:        make(map[int64][]int64),
	}
}

// Add registers a freshly created order under all keys
func (x *Orders) Add(o *core.Order, listingCreator string) {
	x.entries[o.ID()] = orderEntry{amount: o.TokenAmount(), status: o.CurrentStatus()}
	x.byAmount.Set(sortKey{o.TokenAmount(), o.ID()})

	x.creators[o.Creator()] = append(x.creators[o.Creator()], o.ID())
	x.listingCreators[listingCreator] = append(x.listingCreators[listingCreator], o.ID())
	x.listings[o.ListingID()] = append(x.listings[o.ListingID()], o.ID())
}

// UpdateStatus records the order's new current status for filtering. The
// amount key never changes, so the tree stays untouched.
func (x *Orders) UpdateStatus(id int64, status core.OrderStatus) {
	e, ok := x.entries[id]
	if !ok {
		return
	}
	e.status = status
	x.entries[id] = e
}

// CreatorOrders returns the ids of all orders opened by creator, ascending
func (x *Orders) CreatorOrders(creator string) []int64 {
	return copyIDs(x.creators[creator])
}

// ListingCreatorOrders returns the ids of all orders opened against listings
// created by creator, ascending
func (x *Orders) ListingCreatorOrders(creator string) []int64 {
	return copyIDs(x.listingCreators[creator])
}

// ListingOrders returns the ids of all orders referencing the listing,
// ascending
func (x *Orders) ListingOrders(listingID int64) []int64 {
	return copyIDs(x.listings[listingID])
}

// Query returns order ids sorted by token amount, filtered by current status
func (x *Orders) Query(filter core.OrdersFilter, dir core.SortDirection, offset, limit int) []int64 {
	if limit <= 0 {
		return nil
	}
	if offset < 0 {
		offset = 0
	}

	match := func(id int64) bool {
		status, ok := filter.Status()
		if !ok {
			return true
		}
		return x.entries[id].status == status
	}

	matched := walk(x.byAmount, dir, offset+limit, match)
	return page(matched, offset, limit)
}

func copyIDs(ids []int64) []int64 {
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}
