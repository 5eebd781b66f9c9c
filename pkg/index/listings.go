// Package index provides in-memory sorted views over a pair's listings and
// orders, backed by B-trees keyed on (value, id).
package index

import (
	"github.com/ezcrow/ramp/pkg/core"
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
)

// sortKey orders entities by a decimal attribute, id ascending on ties
type sortKey struct {
	value decimal.Decimal
	id    int64
}

func sortKeyLess(a, b sortKey) bool {
	if c := a.value.Cmp(b.value); c != 0 {
		return c < 0
	}
	return a.id < b.id
}

// maxScan caps the number of tree keys one query may visit, so a filter that
// matches almost nothing cannot degenerate into a full rescan
const maxScan = 10000

// listingEntry caches the attributes the index keys on, so Update and Remove
// can locate stale tree keys without consulting the listing itself
type listingEntry struct {
	action    core.ListingAction
	price     decimal.Decimal
	available decimal.Decimal
	minPrice  decimal.Decimal
}

// Listings implements core.ListingIndex with one B-tree per sort attribute.
// Not safe for concurrent use; the owning Pair serializes access.
type Listings struct {
	byPrice     *btree.BTreeG[sortKey]
	byAvailable *btree.BTreeG[sortKey]
	byMinPrice  *btree.BTreeG[sortKey]

	entries  map[int64]listingEntry
	creators map[string][]int64
}

// NewListings creates an empty listing index
func NewListings() *Listings {
	return &Listings{
		byPrice:     btree.NewBTreeG(sortKeyLess),
		byAvailable: btree.NewBTreeG(sortKeyLess),
		byMinPrice:  btree.NewBTreeG(sortKeyLess),
		entries:     make(map[int64]listingEntry),
		creators:    make(map[string][]int64),
	}
}

// Add registers a freshly created listing under all keys
func (x *Listings) Add(l *core.Listing) {
	e := listingEntry{
		action:    l.Action(),
		price:     l.Price(),
		available: l.AvailableTokenAmount(),
		minPrice:  l.MinPricePerOrder(),
	}

	x.entries[l.ID()] = e
	x.insertKeys(l.ID(), e)
	x.creators[l.Creator()] = append(x.creators[l.Creator()], l.ID())
}

// Update repositions the listing under every key whose value changed
func (x *Listings) Update(l *core.Listing) {
	old, ok := x.entries[l.ID()]
	if !ok {
		return
	}
	x.deleteKeys(l.ID(), old)

	e := listingEntry{
		action:    l.Action(),
		price:     l.Price(),
		available: l.AvailableTokenAmount(),
		minPrice:  l.MinPricePerOrder(),
	}
	x.entries[l.ID()] = e
	x.insertKeys(l.ID(), e)
}

// Remove drops the listing from the sorted views. Creator membership stays so
// deleted listings remain reachable through CreatorListings.
func (x *Listings) Remove(id int64) {
	old, ok := x.entries[id]
	if !ok {
		return
	}
	x.deleteKeys(id, old)
	delete(x.entries, id)
}

func (x *Listings) insertKeys(id int64, e listingEntry) {
	x.byPrice.Set(sortKey{e.price, id})
	x.byAvailable.Set(sortKey{e.available, id})
	x.byMinPrice.Set(sortKey{e.minPrice, id})
}

func (x *Listings) deleteKeys(id int64, e listingEntry) {
	x.byPrice.Delete(sortKey{e.price, id})
	x.byAvailable.Delete(sortKey{e.available, id})
	x.byMinPrice.Delete(sortKey{e.minPrice, id})
}

// CreatorListings returns the ids of all listings ever created by creator,
// ascending
func (x *Listings) CreatorListings(creator string) []int64 {
	ids := x.creators[creator]
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}

// Query returns listing ids in the requested order. Ties on the sort value
// come out id ascending in both directions.
func (x *Listings) Query(filter core.ListingsFilter, sortBy core.ListingsSortBy, dir core.SortDirection, offset, limit int) []int64 {
	if limit <= 0 {
		return nil
	}
	if offset < 0 {
		offset = 0
	}

	tree := x.byPrice
	switch sortBy {
	case core.SortByAvailableAmount:
		tree = x.byAvailable
	case core.SortByMinPricePerOrder:
		tree = x.byMinPrice
	}

	match := func(id int64) bool {
		e := x.entries[id]
		switch filter {
		case core.ListingsBuy:
			return e.action == core.Buy
		case core.ListingsSell:
			return e.action == core.Sell
		default:
			return true
		}
	}

	matched := walk(tree, dir, offset+limit, match)
	return page(matched, offset, limit)
}

// walk collects up to need matching ids from the tree in the requested
// direction, visiting at most maxScan keys. Descending walks normalize each
// run of equal values back to id ascending, so a run is always consumed
// whole; the cap is then only checked at run boundaries, and a single run
// larger than maxScan overruns it by the length of its tail.
func walk(tree *btree.BTreeG[sortKey], dir core.SortDirection, need int, match func(int64) bool) []int64 {
	var matched []int64
	scanned := 0

	if dir == core.Asc {
		tree.Scan(func(k sortKey) bool {
			scanned++
			if match(k.id) {
				matched = append(matched, k.id)
			}
			return len(matched) < need && scanned < maxScan
		})
		return matched
	}

	var group []int64
	var groupValue decimal.Decimal

	flush := func() {
		for i := len(group) - 1; i >= 0; i-- {
			matched = append(matched, group[i])
		}
		group = group[:0]
	}

	tree.Reverse(func(k sortKey) bool {
		if len(group) > 0 && !k.value.Equal(groupValue) {
			flush()
			if len(matched) >= need || scanned >= maxScan {
				return false
			}
		}
		scanned++
		if match(k.id) {
			group = append(group, k.id)
			groupValue = k.value
		}
		return true
	})
	flush()

	return matched
}

func page(ids []int64, offset, limit int) []int64 {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ids) {
		return nil
	}
	ids = ids[offset:]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}
