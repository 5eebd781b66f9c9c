package core

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Listing stores a standing offer to buy or sell tokens at a fixed unit price.
// All amounts are integers in the smallest unit of their asset: price and the
// per-order bounds in currency decimals, token amounts in token decimals.
type Listing struct {
	id               int64
	action           ListingAction
	price            decimal.Decimal
	totalAmount      decimal.Decimal
	availableAmount  decimal.Decimal
	minPricePerOrder decimal.Decimal
	maxPricePerOrder decimal.Decimal
	creator          string
	deleted          bool
}

// NewListing creates a listing with the whole offered amount still available.
// Callers are expected to have validated the per-order bounds.
func NewListing(id int64, action ListingAction, price, totalAmount, minPerOrder, maxPerOrder decimal.Decimal, creator string) *Listing {
	return &Listing{
		id:               id,
		action:           action,
		price:            price,
		totalAmount:      totalAmount,
		availableAmount:  totalAmount,
		minPricePerOrder: minPerOrder,
		maxPricePerOrder: maxPerOrder,
		creator:          creator,
	}
}

// ID returns the pair-scoped listing id
func (l *Listing) ID() int64 {
	return l.id
}

// Action returns the buy/sell intent of the listing
func (l *Listing) Action() ListingAction {
	return l.action
}

// Price returns the per-unit price in currency decimals
func (l *Listing) Price() decimal.Decimal {
	return l.price
}

// TotalTokenAmount returns the full token amount offered
func (l *Listing) TotalTokenAmount() decimal.Decimal {
	return l.totalAmount
}

// AvailableTokenAmount returns the token amount not yet reserved by orders
func (l *Listing) AvailableTokenAmount() decimal.Decimal {
	return l.availableAmount
}

// MinPricePerOrder returns the lower fiat bound for a single order
func (l *Listing) MinPricePerOrder() decimal.Decimal {
	return l.minPricePerOrder
}

// MaxPricePerOrder returns the upper fiat bound for a single order
func (l *Listing) MaxPricePerOrder() decimal.Decimal {
	return l.maxPricePerOrder
}

// Creator returns the address that created the listing
func (l *Listing) Creator() string {
	return l.creator
}

// IsDeleted returns the terminal deletion flag
func (l *Listing) IsDeleted() bool {
	return l.deleted
}

// MarshalJSON implements custom JSON marshaling for Listing
func (l *Listing) MarshalJSON() ([]byte, error) {
	return json.Marshal(listingJSON{
		ID:                   l.id,
		Action:               l.action.String(),
		Price:                l.price.String(),
		TotalTokenAmount:     l.totalAmount.String(),
		AvailableTokenAmount: l.availableAmount.String(),
		MinPricePerOrder:     l.minPricePerOrder.String(),
		MaxPricePerOrder:     l.maxPricePerOrder.String(),
		Creator:              l.creator,
		IsDeleted:            l.deleted,
	})
}

type listingJSON struct {
	ID                   int64  `json:"id"`
	Action               string `json:"action"`
	Price                string `json:"price"`
	TotalTokenAmount     string `json:"totalTokenAmount"`
	AvailableTokenAmount string `json:"availableTokenAmount"`
	MinPricePerOrder     string `json:"minPricePerOrder"`
	MaxPricePerOrder     string `json:"maxPricePerOrder"`
	Creator              string `json:"creator"`
	IsDeleted            bool   `json:"isDeleted"`
}

// String implements Stringer interface
func (l *Listing) String() string {
	j, _ := l.MarshalJSON()
	return string(j)
}
