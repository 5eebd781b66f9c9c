package core

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Order stores a trade opened against a listing. The fiat amount is computed
// once at creation from the listing price and never recomputed, even if the
// listing is later updated.
type Order struct {
	id            int64
	listingID     int64
	fiatAmount    decimal.Decimal
	tokenAmount   decimal.Decimal
	creator       string
	statusHistory []OrderStatus
}

// NewOrder creates an order in the RequestSent status
func NewOrder(id, listingID int64, fiatAmount, tokenAmount decimal.Decimal, creator string) *Order {
	return &Order{
		id:            id,
		listingID:     listingID,
		fiatAmount:    fiatAmount,
		tokenAmount:   tokenAmount,
		creator:       creator,
		statusHistory: []OrderStatus{StatusRequestSent},
	}
}

// ID returns the pair-scoped order id
func (o *Order) ID() int64 {
	return o.id
}

// ListingID returns the id of the listing the order was opened against
func (o *Order) ListingID() int64 {
	return o.listingID
}

// FiatAmount returns the fiat value frozen at creation, in currency decimals
func (o *Order) FiatAmount() decimal.Decimal {
	return o.fiatAmount
}

// TokenAmount returns the token amount traded, in token decimals
func (o *Order) TokenAmount() decimal.Decimal {
	return o.tokenAmount
}

// Creator returns the address that opened the order
func (o *Order) Creator() string {
	return o.creator
}

// StatusHistory returns a copy of the append-only status sequence
func (o *Order) StatusHistory() []OrderStatus {
	history := make([]OrderStatus, len(o.statusHistory))
	copy(history, o.statusHistory)
	return history
}

// CurrentStatus returns the last appended status
func (o *Order) CurrentStatus() OrderStatus {
	return o.statusHistory[len(o.statusHistory)-1]
}

// HasStatus reports whether the order passed through the given status
func (o *Order) HasStatus(status OrderStatus) bool {
	for _, s := range o.statusHistory {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the order reached Completed or Cancelled
func (o *Order) IsTerminal() bool {
	return o.CurrentStatus().IsTerminal()
}

// appendStatus advances the order; callers must have validated the transition
func (o *Order) appendStatus(status OrderStatus) {
	o.statusHistory = append(o.statusHistory, status)
}

// MarshalJSON implements custom JSON marshaling for Order
func (o *Order) MarshalJSON() ([]byte, error) {
	history := make([]string, len(o.statusHistory))
	for i, s := range o.statusHistory {
		history[i] = s.String()
	}

	return json.Marshal(orderJSON{
		ID:            o.id,
		ListingID:     o.listingID,
		FiatAmount:    o.fiatAmount.String(),
		TokenAmount:   o.tokenAmount.String(),
		Creator:       o.creator,
		StatusHistory: history,
	})
}

type orderJSON struct {
	ID            int64    `json:"id"`
	ListingID     int64    `json:"listingId"`
	FiatAmount    string   `json:"fiatAmount"`
	TokenAmount   string   `json:"tokenAmount"`
	Creator       string   `json:"creator"`
	StatusHistory []string `json:"statusHistory"`
}

// String implements Stringer interface
func (o *Order) String() string {
	j, _ := o.MarshalJSON()
	return string(j)
}
