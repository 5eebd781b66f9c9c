package messaging

// EventSender defines an interface for publishing lifecycle events.
// This helps decouple the core package from specific implementations
// like Kafka in the kafka package.
type EventSender interface {
	SendListingEvent(ev *ListingEvent) error
	SendOrderEvent(ev *OrderEvent) error
}

// Event kinds
const (
	ListingCreated = "LISTING_CREATED"
	ListingUpdated = "LISTING_UPDATED"
	ListingDeleted = "LISTING_DELETED"
	OrderCreated   = "ORDER_CREATED"
	OrderAccepted  = "ORDER_ACCEPTED"
	OrderRejected  = "ORDER_REJECTED"
)

// ListingEvent represents a listing mutation to be published downstream.
// Amounts are decimal strings in smallest units.
type ListingEvent struct {
	Pair                 string
	Kind                 string
	ListingID            int64
	Action               string
	Price                string
	TotalTokenAmount     string
	AvailableTokenAmount string
	MinPricePerOrder     string
	MaxPricePerOrder     string
	Creator              string
	Deleted              bool
}

// OrderEvent represents an order creation or a step of the confirmation
// protocol.
type OrderEvent struct {
	Pair           string
	Kind           string
	OrderID        int64
	ListingID      int64
	Actor          string
	Creator        string
	TokenAmount    string
	FiatAmount     string
	PreviousStatus string
	CurrentStatus  string
}
