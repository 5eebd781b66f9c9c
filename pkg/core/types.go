package core

// ListingAction represents the buy or sell intent of a listing
type ListingAction int

// Listing actions
const (
	Buy ListingAction = iota
	Sell
)

// String returns action as string
func (a ListingAction) String() string {
	switch a {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// OrderStatus represents one step of the order confirmation protocol
type OrderStatus int

// Order statuses, in protocol order
const (
	StatusRequestSent OrderStatus = iota
	StatusAssetsConfirmed
	StatusTokensDeposited
	StatusPaymentSent
	StatusCompleted
	StatusInDispute
	StatusCancelled
)

// String returns status as string
func (s OrderStatus) String() string {
	switch s {
	case StatusRequestSent:
		return "REQUEST_SENT"
	case StatusAssetsConfirmed:
		return "ASSETS_CONFIRMED"
	case StatusTokensDeposited:
		return "TOKENS_DEPOSITED"
	case StatusPaymentSent:
		return "PAYMENT_SENT"
	case StatusCompleted:
		return "COMPLETED"
	case StatusInDispute:
		return "IN_DISPUTE"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal reports whether the status ends the order lifecycle
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Role represents the actor's relation to an order
type Role int

// Actor roles
const (
	RoleNone Role = iota
	RoleListingCreator
	RoleOrderCreator
)

// Verb represents the two interaction methods of the confirmation protocol
type Verb int

// Interaction verbs
const (
	VerbAccept Verb = iota
	VerbReject
)

// String returns verb as string
func (v Verb) String() string {
	if v == VerbAccept {
		return "ACCEPT"
	}
	return "REJECT"
}

// SortDirection orders query results
type SortDirection int

// Sort directions
const (
	Desc SortDirection = iota
	Asc
)

// ListingsSortBy selects the listing attribute queries are sorted on
type ListingsSortBy int

// Listing sort keys
const (
	SortByPrice ListingsSortBy = iota
	SortByAvailableAmount
	SortByMinPricePerOrder
)

// ListingsFilter narrows listing queries by action
type ListingsFilter int

// Listing filters
const (
	ListingsAll ListingsFilter = iota
	ListingsBuy
	ListingsSell
)

// OrdersFilter narrows order queries by current status
type OrdersFilter int

// Order filters
const (
	OrdersAll OrdersFilter = iota
	OrdersRequestSent
	OrdersAssetsConfirmed
	OrdersTokensDeposited
	OrdersPaymentSent
	OrdersCompleted
	OrdersInDispute
	OrdersCancelled
)

// Status maps the filter to the order status it selects.
// The second return is false for OrdersAll.
func (f OrdersFilter) Status() (OrderStatus, bool) {
	switch f {
	case OrdersRequestSent:
		return StatusRequestSent, true
	case OrdersAssetsConfirmed:
		return StatusAssetsConfirmed, true
	case OrdersTokensDeposited:
		return StatusTokensDeposited, true
	case OrdersPaymentSent:
		return StatusPaymentSent, true
	case OrdersCompleted:
		return StatusCompleted, true
	case OrdersInDispute:
		return StatusInDispute, true
	case OrdersCancelled:
		return StatusCancelled, true
	default:
		return 0, false
	}
}
