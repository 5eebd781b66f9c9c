package core

// custodyEffect is the side effect a transition performs before the status is
// appended. If the effect fails the whole interaction aborts unchanged.
type custodyEffect int

const (
	effectNone custodyEffect = iota
	// effectConfirmAssets reserves listing capacity for the order
	effectConfirmAssets
	// effectDepositTokens pulls the order amount from the order creator
	effectDepositTokens
	// effectCancel returns held tokens and restores reserved capacity
	effectCancel
	// effectComplete releases held tokens to the receiving party
	effectComplete
)

type transitionKey struct {
	action ListingAction
	status OrderStatus
	role   Role
	verb   Verb
}

type transition struct {
	next   OrderStatus
	effect custodyEffect
}

// transitionTable is the whole confirmation protocol. A missing key means the
// combination is invalid for the requested verb, which surfaces as
// ErrCannotInteract; there is no default branch.
var transitionTable = map[transitionKey]transition{
	// Buy listing: the listing creator buys, the order creator supplies tokens.
	{Buy, StatusRequestSent, RoleListingCreator, VerbAccept}:     {StatusAssetsConfirmed, effectConfirmAssets},
	{Buy, StatusAssetsConfirmed, RoleOrderCreator, VerbAccept}:   {StatusTokensDeposited, effectDepositTokens},
	{Buy, StatusTokensDeposited, RoleListingCreator, VerbAccept}: {StatusPaymentSent, effectNone},
	{Buy, StatusPaymentSent, RoleOrderCreator, VerbAccept}:       {StatusCompleted, effectComplete},
	{Buy, StatusRequestSent, RoleListingCreator, VerbReject}:     {StatusCancelled, effectCancel},
	{Buy, StatusAssetsConfirmed, RoleOrderCreator, VerbReject}:   {StatusCancelled, effectCancel},
	{Buy, StatusTokensDeposited, RoleListingCreator, VerbReject}: {StatusCancelled, effectCancel},
	{Buy, StatusPaymentSent, RoleOrderCreator, VerbReject}:       {StatusInDispute, effectNone},

	// Sell listing: tokens are escrowed at listing creation, so the protocol
	// has no deposit step.
	{Sell, StatusRequestSent, RoleListingCreator, VerbAccept}:   {StatusAssetsConfirmed, effectConfirmAssets},
	{Sell, StatusAssetsConfirmed, RoleOrderCreator, VerbAccept}: {StatusPaymentSent, effectNone},
	{Sell, StatusPaymentSent, RoleListingCreator, VerbAccept}:   {StatusCompleted, effectComplete},
	{Sell, StatusRequestSent, RoleListingCreator, VerbReject}:   {StatusCancelled, effectCancel},
	{Sell, StatusAssetsConfirmed, RoleOrderCreator, VerbReject}: {StatusCancelled, effectCancel},
	{Sell, StatusPaymentSent, RoleListingCreator, VerbReject}:   {StatusInDispute, effectNone},
}

// lookupTransition resolves the protocol step for an actor's interaction
func lookupTransition(action ListingAction, status OrderStatus, role Role, verb Verb) (transition, bool) {
	t, ok := transitionTable[transitionKey{action, status, role, verb}]
	return t, ok
}

// ValidTransition reports whether from -> to is a row of the protocol table
// for the given listing action, regardless of actor. Dispute resolution
// steps (InDispute -> Cancelled/Completed) are included.
func ValidTransition(action ListingAction, from, to OrderStatus) bool {
	if from == StatusInDispute {
		return to == StatusCancelled || to == StatusCompleted
	}
	for key, t := range transitionTable {
		if key.action == action && key.status == from && t.next == to {
			return true
		}
	}
	return false
}
