package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezcrow/ramp/pkg/core"
)

func newOrder(id, listingID int64, tokenAmount, creator string) *core.Order {
	return core.NewOrder(id, listingID, dec(tokenAmount).Div(dec("10")), dec(tokenAmount), creator)
}

func TestOrdersRelationViews(t *testing.T) {
	x := NewOrders()

	x.Add(newOrder(1, 10, "500", "bob"), "alice")
	x.Add(newOrder(2, 10, "300", "carol"), "alice")
	x.Add(newOrder(3, 11, "400", "bob"), "dave")

	assert.Equal(t, []int64{1, 3}, x.CreatorOrders("bob"))
	assert.Equal(t, []int64{2}, x.CreatorOrders("carol"))
	assert.Empty(t, x.CreatorOrders("alice"))

	assert.Equal(t, []int64{1, 2}, x.ListingCreatorOrders("alice"))
	assert.Equal(t, []int64{3}, x.ListingCreatorOrders("dave"))

	assert.Equal(t, []int64{1, 2}, x.ListingOrders(10))
	assert.Equal(t, []int64{3}, x.ListingOrders(11))
	assert.Empty(t, x.ListingOrders(12))
}

func TestOrdersQuerySortsByTokenAmount(t *testing.T) {
	x := NewOrders()

	x.Add(newOrder(1, 10, "500", "bob"), "alice")
	x.Add(newOrder(2, 10, "300", "carol"), "alice")
	x.Add(newOrder(3, 11, "500", "bob"), "dave")
	x.Add(newOrder(4, 11, "100", "carol"), "dave")

	got := x.Query(core.OrdersAll, core.Asc, 0, 10)
	assert.Equal(t, []int64{4, 2, 1, 3}, got)

	// ids stay ascending within the equal-amount run
	got = x.Query(core.OrdersAll, core.Desc, 0, 10)
	assert.Equal(t, []int64{1, 3, 2, 4}, got)

	got = x.Query(core.OrdersAll, core.Asc, 1, 2)
	assert.Equal(t, []int64{2, 1}, got)

	// negative offset reads from the start
	got = x.Query(core.OrdersAll, core.Asc, -1, 2)
	assert.Equal(t, []int64{4, 2}, got)
}

func TestOrdersQueryFiltersByStatus(t *testing.T) {
	x := NewOrders()

	x.Add(newOrder(1, 10, "500", "bob"), "alice")
	x.Add(newOrder(2, 10, "300", "carol"), "alice")
	x.Add(newOrder(3, 11, "400", "bob"), "dave")

	x.UpdateStatus(2, core.StatusAssetsConfirmed)
	x.UpdateStatus(3, core.StatusCancelled)

	assert.Equal(t, []int64{1}, x.Query(core.OrdersRequestSent, core.Asc, 0, 10))
	assert.Equal(t, []int64{2}, x.Query(core.OrdersAssetsConfirmed, core.Asc, 0, 10))
	assert.Equal(t, []int64{3}, x.Query(core.OrdersCancelled, core.Asc, 0, 10))
	assert.Empty(t, x.Query(core.OrdersCompleted, core.Asc, 0, 10))

	// unknown id is ignored
	x.UpdateStatus(99, core.StatusCompleted)
	assert.Empty(t, x.Query(core.OrdersCompleted, core.Asc, 0, 10))
}
