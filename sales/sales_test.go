package sales_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workshop-engine/inventory"
	"github.com/warp/workshop-engine/sales"
	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func costPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

var (
	may15 = workshop.NewDate(2024, time.May, 15)
	may20 = workshop.NewDate(2024, time.May, 20)
)

// shopState: a Table (stock 10, cost 400000), a Chair (stock 3, cost
// 100000) and one customer.
func shopState() workshop.State {
	return workshop.State{}.
		WithPart(workshop.Part{ID: 1, Name: "Table", Stock: dec("10"), Cost: costPtr("400000")}).
		WithPart(workshop.Part{ID: 2, Name: "Chair", Stock: dec("3"), Cost: costPtr("100000")}).
		WithContact(workshop.Contact{ID: 9, Name: "Global Corp", Roles: []workshop.ContactRole{workshop.RoleCustomer}})
}

func newOrder(items ...workshop.OrderItem) workshop.SalesOrder {
	return workshop.SalesOrder{CustomerID: 9, Date: may15, DeliveryDate: may20, Items: items}
}

func item(id workshop.PartID, qty, price string) workshop.OrderItem {
	return workshop.OrderItem{ProductID: id, Quantity: dec(qty), Price: dec(price)}
}

func pay(amount string) workshop.Payment {
	return workshop.Payment{Amount: dec(amount), Date: may15}
}

// paidOrder adds an order and pays it in full.
func paidOrder(t *testing.T, st workshop.State, items ...workshop.OrderItem) (workshop.State, workshop.SalesOrder) {
	t.Helper()
	ids := &workshop.Sequence{Next: 500}
	st, order, err := sales.AddOrder(st, newOrder(items...), ids)
	require.NoError(t, err)
	st, order, err = sales.AddPayment(st, order.ID, workshop.Payment{Amount: order.TotalAmount, Date: may15}, sales.OverpaymentAccept, ids)
	require.NoError(t, err)
	require.Equal(t, workshop.OrderPaid, order.Status)
	return st, order
}

func stock(t *testing.T, st workshop.State, id workshop.PartID) decimal.Decimal {
	t.Helper()
	p, ok := st.Part(id)
	require.True(t, ok)
	return p.Stock
}

// =============================================================================
// ORDER LIFECYCLE TESTS
// =============================================================================

func TestOrder_PayThenDeliver(t *testing.T) {
	// GIVEN: An order totalling 10,000,000 (2 Tables at 5,000,000)
	ids := &workshop.Sequence{Next: 100}
	st, order, err := sales.AddOrder(shopState(), newOrder(item(1, "2", "5000000")), ids)
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(dec("10000000")))
	assert.Equal(t, workshop.OrderPending, order.Status)

	// WHEN: One payment of 10,000,000
	st, order, err = sales.AddPayment(st, order.ID, pay("10000000"), sales.OverpaymentAccept, ids)
	require.NoError(t, err)

	// THEN: PENDING -> PAID
	assert.Equal(t, workshop.OrderPaid, order.Status)

	// WHEN: Delivered
	st, delivery, err := sales.DeliverOrder(st, order.ID, inventory.Valuer{})
	require.NoError(t, err)

	// THEN: COGS = 2 * 400000, stock drops by exactly 2, status DELIVERED
	assert.True(t, delivery.CostOfGoodsSold.Equal(dec("800000")))
	assert.True(t, stock(t, st, 1).Equal(dec("8")))
	delivered, _ := st.Order(order.ID)
	assert.Equal(t, workshop.OrderDelivered, delivered.Status)
	require.NotNil(t, delivered.CostOfGoodsSold)
	assert.True(t, delivered.CostOfGoodsSold.Equal(dec("800000")))
}

func TestOrder_PartialPaymentsStayPending(t *testing.T) {
	ids := &workshop.Sequence{Next: 100}
	st, order, err := sales.AddOrder(shopState(), newOrder(item(1, "1", "1000")), ids)
	require.NoError(t, err)

	st, order, err = sales.AddPayment(st, order.ID, pay("400"), sales.OverpaymentAccept, ids)
	require.NoError(t, err)
	assert.Equal(t, workshop.OrderPending, order.Status)
	assert.True(t, sales.Remaining(order).Equal(dec("600")))

	_, order, err = sales.AddPayment(st, order.ID, pay("600"), sales.OverpaymentAccept, ids)
	require.NoError(t, err)
	assert.Equal(t, workshop.OrderPaid, order.Status)
	assert.Len(t, order.Payments, 2)
}

// =============================================================================
// DELIVERY TESTS
// =============================================================================

func TestDeliver_InsufficientStock(t *testing.T) {
	// GIVEN: A paid order for 5 Chairs with only 3 in stock
	st, order := paidOrder(t, shopState(), item(2, "5", "200000"))

	// WHEN: Delivering
	after, _, err := sales.DeliverOrder(st, order.ID, inventory.Valuer{})

	// THEN: InsufficientStockError naming Chair with 3 available, nothing changed
	var short *workshop.InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, "Chair", short.PartName)
	assert.True(t, short.Available.Equal(dec("3")))
	assert.Equal(t, st, after)
}

func TestDeliver_AllOrNothing(t *testing.T) {
	// GIVEN: 2 Tables (enough) and 5 Chairs (short)
	st, order := paidOrder(t, shopState(), item(1, "2", "1"), item(2, "5", "1"))

	// WHEN: Delivering
	after, _, err := sales.DeliverOrder(st, order.ID, inventory.Valuer{})

	// THEN: Neither line moved and the order is still PAID
	require.ErrorIs(t, err, workshop.ErrInsufficientStock)
	assert.True(t, stock(t, after, 1).Equal(dec("10")))
	assert.True(t, stock(t, after, 2).Equal(dec("3")))
	o, _ := after.Order(order.ID)
	assert.Equal(t, workshop.OrderPaid, o.Status)
	assert.Nil(t, o.CostOfGoodsSold)
}

func TestDeliver_DuplicateLinesAreSummed(t *testing.T) {
	// GIVEN: Two lines of 2 Chairs each, 3 in stock
	st, order := paidOrder(t, shopState(), item(2, "2", "1"), item(2, "2", "1"))

	_, _, err := sales.DeliverOrder(st, order.ID, inventory.Valuer{})
	assert.ErrorIs(t, err, workshop.ErrInsufficientStock)
}

func TestDeliver_RequiresPaid(t *testing.T) {
	ids := &workshop.Sequence{Next: 100}
	st, order, err := sales.AddOrder(shopState(), newOrder(item(1, "1", "1000")), ids)
	require.NoError(t, err)

	_, _, err = sales.DeliverOrder(st, order.ID, inventory.Valuer{})
	assert.ErrorIs(t, err, workshop.ErrInvalidState)

	_, _, err = sales.DeliverOrder(st, 999, inventory.Valuer{})
	assert.ErrorIs(t, err, workshop.ErrNotFound)
}

func TestDeliver_CannotDeliverTwice(t *testing.T) {
	st, order := paidOrder(t, shopState(), item(1, "1", "1"))
	st, _, err := sales.DeliverOrder(st, order.ID, inventory.Valuer{})
	require.NoError(t, err)

	_, _, err = sales.DeliverOrder(st, order.ID, inventory.Valuer{})
	assert.ErrorIs(t, err, workshop.ErrInvalidState)
}

func TestDeliver_COGSFrozen(t *testing.T) {
	// GIVEN: A delivered order for 2 Tables at cost 400000
	st, order := paidOrder(t, shopState(), item(1, "2", "500000"))
	st, _, err := sales.DeliverOrder(st, order.ID, inventory.Valuer{})
	require.NoError(t, err)

	// WHEN: The Table's cost changes afterwards
	table, _ := st.Part(1)
	st = st.WithPart(table.WithCost(dec("999999")))

	// THEN: The recorded COGS is unchanged
	o, _ := st.Order(order.ID)
	assert.True(t, o.CostOfGoodsSold.Equal(dec("800000")))
}

// =============================================================================
// PAYMENT POLICY TESTS
// =============================================================================

func TestAddPayment_OverpaymentPolicy(t *testing.T) {
	ids := &workshop.Sequence{Next: 100}
	st, order, err := sales.AddOrder(shopState(), newOrder(item(1, "1", "1000")), ids)
	require.NoError(t, err)

	// WHEN: Rejecting, an overpayment is refused and nothing changes
	after, _, err := sales.AddPayment(st, order.ID, pay("1500"), sales.OverpaymentReject, ids)
	var ve *workshop.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "overpayment", ve.Rule)
	assert.Equal(t, st, after)

	// WHEN: Accepting, it is recorded unclamped
	_, paid, err := sales.AddPayment(st, order.ID, pay("1500"), sales.OverpaymentAccept, ids)
	require.NoError(t, err)
	assert.Equal(t, workshop.OrderPaid, paid.Status)
	assert.True(t, sales.Remaining(paid).Equal(dec("-500")))
}

func TestAddPayment_Rules(t *testing.T) {
	st, order := paidOrder(t, shopState(), item(1, "1", "1000"))
	ids := &workshop.Sequence{Next: 200}

	_, _, err := sales.AddPayment(st, order.ID, pay("1"), sales.OverpaymentAccept, ids)
	assert.ErrorIs(t, err, workshop.ErrInvalidState, "already paid")

	st2, pending, err := sales.AddOrder(st, newOrder(item(1, "1", "1000")), ids)
	require.NoError(t, err)
	_, _, err = sales.AddPayment(st2, pending.ID, pay("0"), sales.OverpaymentAccept, ids)
	assert.ErrorIs(t, err, workshop.ErrValidation, "zero amount")
}

func TestParsePaymentPolicy(t *testing.T) {
	p, err := sales.ParsePaymentPolicy("REJECT")
	require.NoError(t, err)
	assert.Equal(t, sales.OverpaymentReject, p)

	_, err = sales.ParsePaymentPolicy("clamp")
	assert.Error(t, err)
}

// =============================================================================
// ORDER CRUD TESTS
// =============================================================================

func TestAddOrder_Validation(t *testing.T) {
	ids := &workshop.Sequence{Next: 100}
	st := shopState()

	_, _, err := sales.AddOrder(st, newOrder(), ids)
	assert.ErrorIs(t, err, workshop.ErrValidation, "no lines")

	_, _, err = sales.AddOrder(st, newOrder(item(1, "0", "10")), ids)
	assert.ErrorIs(t, err, workshop.ErrValidation, "zero quantity")

	_, _, err = sales.AddOrder(st, newOrder(item(1, "1", "-1")), ids)
	assert.ErrorIs(t, err, workshop.ErrValidation, "negative price")

	_, _, err = sales.AddOrder(st, newOrder(item(77, "1", "10")), ids)
	assert.ErrorIs(t, err, workshop.ErrNotFound, "unknown product")

	o := newOrder(item(1, "1", "10"))
	o.CustomerID = 77
	_, _, err = sales.AddOrder(st, o, ids)
	assert.ErrorIs(t, err, workshop.ErrNotFound, "unknown customer")
}

func TestEditOrder_OnlyUnpaidPending(t *testing.T) {
	ids := &workshop.Sequence{Next: 100}
	st, order, err := sales.AddOrder(shopState(), newOrder(item(1, "1", "1000")), ids)
	require.NoError(t, err)

	// Editable while untouched
	order.Items = []workshop.OrderItem{item(1, "3", "1000")}
	st, edited, err := sales.EditOrder(st, order)
	require.NoError(t, err)
	assert.True(t, edited.TotalAmount.Equal(dec("3000")))

	// Not after a payment
	st, _, err = sales.AddPayment(st, order.ID, pay("10"), sales.OverpaymentAccept, ids)
	require.NoError(t, err)
	_, _, err = sales.EditOrder(st, edited)
	assert.ErrorIs(t, err, workshop.ErrInvalidState)
}

func TestEditOrder_CustomerDeletedMeanwhile(t *testing.T) {
	// GIVEN: A pending order whose customer was then deleted
	ids := &workshop.Sequence{Next: 100}
	st, order, err := sales.AddOrder(shopState(), newOrder(item(1, "1", "1000")), ids)
	require.NoError(t, err)
	st = st.WithoutContact(9)

	// WHEN: Its lines are edited with the same customer
	order.Items = []workshop.OrderItem{item(1, "2", "1000")}
	st, edited, err := sales.EditOrder(st, order)

	// THEN: Accepted
	require.NoError(t, err)
	assert.True(t, edited.TotalAmount.Equal(dec("2000")))

	// Switching to another missing customer is still refused
	edited.CustomerID = 77
	_, _, err = sales.EditOrder(st, edited)
	assert.ErrorIs(t, err, workshop.ErrNotFound)
}

func TestAddOrder_CustomerMustHaveCustomerRole(t *testing.T) {
	ids := &workshop.Sequence{Next: 100}
	st := shopState().WithContact(workshop.Contact{ID: 12, Name: "Metal Supply", Roles: []workshop.ContactRole{workshop.RoleSupplier}})

	o := newOrder(item(1, "1", "10"))
	o.CustomerID = 12
	after, _, err := sales.AddOrder(st, o, ids)

	var ve *workshop.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "customerId", ve.Field)
	assert.Equal(t, "role", ve.Rule)
	assert.Equal(t, st, after)
}

func TestAddOrder_ZeroTotalStartsPaid(t *testing.T) {
	// GIVEN: An order of a free sample
	ids := &workshop.Sequence{Next: 100}
	st, order, err := sales.AddOrder(shopState(), newOrder(item(2, "1", "0")), ids)
	require.NoError(t, err)

	// THEN: Nothing is owed, so it is PAID and deliverable under either policy
	assert.Equal(t, workshop.OrderPaid, order.Status)
	st, _, err = sales.DeliverOrder(st, order.ID, inventory.Valuer{})
	require.NoError(t, err)
	delivered, _ := st.Order(order.ID)
	assert.Equal(t, workshop.OrderDelivered, delivered.Status)
	assert.True(t, stock(t, st, 2).Equal(dec("2")))
}

func TestDeleteOrder_AnyStateNoStockEffect(t *testing.T) {
	st, order := paidOrder(t, shopState(), item(1, "2", "1"))
	st, _, err := sales.DeliverOrder(st, order.ID, inventory.Valuer{})
	require.NoError(t, err)

	st, err = sales.DeleteOrder(st, order.ID)
	require.NoError(t, err)
	assert.Empty(t, st.Orders)
	assert.True(t, stock(t, st, 1).Equal(dec("8")))
}

func TestOverdue(t *testing.T) {
	ids := &workshop.Sequence{Next: 100}
	st, late, err := sales.AddOrder(shopState(), newOrder(item(1, "1", "1")), ids)
	require.NoError(t, err)
	st, _ = paidOrder(t, st, item(1, "1", "1"))

	today := workshop.NewDate(2024, time.June, 1)
	overdue := sales.Overdue(st, today)

	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)
	assert.Equal(t, 12, sales.DaysOverdue(overdue[0], today))
}
