/*
Package sales handles customer orders, their payments and their delivery.

STATE MACHINE:
  PENDING --payments cover total--> PAID --deliver--> DELIVERED

  - Payments are accepted only while PENDING. The order flips to PAID the
    moment the paid sum reaches the total. A zero-total order is created
    PAID.
  - Delivery requires PAID and enough finished stock for every line.
  - Deleting an order is the cancel path. It is allowed in any state and
    never touches stock.
  - CANCELLED exists for snapshots that carry it; no command produces it.

COST OF GOODS SOLD:
  Computed once, at delivery, from the valuation in force at that moment,
  and frozen on the order. Later cost changes do not reach it.

SEE ALSO:
  - payments.go: PaymentPolicy and AddPayment
  - deliver.go: The delivery recipe
  - reports/: Revenue and COGS aggregation
*/
package sales

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// ORDER CRUD
// =============================================================================

// AddOrder creates an order with no payments. The total is computed from
// the lines and fixed from here on. An order with nothing to pay starts
// PAID, otherwise PENDING.
func AddOrder(st workshop.State, order workshop.SalesOrder, ids workshop.IDSource) (workshop.State, workshop.SalesOrder, error) {
	if err := validateOrder(st, order, 0); err != nil {
		return st, workshop.SalesOrder{}, err
	}
	order.ID = workshop.OrderID(ids.NextID())
	order.TotalAmount = Total(order.Items)
	order.Payments = []workshop.Payment{}
	order.Status = openingStatus(order.TotalAmount)
	order.CostOfGoodsSold = nil
	return st.WithOrder(order), order, nil
}

// EditOrder replaces customer, dates and lines of an order that is still
// PENDING and has no payments yet.
func EditOrder(st workshop.State, order workshop.SalesOrder) (workshop.State, workshop.SalesOrder, error) {
	current, ok := st.Order(order.ID)
	if !ok {
		return st, workshop.SalesOrder{}, workshop.NewNotFound("order", order.ID)
	}
	if current.Status != workshop.OrderPending || len(current.Payments) > 0 {
		state := string(current.Status)
		if current.Status == workshop.OrderPending {
			state = "PENDING with payments"
		}
		return st, workshop.SalesOrder{}, &workshop.InvalidStateError{
			Kind: "order", ID: int64(order.ID), State: state, Op: "edit",
		}
	}
	if err := validateOrder(st, order, current.CustomerID); err != nil {
		return st, workshop.SalesOrder{}, err
	}
	order.TotalAmount = Total(order.Items)
	order.Payments = []workshop.Payment{}
	order.Status = openingStatus(order.TotalAmount)
	order.CostOfGoodsSold = nil
	return st.WithOrder(order), order, nil
}

// DeleteOrder removes an order in any state. Stock is not touched.
func DeleteOrder(st workshop.State, id workshop.OrderID) (workshop.State, error) {
	if _, ok := st.Order(id); !ok {
		return st, workshop.NewNotFound("order", id)
	}
	return st.WithoutOrder(id), nil
}

// openingStatus is PAID for a zero total, which no payment could settle
// under OverpaymentReject.
func openingStatus(total decimal.Decimal) workshop.OrderStatus {
	if total.IsZero() {
		return workshop.OrderPaid
	}
	return workshop.OrderPending
}

// validateOrder checks the order. kept is the customer already on record,
// which is accepted even if it has since been deleted.
func validateOrder(st workshop.State, order workshop.SalesOrder, kept workshop.ContactID) error {
	if err := workshop.Validate(order); err != nil {
		return err
	}
	if order.CustomerID == 0 {
		return workshop.Invalid("customerId", "required", "a customer is required")
	}
	if order.CustomerID != kept {
		if err := workshop.CheckContactRole(st, "customerId", order.CustomerID, workshop.RoleCustomer); err != nil {
			return err
		}
	}
	for _, item := range order.Items {
		if _, ok := st.Part(item.ProductID); !ok {
			return workshop.NewNotFound("part", item.ProductID)
		}
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Total is the sum of quantity * price over the lines.
func Total(items []workshop.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Paid sums recorded payments.
func Paid(order workshop.SalesOrder) decimal.Decimal {
	paid := decimal.Zero
	for _, p := range order.Payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// Remaining is total minus paid. It goes negative after an accepted
// overpayment; it is not clamped.
func Remaining(order workshop.SalesOrder) decimal.Decimal {
	return order.TotalAmount.Sub(Paid(order))
}

// Overdue lists PENDING orders whose delivery date is before today.
func Overdue(st workshop.State, today workshop.Date) []workshop.SalesOrder {
	var out []workshop.SalesOrder
	for _, o := range st.Orders {
		if o.Status == workshop.OrderPending && !o.DeliveryDate.IsZero() && o.DeliveryDate.Before(today) {
			out = append(out, o)
		}
	}
	return out
}

// Pending lists orders not yet paid in full.
func Pending(st workshop.State) []workshop.SalesOrder {
	var out []workshop.SalesOrder
	for _, o := range st.Orders {
		if o.Status == workshop.OrderPending {
			out = append(out, o)
		}
	}
	return out
}

// DaysOverdue counts whole days between the delivery date and today.
func DaysOverdue(order workshop.SalesOrder, today workshop.Date) int {
	if order.DeliveryDate.IsZero() || !order.DeliveryDate.Before(today) {
		return 0
	}
	return int(today.Time.Sub(order.DeliveryDate.Time) / (24 * time.Hour))
}
