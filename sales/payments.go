package sales

import (
	"fmt"

	"github.com/warp/workshop-engine/workshop"
)

// PaymentPolicy is the overpayment rule applied to order payments.
type PaymentPolicy = workshop.OverpaymentPolicy

const (
	OverpaymentAccept = workshop.OverpaymentAccept
	OverpaymentReject = workshop.OverpaymentReject
)

func ParsePaymentPolicy(s string) (PaymentPolicy, error) {
	return workshop.ParseOverpaymentPolicy(s)
}

// AddPayment records a payment on a PENDING order and flips it to PAID once
// the paid sum reaches the total.
func AddPayment(st workshop.State, id workshop.OrderID, payment workshop.Payment, policy PaymentPolicy, ids workshop.IDSource) (workshop.State, workshop.SalesOrder, error) {
	order, ok := st.Order(id)
	if !ok {
		return st, workshop.SalesOrder{}, workshop.NewNotFound("order", id)
	}
	if order.Status != workshop.OrderPending {
		return st, workshop.SalesOrder{}, &workshop.InvalidStateError{
			Kind: "order", ID: int64(id), State: string(order.Status), Op: "pay",
		}
	}
	if err := workshop.Validate(payment); err != nil {
		return st, workshop.SalesOrder{}, err
	}
	if policy == OverpaymentReject && payment.Amount.GreaterThan(Remaining(order)) {
		return st, workshop.SalesOrder{}, workshop.Invalid("amount", "overpayment",
			fmt.Sprintf("payment %s exceeds remaining balance %s", payment.Amount, Remaining(order)))
	}

	payment.ID = workshop.PaymentID(ids.NextID())
	payments := make([]workshop.Payment, 0, len(order.Payments)+1)
	payments = append(payments, order.Payments...)
	order.Payments = append(payments, payment)

	if Paid(order).GreaterThanOrEqual(order.TotalAmount) {
		order.Status = workshop.OrderPaid
	}
	return st.WithOrder(order), order, nil
}
