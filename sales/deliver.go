package sales

import (
	"github.com/shopspring/decimal"
	"github.com/warp/workshop-engine/inventory"
	"github.com/warp/workshop-engine/workshop"
)

// Delivery reports the frozen cost of a delivered order.
type Delivery struct {
	OrderID         workshop.OrderID `json:"orderId"`
	CostOfGoodsSold decimal.Decimal  `json:"costOfGoodsSold"`
	Lines           []DeliveredLine  `json:"lines"`
}

type DeliveredLine struct {
	ProductID workshop.PartID `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unitCost"`
}

// DeliverOrder ships a PAID order. Every line is checked against the
// product's own stock before anything moves; components of assembled
// products are not touched. COGS is valued now and frozen on the order.
func DeliverOrder(st workshop.State, id workshop.OrderID, valuer inventory.Valuer) (workshop.State, Delivery, error) {
	order, ok := st.Order(id)
	if !ok {
		return st, Delivery{}, workshop.NewNotFound("order", id)
	}
	if order.Status != workshop.OrderPaid {
		return st, Delivery{}, &workshop.InvalidStateError{
			Kind: "order", ID: int64(id), State: string(order.Status), Op: "deliver",
		}
	}

	reqs := make([]inventory.Requirement, 0, len(order.Items))
	for _, item := range order.Items {
		reqs = append(reqs, inventory.Requirement{PartID: item.ProductID, Quantity: item.Quantity})
	}
	if err := inventory.CheckRequirements(st, reqs); err != nil {
		return st, Delivery{}, err
	}

	delivery := Delivery{OrderID: id, CostOfGoodsSold: decimal.Zero}
	for _, item := range order.Items {
		unit := valuer.ResolveCost(st, item.ProductID)
		delivery.Lines = append(delivery.Lines, DeliveredLine{
			ProductID: item.ProductID, Quantity: item.Quantity, UnitCost: unit,
		})
		delivery.CostOfGoodsSold = delivery.CostOfGoodsSold.Add(unit.Mul(item.Quantity))
	}

	next := inventory.Deduct(st, reqs)
	cogs := delivery.CostOfGoodsSold
	order.CostOfGoodsSold = &cogs
	order.Status = workshop.OrderDelivered
	return next.WithOrder(order), delivery, nil
}
