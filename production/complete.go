package production

import (
	"github.com/shopspring/decimal"
	"github.com/warp/workshop-engine/inventory"
	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// COMPLETE ASSEMBLY ORDER
// =============================================================================

// Completion reports what a finished run cost and where it left the part.
type Completion struct {
	OrderID      workshop.AssemblyOrderID `json:"orderId"`
	PartID       workshop.PartID          `json:"partId"`
	Quantity     decimal.Decimal          `json:"quantity"`
	MaterialCost decimal.Decimal          `json:"materialCost"`
	LaborCost    decimal.Decimal          `json:"laborCost"`
	CostPerUnit  decimal.Decimal          `json:"costPerUnit"`
	NewStock     decimal.Decimal          `json:"newStock"`
	NewCost      decimal.Decimal          `json:"newCost"`
}

// CompleteAssemblyOrder builds a pending order in one step:
//
//  1. every BOM component, scaled by the order quantity, is checked first;
//     one short component rejects the whole run
//  2. components leave stock
//  3. materialCost = sum(resolveCost(component) * qty * orderQty)
//  4. laborCost    = sum(hoursSpent * effective hourly rate)
//  5. the finished units are received at (material + labor) / orderQty
//  6. both costs are frozen on the order, which becomes COMPLETED
func CompleteAssemblyOrder(st workshop.State, id workshop.AssemblyOrderID, valuer inventory.Valuer) (workshop.State, Completion, error) {
	order, err := pendingOrder(st, id, "complete")
	if err != nil {
		return st, Completion{}, err
	}
	part, ok := st.Part(order.PartID)
	if !ok {
		return st, Completion{}, workshop.NewNotFound("part", order.PartID)
	}
	if !part.HasRecipe() {
		return st, Completion{}, &workshop.MissingRecipeError{PartID: part.ID, PartName: part.Name}
	}
	if !order.Quantity.IsPositive() {
		return st, Completion{}, workshop.Invalid("quantity", "gt", "order quantity must be positive")
	}

	reqs := inventory.BOMRequirements(part, order.Quantity)
	if err := inventory.CheckRequirements(st, reqs); err != nil {
		return st, Completion{}, err
	}

	material := decimal.Zero
	for _, r := range reqs {
		material = material.Add(valuer.ResolveCost(st, r.PartID).Mul(r.Quantity))
	}
	labor := LaborCost(st, order.ID)
	perUnit := material.Add(labor).Div(order.Quantity)

	next := inventory.Deduct(st, reqs)
	target, _ := next.Part(part.ID)
	target = inventory.ApplyWeightedAverageReceipt(target, order.Quantity, perUnit)
	next = next.WithPart(target)

	order.Status = workshop.AssemblyCompleted
	order.MaterialCost = &material
	order.LaborCost = &labor
	next = next.WithAssemblyOrder(order)

	return next, Completion{
		OrderID:      order.ID,
		PartID:       part.ID,
		Quantity:     order.Quantity,
		MaterialCost: material,
		LaborCost:    labor,
		CostPerUnit:  perUnit,
		NewStock:     target.Stock,
		NewCost:      target.CostValue(),
	}, nil
}
