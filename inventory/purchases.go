package inventory

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// PURCHASE RECEIPT
// =============================================================================

// PurchaseOptions configures parts created by a purchase line that names
// no existing part.
type PurchaseOptions struct {
	DefaultThreshold decimal.Decimal
}

func DefaultPurchaseOptions() PurchaseOptions {
	return PurchaseOptions{DefaultThreshold: decimal.NewFromInt(10)}
}

// AddPurchase records an invoice and receives every line into stock.
//
// Lines are matched to parts by case-insensitive name:
//   - raw material: moving-average receipt at the line's unit price
//   - assembly: stock only, the stored cost is left alone
//   - no match: a new raw material with stock=quantity, cost=unitPrice
func AddPurchase(st workshop.State, inv workshop.PurchaseInvoice, ids workshop.IDSource, opts PurchaseOptions) (workshop.State, workshop.PurchaseInvoice, error) {
	inv.Items = normalizeItems(inv.Items)
	if err := validatePurchase(st, inv, 0); err != nil {
		return st, workshop.PurchaseInvoice{}, err
	}

	inv.ID = workshop.PurchaseID(ids.NextID())
	for i := range inv.Items {
		if inv.Items[i].ID == 0 {
			inv.Items[i].ID = ids.NextID()
		}
	}
	inv.TotalAmount = purchaseTotal(inv.Items)

	for _, item := range inv.Items {
		st = receive(st, item, ids, opts)
	}
	return st.WithPurchase(inv), inv, nil
}

func receive(st workshop.State, item workshop.PurchaseItem, ids workshop.IDSource, opts PurchaseOptions) workshop.State {
	part, ok := st.PartByName(item.ItemName)
	if !ok {
		return st.WithPart(newPurchasedPart(item, ids, opts))
	}
	if part.IsAssembly {
		return st.WithPart(part.WithStock(part.Stock.Add(item.Quantity)))
	}
	return st.WithPart(ApplyWeightedAverageReceipt(part, item.Quantity, item.UnitPrice))
}

func newPurchasedPart(item workshop.PurchaseItem, ids workshop.IDSource, opts PurchaseOptions) workshop.Part {
	cost := item.UnitPrice
	return workshop.Part{
		ID:        workshop.PartID(ids.NextID()),
		Name:      item.ItemName,
		Stock:     item.Quantity,
		Threshold: opts.DefaultThreshold,
		Cost:      &cost,
	}
}

// EditPurchase replaces an invoice and moves stock by the net quantity
// change per item name. Costs are not recomputed: a corrected unit price
// does not reach the part's moving average.
//
// A net decrease that would take a part below zero is refused. A net
// increase for a name with no part creates it, as AddPurchase would.
// The supplier is only looked up again when it changes, so invoices of a
// deleted supplier stay editable.
func EditPurchase(st workshop.State, inv workshop.PurchaseInvoice, ids workshop.IDSource, opts PurchaseOptions) (workshop.State, workshop.PurchaseInvoice, error) {
	original, ok := st.Purchase(inv.ID)
	if !ok {
		return st, workshop.PurchaseInvoice{}, workshop.NewNotFound("purchase", inv.ID)
	}
	inv.Items = normalizeItems(inv.Items)
	if err := validatePurchase(st, inv, original.SupplierID); err != nil {
		return st, workshop.PurchaseInvoice{}, err
	}

	deltas := netDeltas(original.Items, inv.Items)

	// Check every decrease before touching stock.
	for _, d := range deltas {
		if !d.qty.IsNegative() {
			continue
		}
		part, ok := st.PartByName(d.name)
		if !ok {
			continue
		}
		if part.Stock.Add(d.qty).IsNegative() {
			return st, workshop.PurchaseInvoice{}, &workshop.InsufficientStockError{
				PartID: part.ID, PartName: part.Name, Available: part.Stock, Required: d.qty.Neg(),
			}
		}
	}

	for _, d := range deltas {
		if d.qty.IsZero() {
			continue
		}
		part, ok := st.PartByName(d.name)
		switch {
		case ok:
			st = st.WithPart(part.WithStock(part.Stock.Add(d.qty)))
		case d.qty.IsPositive():
			st = st.WithPart(newPurchasedPart(workshop.PurchaseItem{
				ItemName: d.name, Quantity: d.qty, UnitPrice: d.unitPrice,
			}, ids, opts))
		}
	}

	for i := range inv.Items {
		if inv.Items[i].ID == 0 {
			inv.Items[i].ID = ids.NextID()
		}
	}
	inv.TotalAmount = purchaseTotal(inv.Items)
	return st.WithPurchase(inv), inv, nil
}

// DeletePurchase removes the invoice only. Stock it brought in stays.
func DeletePurchase(st workshop.State, id workshop.PurchaseID) (workshop.State, error) {
	if _, ok := st.Purchase(id); !ok {
		return st, workshop.NewNotFound("purchase", id)
	}
	return st.WithoutPurchase(id), nil
}

// =============================================================================
// HELPERS
// =============================================================================

type nameDelta struct {
	name      string
	qty       decimal.Decimal
	unitPrice decimal.Decimal
}

// netDeltas subtracts old quantities and adds new ones per lower-cased
// name, in first-occurrence order. The unit price is the last new-line
// price seen for the name.
func netDeltas(before, after []workshop.PurchaseItem) []nameDelta {
	index := map[string]int{}
	var out []nameDelta
	add := func(item workshop.PurchaseItem, sign int64, price bool) {
		key := strings.ToLower(item.ItemName)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, nameDelta{name: item.ItemName, qty: decimal.Zero})
		}
		out[i].qty = out[i].qty.Add(item.Quantity.Mul(decimal.NewFromInt(sign)))
		if price {
			out[i].name = item.ItemName
			out[i].unitPrice = item.UnitPrice
		}
	}
	for _, item := range before {
		add(item, -1, false)
	}
	for _, item := range after {
		add(item, 1, true)
	}
	return out
}

func normalizeItems(items []workshop.PurchaseItem) []workshop.PurchaseItem {
	out := make([]workshop.PurchaseItem, len(items))
	for i, item := range items {
		item.ItemName = strings.TrimSpace(item.ItemName)
		out[i] = item
	}
	return out
}

// validatePurchase checks the invoice. kept is the supplier already on
// record, which is accepted as is.
func validatePurchase(st workshop.State, inv workshop.PurchaseInvoice, kept workshop.ContactID) error {
	if err := workshop.Validate(inv); err != nil {
		return err
	}
	if inv.SupplierID == 0 {
		return workshop.Invalid("supplierId", "required", "a supplier is required")
	}
	if inv.SupplierID == kept {
		return nil
	}
	return workshop.CheckContactRole(st, "supplierId", inv.SupplierID, workshop.RoleSupplier)
}

func purchaseTotal(items []workshop.PurchaseItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
