package inventory

import (
	"github.com/shopspring/decimal"
	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// STOCK TRANSITION VALIDATOR
// =============================================================================

// Requirement is an amount of one part that a transition wants to remove.
type Requirement struct {
	PartID   workshop.PartID
	Quantity decimal.Decimal
}

// CheckSufficiency fails with *InsufficientStockError when the part holds
// less than required, and with *NotFoundError when the part does not exist.
func CheckSufficiency(st workshop.State, id workshop.PartID, required decimal.Decimal) error {
	part, ok := st.Part(id)
	if !ok {
		return workshop.NewNotFound("part", id)
	}
	if part.Stock.LessThan(required) {
		return &workshop.InsufficientStockError{
			PartID:    part.ID,
			PartName:  part.Name,
			Available: part.Stock,
			Required:  required,
		}
	}
	return nil
}

// CheckRequirements checks every requirement before reporting. Lines naming
// the same part are summed first, so two lines of 3 against a stock of 5
// fail. Returns the first shortage in line order.
func CheckRequirements(st workshop.State, reqs []Requirement) error {
	for _, r := range Merge(reqs) {
		if err := CheckSufficiency(st, r.PartID, r.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Merge sums requirements per part, keeping first-occurrence order.
func Merge(reqs []Requirement) []Requirement {
	index := make(map[workshop.PartID]int, len(reqs))
	var out []Requirement
	for _, r := range reqs {
		if i, ok := index[r.PartID]; ok {
			out[i].Quantity = out[i].Quantity.Add(r.Quantity)
			continue
		}
		index[r.PartID] = len(out)
		out = append(out, r)
	}
	return out
}

// BOMRequirements scales an assembly's BOM by the number of units to build.
func BOMRequirements(part workshop.Part, units decimal.Decimal) []Requirement {
	reqs := make([]Requirement, 0, len(part.Components))
	for _, c := range part.Components {
		reqs = append(reqs, Requirement{PartID: c.PartID, Quantity: c.Quantity.Mul(units)})
	}
	return reqs
}

// Deduct removes every requirement from stock. Callers check first; Deduct
// itself does not refuse.
func Deduct(st workshop.State, reqs []Requirement) workshop.State {
	for _, r := range Merge(reqs) {
		part, ok := st.Part(r.PartID)
		if !ok {
			continue
		}
		st = st.WithPart(part.WithStock(part.Stock.Sub(r.Quantity)))
	}
	return st
}

// LowStock lists parts whose stock is below their reorder threshold.
func LowStock(st workshop.State) []workshop.Part {
	var out []workshop.Part
	for _, p := range st.Parts {
		if p.Stock.LessThan(p.Threshold) {
			out = append(out, p)
		}
	}
	return out
}
