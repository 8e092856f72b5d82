/*
Package inventory values parts and guards every stock movement.

PURPOSE:
  Answers two questions for the rest of the engine:
    1. What is one unit of this part worth right now?   (Valuer.ResolveCost)
    2. Can this much stock leave the shelf?              (CheckRequirements)
  It also owns the purchase receipt recipe and part CRUD, since both write
  stock and cost.

KEY CONCEPTS:
  Raw material: IsAssembly=false. Cost is set directly and moves with every
    purchase receipt through the moving-average formula.
  Assembly: IsAssembly=true with a BOM. Its stored Cost is the moving
    average of its production runs; ResolveCost may ignore it (see
    Discipline).

COST DISCIPLINES:
  CostRecursive (default): assemblies are always valued from their BOM at
    current component costs. No stale-cost risk.
  CostStored: assemblies are valued at their stored moving-average cost,
    falling back to the BOM when no cost was ever recorded.

  Raw materials behave the same under both disciplines.

CYCLE GUARD:
  A BOM that reaches back to a part already on the current path (A -> B -> A)
  contributes 0 for the repeated edge. The guard is path-scoped, so a part
  shared by two branches (diamond BOM) is counted on each branch.

SEE ALSO:
  - stock.go: Sufficiency prechecks
  - purchases.go: Purchase receipt recipe
  - production/complete.go: Assembly completion uses both halves
*/
package inventory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// COST DISCIPLINE
// =============================================================================

type Discipline string

const (
	CostRecursive Discipline = "recursive"
	CostStored    Discipline = "stored"
)

// ParseDiscipline accepts "recursive" or "stored"; empty means recursive.
func ParseDiscipline(s string) (Discipline, error) {
	switch Discipline(strings.ToLower(strings.TrimSpace(s))) {
	case "", CostRecursive:
		return CostRecursive, nil
	case CostStored:
		return CostStored, nil
	default:
		return "", fmt.Errorf("unknown cost discipline %q", s)
	}
}

// =============================================================================
// VALUER
// =============================================================================

// Valuer resolves unit costs under one discipline. The zero value uses
// CostRecursive.
type Valuer struct {
	Discipline Discipline
}

// ResolveCost returns the unit cost of a part. Unknown parts cost 0.
// Results are never cached between calls.
func (v Valuer) ResolveCost(st workshop.State, id workshop.PartID) decimal.Decimal {
	return v.resolve(st, id, map[workshop.PartID]bool{})
}

func (v Valuer) resolve(st workshop.State, id workshop.PartID, path map[workshop.PartID]bool) decimal.Decimal {
	if path[id] {
		return decimal.Zero
	}
	part, ok := st.Part(id)
	if !ok {
		return decimal.Zero
	}
	if !part.IsAssembly {
		return part.CostValue()
	}
	if v.Discipline == CostStored && part.Cost != nil {
		return *part.Cost
	}

	path[id] = true
	defer delete(path, id)

	total := decimal.Zero
	for _, c := range part.Components {
		total = total.Add(v.resolve(st, c.PartID, path).Mul(c.Quantity))
	}
	return total
}

// =============================================================================
// MOVING AVERAGE
// =============================================================================

// ApplyWeightedAverageReceipt takes qty units at unitCost into stock.
//
//	newCost  = stock > 0 ? (stock*cost + qty*unitCost) / (stock+qty) : unitCost
//	newStock = stock + qty
//
// Purchases and completed production runs both receive through here.
func ApplyWeightedAverageReceipt(part workshop.Part, qty, unitCost decimal.Decimal) workshop.Part {
	newStock := part.Stock.Add(qty)
	newCost := unitCost
	if part.Stock.IsPositive() && newStock.IsPositive() {
		existing := part.Stock.Mul(part.CostValue())
		incoming := qty.Mul(unitCost)
		newCost = existing.Add(incoming).Div(newStock)
	}
	return part.WithStock(newStock).WithCost(newCost)
}
