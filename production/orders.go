/*
Package production runs assembly orders from creation to completion.

PURPOSE:
  An assembly order asks the workshop to build Quantity units of an
  assembly part. While it is PENDING, employees log hours against it.
  Completing it consumes the BOM components, prices the run (materials
  plus logged labor) and receives the finished units into stock at that
  price.

STATE MACHINE:
  PENDING --complete--> COMPLETED (terminal)
  PENDING --delete----> gone, together with its production logs

  A completed order and its logs are history: they cannot be edited or
  deleted.

LABOR PRICING:
  Hourly employees contribute hoursSpent * hourlyRate. Daily employees are
  priced per hour at dailyRate / 8.

SEE ALSO:
  - complete.go: The completion recipe
  - inventory/valuation.go: Material valuation and moving average
*/
package production

import (
	"github.com/shopspring/decimal"
	"github.com/warp/workshop-engine/workshop"
)

// HoursPerDay normalizes a daily rate to an hourly one.
var HoursPerDay = decimal.NewFromInt(8)

// =============================================================================
// ASSEMBLY ORDERS
// =============================================================================

func AddAssemblyOrder(st workshop.State, order workshop.AssemblyOrder, ids workshop.IDSource) (workshop.State, workshop.AssemblyOrder, error) {
	if err := validateOrder(st, order); err != nil {
		return st, workshop.AssemblyOrder{}, err
	}
	order.ID = workshop.AssemblyOrderID(ids.NextID())
	order.Status = workshop.AssemblyPending
	order.MaterialCost = nil
	order.LaborCost = nil
	return st.WithAssemblyOrder(order), order, nil
}

// EditAssemblyOrder changes target part, quantity or date of a pending order.
func EditAssemblyOrder(st workshop.State, order workshop.AssemblyOrder) (workshop.State, error) {
	if _, err := pendingOrder(st, order.ID, "edit"); err != nil {
		return st, err
	}
	if err := validateOrder(st, order); err != nil {
		return st, err
	}
	order.Status = workshop.AssemblyPending
	order.MaterialCost = nil
	order.LaborCost = nil
	return st.WithAssemblyOrder(order), nil
}

// DeleteAssemblyOrder removes a pending order and its production logs.
func DeleteAssemblyOrder(st workshop.State, id workshop.AssemblyOrderID) (workshop.State, error) {
	if _, err := pendingOrder(st, id, "delete"); err != nil {
		return st, err
	}
	return st.WithoutAssemblyOrder(id), nil
}

func pendingOrder(st workshop.State, id workshop.AssemblyOrderID, op string) (workshop.AssemblyOrder, error) {
	order, ok := st.AssemblyOrder(id)
	if !ok {
		return workshop.AssemblyOrder{}, workshop.NewNotFound("assembly order", id)
	}
	if order.Status != workshop.AssemblyPending {
		return workshop.AssemblyOrder{}, &workshop.InvalidStateError{
			Kind: "assembly order", ID: int64(id), State: string(order.Status), Op: op,
		}
	}
	return order, nil
}

func validateOrder(st workshop.State, order workshop.AssemblyOrder) error {
	if err := workshop.Validate(order); err != nil {
		return err
	}
	part, ok := st.Part(order.PartID)
	if !ok {
		return workshop.NewNotFound("part", order.PartID)
	}
	if !part.IsAssembly {
		return workshop.Invalid("partId", "assembly", part.Name+" is not an assembly")
	}
	return nil
}

// =============================================================================
// PRODUCTION LOGS
// =============================================================================

func AddProductionLog(st workshop.State, log workshop.ProductionLog, ids workshop.IDSource) (workshop.State, workshop.ProductionLog, error) {
	if err := validateLog(st, log); err != nil {
		return st, workshop.ProductionLog{}, err
	}
	log.ID = workshop.ProductionLogID(ids.NextID())
	return st.WithProductionLog(log), log, nil
}

func EditProductionLog(st workshop.State, log workshop.ProductionLog) (workshop.State, error) {
	current, ok := st.ProductionLog(log.ID)
	if !ok {
		return st, workshop.NewNotFound("production log", log.ID)
	}
	if err := parentPending(st, current, "edit"); err != nil {
		return st, err
	}
	if err := validateLog(st, log); err != nil {
		return st, err
	}
	return st.WithProductionLog(log), nil
}

func DeleteProductionLog(st workshop.State, id workshop.ProductionLogID) (workshop.State, error) {
	current, ok := st.ProductionLog(id)
	if !ok {
		return st, workshop.NewNotFound("production log", id)
	}
	if err := parentPending(st, current, "delete"); err != nil {
		return st, err
	}
	return st.WithoutProductionLog(id), nil
}

// parentPending refuses changes to logs of a completed order. Logs whose
// order no longer exists are orphans and may be removed.
func parentPending(st workshop.State, log workshop.ProductionLog, op string) error {
	order, ok := st.AssemblyOrder(log.AssemblyOrderID)
	if !ok {
		return nil
	}
	if order.Status != workshop.AssemblyPending {
		return &workshop.InvalidStateError{
			Kind: "production log", ID: int64(log.ID), State: "order " + string(order.Status), Op: op,
		}
	}
	return nil
}

func validateLog(st workshop.State, log workshop.ProductionLog) error {
	if err := workshop.Validate(log); err != nil {
		return err
	}
	if _, err := pendingOrder(st, log.AssemblyOrderID, "log work on"); err != nil {
		return err
	}
	if _, ok := st.Employee(log.EmployeeID); !ok {
		return workshop.NewNotFound("employee", log.EmployeeID)
	}
	return nil
}

// =============================================================================
// LABOR
// =============================================================================

// EffectiveHourlyRate is hourlyRate for hourly staff and dailyRate / 8 for
// daily staff.
func EffectiveHourlyRate(e workshop.Employee) decimal.Decimal {
	if e.PayType == workshop.PayHourly {
		return e.HourlyRate
	}
	return e.DailyRate.Div(HoursPerDay)
}

// LaborCost prices every production log of an order. Logs by employees that
// no longer exist contribute nothing.
func LaborCost(st workshop.State, id workshop.AssemblyOrderID) decimal.Decimal {
	total := decimal.Zero
	for _, log := range st.LogsFor(id) {
		e, ok := st.Employee(log.EmployeeID)
		if !ok {
			continue
		}
		total = total.Add(log.HoursSpent.Mul(EffectiveHourlyRate(e)))
	}
	return total
}
