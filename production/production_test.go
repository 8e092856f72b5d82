package production_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workshop-engine/inventory"
	"github.com/warp/workshop-engine/production"
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

var may10 = workshop.NewDate(2024, time.May, 10)

// workshopState: A(1000) and B(5000) in stock, Bracket = 2A + 8B,
// one hourly and one daily employee, and a pending order for 10 Brackets.
func workshopState(aStock, bStock string) workshop.State {
	return workshop.State{}.
		WithPart(workshop.Part{ID: 1, Name: "A", Stock: dec(aStock), Cost: costPtr("1000")}).
		WithPart(workshop.Part{ID: 2, Name: "B", Stock: dec(bStock), Cost: costPtr("5000")}).
		WithPart(workshop.Part{ID: 3, Name: "Bracket", IsAssembly: true, Stock: dec("0"), Components: []workshop.Component{
			{PartID: 1, Quantity: dec("2")},
			{PartID: 2, Quantity: dec("8")},
		}}).
		WithEmployee(workshop.Employee{ID: 20, Name: "Ali", PayType: workshop.PayHourly, HourlyRate: dec("150000")}).
		WithEmployee(workshop.Employee{ID: 21, Name: "Sara", PayType: workshop.PayDaily, DailyRate: dec("800000")}).
		WithAssemblyOrder(workshop.AssemblyOrder{ID: 30, PartID: 3, Quantity: dec("10"), Date: may10, Status: workshop.AssemblyPending})
}

func mustPart(t *testing.T, st workshop.State, id workshop.PartID) workshop.Part {
	t.Helper()
	p, ok := st.Part(id)
	require.True(t, ok)
	return p
}

// =============================================================================
// COMPLETION TESTS
// =============================================================================

func TestComplete_BracketScenario(t *testing.T) {
	// GIVEN: 10 Brackets with one 2-hour log by an hourly employee at 150000
	st := workshopState("100", "100").
		WithProductionLog(workshop.ProductionLog{ID: 40, AssemblyOrderID: 30, EmployeeID: 20, Date: may10, HoursSpent: dec("2")})

	// WHEN: Completed
	st, done, err := production.CompleteAssemblyOrder(st, 30, inventory.Valuer{})
	require.NoError(t, err)

	// THEN: material 420000, labor 300000, 72000 per unit
	assert.True(t, done.MaterialCost.Equal(dec("420000")), "material %s", done.MaterialCost)
	assert.True(t, done.LaborCost.Equal(dec("300000")), "labor %s", done.LaborCost)
	assert.True(t, done.CostPerUnit.Equal(dec("72000")), "per unit %s", done.CostPerUnit)

	// AND: Bracket received 10 units at 72000
	b := mustPart(t, st, 3)
	assert.True(t, b.Stock.Equal(dec("10")))
	assert.True(t, b.CostValue().Equal(dec("72000")))

	// AND: Components consumed
	assert.True(t, mustPart(t, st, 1).Stock.Equal(dec("80")))
	assert.True(t, mustPart(t, st, 2).Stock.Equal(dec("20")))

	// AND: Costs frozen on the order
	order, _ := st.AssemblyOrder(30)
	assert.Equal(t, workshop.AssemblyCompleted, order.Status)
	require.NotNil(t, order.MaterialCost)
	require.NotNil(t, order.LaborCost)
	assert.True(t, order.MaterialCost.Equal(dec("420000")))
	assert.True(t, order.LaborCost.Equal(dec("300000")))
}

func TestComplete_AllOrNothing(t *testing.T) {
	// GIVEN: Enough A but only 79 B (80 needed)
	st := workshopState("100", "79")

	// WHEN: Completing
	after, _, err := production.CompleteAssemblyOrder(st, 30, inventory.Valuer{})

	// THEN: Rejected naming B, and no stock moved
	var short *workshop.InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, "B", short.PartName)
	assert.True(t, short.Available.Equal(dec("79")))
	assert.Equal(t, st, after)
	assert.True(t, mustPart(t, after, 1).Stock.Equal(dec("100")))
	order, _ := after.AssemblyOrder(30)
	assert.Equal(t, workshop.AssemblyPending, order.Status)
}

func TestComplete_MissingRecipe(t *testing.T) {
	st := workshopState("100", "100").
		WithPart(workshop.Part{ID: 4, Name: "Empty", IsAssembly: true}).
		WithAssemblyOrder(workshop.AssemblyOrder{ID: 31, PartID: 4, Quantity: dec("1"), Date: may10, Status: workshop.AssemblyPending})

	_, _, err := production.CompleteAssemblyOrder(st, 31, inventory.Valuer{})
	assert.ErrorIs(t, err, workshop.ErrMissingRecipe)
}

func TestComplete_Twice(t *testing.T) {
	st, _, err := production.CompleteAssemblyOrder(workshopState("100", "100"), 30, inventory.Valuer{})
	require.NoError(t, err)

	_, _, err = production.CompleteAssemblyOrder(st, 30, inventory.Valuer{})
	assert.ErrorIs(t, err, workshop.ErrInvalidState)

	_, _, err = production.CompleteAssemblyOrder(st, 999, inventory.Valuer{})
	assert.ErrorIs(t, err, workshop.ErrNotFound)
}

func TestComplete_WeightedIntoExistingStock(t *testing.T) {
	// GIVEN: 10 Brackets already on hand at 50000
	st := workshopState("100", "100")
	b := mustPart(t, st, 3)
	st = st.WithPart(b.WithStock(dec("10")).WithCost(dec("50000")))

	// WHEN: A run with no labor (42000 per unit) completes
	st, done, err := production.CompleteAssemblyOrder(st, 30, inventory.Valuer{})
	require.NoError(t, err)

	// THEN: (10*50000 + 10*42000) / 20 = 46000
	assert.True(t, done.NewCost.Equal(dec("46000")), "got %s", done.NewCost)
	assert.True(t, mustPart(t, st, 3).Stock.Equal(dec("20")))
}

// =============================================================================
// LABOR TESTS
// =============================================================================

func TestEffectiveHourlyRate(t *testing.T) {
	hourly := workshop.Employee{PayType: workshop.PayHourly, HourlyRate: dec("150000"), DailyRate: dec("1")}
	daily := workshop.Employee{PayType: workshop.PayDaily, HourlyRate: dec("1"), DailyRate: dec("800000")}

	assert.True(t, production.EffectiveHourlyRate(hourly).Equal(dec("150000")))
	assert.True(t, production.EffectiveHourlyRate(daily).Equal(dec("100000")))
}

func TestLaborCost_MixedStaff(t *testing.T) {
	st := workshopState("100", "100").
		WithProductionLog(workshop.ProductionLog{ID: 40, AssemblyOrderID: 30, EmployeeID: 20, Date: may10, HoursSpent: dec("2")}).
		WithProductionLog(workshop.ProductionLog{ID: 41, AssemblyOrderID: 30, EmployeeID: 21, Date: may10, HoursSpent: dec("4")}).
		WithProductionLog(workshop.ProductionLog{ID: 42, AssemblyOrderID: 30, EmployeeID: 99, Date: may10, HoursSpent: dec("9")})

	// 2*150000 + 4*100000, the unknown employee adds nothing
	assert.True(t, production.LaborCost(st, 30).Equal(dec("700000")))
}

// =============================================================================
// ORDER & LOG LIFECYCLE TESTS
// =============================================================================

func TestAddAssemblyOrder_Validation(t *testing.T) {
	ids := &workshop.Sequence{Next: 100}
	st := workshopState("0", "0")

	_, _, err := production.AddAssemblyOrder(st, workshop.AssemblyOrder{PartID: 1, Quantity: dec("1"), Date: may10}, ids)
	assert.ErrorIs(t, err, workshop.ErrValidation, "raw material target")

	_, _, err = production.AddAssemblyOrder(st, workshop.AssemblyOrder{PartID: 3, Quantity: dec("0"), Date: may10}, ids)
	assert.ErrorIs(t, err, workshop.ErrValidation, "zero quantity")

	_, _, err = production.AddAssemblyOrder(st, workshop.AssemblyOrder{PartID: 99, Quantity: dec("1"), Date: may10}, ids)
	assert.ErrorIs(t, err, workshop.ErrNotFound)

	st, order, err := production.AddAssemblyOrder(st, workshop.AssemblyOrder{PartID: 3, Quantity: dec("5"), Date: may10}, ids)
	require.NoError(t, err)
	assert.Equal(t, workshop.AssemblyPending, order.Status)
	assert.Len(t, st.AssemblyOrders, 2)
}

func TestDeleteAssemblyOrder_CascadesLogs(t *testing.T) {
	st := workshopState("100", "100").
		WithProductionLog(workshop.ProductionLog{ID: 40, AssemblyOrderID: 30, EmployeeID: 20, Date: may10, HoursSpent: dec("2")})

	st, err := production.DeleteAssemblyOrder(st, 30)
	require.NoError(t, err)
	assert.Empty(t, st.AssemblyOrders)
	assert.Empty(t, st.ProductionLogs)
}

func TestCompletedOrder_IsFrozen(t *testing.T) {
	// GIVEN: A completed order with one log
	st := workshopState("100", "100").
		WithProductionLog(workshop.ProductionLog{ID: 40, AssemblyOrderID: 30, EmployeeID: 20, Date: may10, HoursSpent: dec("2")})
	st, _, err := production.CompleteAssemblyOrder(st, 30, inventory.Valuer{})
	require.NoError(t, err)
	ids := &workshop.Sequence{Next: 100}

	// THEN: Neither the order nor its logs can change
	_, err = production.DeleteAssemblyOrder(st, 30)
	assert.ErrorIs(t, err, workshop.ErrInvalidState)

	order, _ := st.AssemblyOrder(30)
	_, err = production.EditAssemblyOrder(st, order)
	assert.ErrorIs(t, err, workshop.ErrInvalidState)

	_, err = production.DeleteProductionLog(st, 40)
	assert.ErrorIs(t, err, workshop.ErrInvalidState)

	log, _ := st.ProductionLog(40)
	log.HoursSpent = dec("5")
	_, err = production.EditProductionLog(st, log)
	assert.ErrorIs(t, err, workshop.ErrInvalidState)

	_, _, err = production.AddProductionLog(st, workshop.ProductionLog{AssemblyOrderID: 30, EmployeeID: 20, Date: may10, HoursSpent: dec("1")}, ids)
	assert.ErrorIs(t, err, workshop.ErrInvalidState)
}

func TestAddProductionLog_Validation(t *testing.T) {
	ids := &workshop.Sequence{Next: 100}
	st := workshopState("0", "0")

	_, _, err := production.AddProductionLog(st, workshop.ProductionLog{AssemblyOrderID: 30, EmployeeID: 20, Date: may10, HoursSpent: dec("0")}, ids)
	assert.ErrorIs(t, err, workshop.ErrValidation)

	_, _, err = production.AddProductionLog(st, workshop.ProductionLog{AssemblyOrderID: 30, EmployeeID: 99, Date: may10, HoursSpent: dec("1")}, ids)
	assert.ErrorIs(t, err, workshop.ErrNotFound)

	st, log, err := production.AddProductionLog(st, workshop.ProductionLog{AssemblyOrderID: 30, EmployeeID: 20, Date: may10, HoursSpent: dec("1.5")}, ids)
	require.NoError(t, err)
	assert.Equal(t, workshop.ProductionLogID(101), log.ID)
	assert.Len(t, st.LogsFor(30), 1)
}
