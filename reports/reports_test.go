package reports_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workshop-engine/inventory"
	"github.com/warp/workshop-engine/reports"
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

func day(m time.Month, d int) workshop.Date { return workshop.NewDate(2024, m, d) }

func delivered(id workshop.OrderID, date workshop.Date, cogs string, items ...workshop.OrderItem) workshop.SalesOrder {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return workshop.SalesOrder{ID: id, CustomerID: 1, Date: date, Items: items, TotalAmount: total,
		Status: workshop.OrderDelivered, CostOfGoodsSold: costPtr(cogs)}
}

func item(id workshop.PartID, qty, price string) workshop.OrderItem {
	return workshop.OrderItem{ProductID: id, Quantity: dec(qty), Price: dec(price)}
}

// ledgerState spans April and May 2024.
func ledgerState() workshop.State {
	return workshop.State{}.
		WithPart(workshop.Part{ID: 1, Name: "Table", Cost: costPtr("400000")}).
		WithPart(workshop.Part{ID: 2, Name: "Chair", Cost: costPtr("100000")}).
		// May: two delivered orders, one paid-not-delivered
		WithOrder(delivered(10, day(time.May, 1), "800000", item(1, "2", "1000000"))).
		WithOrder(delivered(11, day(time.May, 31), "500000", item(2, "5", "200000"), item(1, "1", "1000000"))).
		WithOrder(workshop.SalesOrder{ID: 12, Date: day(time.May, 10), TotalAmount: dec("999"), Status: workshop.OrderPaid}).
		// April: one delivered order
		WithOrder(delivered(13, day(time.April, 30), "100000", item(2, "1", "300000"))).
		WithPurchase(workshop.PurchaseInvoice{ID: 20, Date: day(time.May, 3), TotalAmount: dec("750000")}).
		WithPurchase(workshop.PurchaseInvoice{ID: 21, Date: day(time.April, 3), TotalAmount: dec("1")}).
		WithExpense(workshop.Expense{ID: 30, Date: day(time.May, 1), Description: "rent", Amount: dec("500000")}).
		WithExpense(workshop.Expense{ID: 31, Date: day(time.May, 25), Description: "freight", Amount: dec("15000")}).
		WithEmployee(workshop.Employee{ID: 40, Name: "Ali", PayType: workshop.PayHourly, HourlyRate: dec("10000"), OvertimeRate: dec("20000")}).
		WithEmployee(workshop.Employee{ID: 41, Name: "Idle", PayType: workshop.PayDaily, DailyRate: dec("80000")}).
		WithWorkLog(workshop.WorkLog{ID: 50, EmployeeID: 40, Date: day(time.May, 2), Work: workshop.HourlyWork{Hours: dec("8")}, OvertimeHours: dec("1")}).
		WithWorkLog(workshop.WorkLog{ID: 51, EmployeeID: 40, Date: day(time.April, 2), Work: workshop.HourlyWork{Hours: dec("8")}, OvertimeHours: dec("0")})
}

func may(t *testing.T) workshop.DateRange {
	t.Helper()
	rng, err := workshop.NewDateRange("2024-05-01", "2024-05-31")
	require.NoError(t, err)
	return rng
}

// =============================================================================
// AGGREGATION TESTS
// =============================================================================

func TestBuild_MayFigures(t *testing.T) {
	// WHEN: Reporting May
	r := reports.Build(ledgerState(), may(t), inventory.Valuer{})

	// THEN: Only May's delivered orders count, boundary days included
	assert.Equal(t, 2, r.DeliveredOrders)
	assert.True(t, r.TotalRevenue.Equal(dec("4000000")), "revenue %s", r.TotalRevenue)
	assert.True(t, r.TotalCOGS.Equal(dec("1300000")))
	assert.True(t, r.TotalPurchaseCosts.Equal(dec("750000")))
	assert.True(t, r.TotalExpenses.Equal(dec("515000")))
	// 8h * 10000 + 1h * 20000
	assert.True(t, r.TotalSalaries.Equal(dec("100000")))
	// 4,000,000 - 1,300,000 - 100,000 - 515,000
	assert.True(t, r.NetProfit.Equal(dec("2085000")), "net %s", r.NetProfit)
	assert.True(t, r.GrossProfit.Equal(dec("2700000")))
}

func TestBuild_ZeroSalaryRowsExcluded(t *testing.T) {
	r := reports.Build(ledgerState(), may(t), inventory.Valuer{})

	require.Len(t, r.SalaryReports, 1)
	assert.Equal(t, "Ali", r.SalaryReports[0].EmployeeName)
}

func TestBuild_ProductProfitability(t *testing.T) {
	r := reports.Build(ledgerState(), may(t), inventory.Valuer{})

	// Table first (order 10), then Chair (order 11)
	require.Len(t, r.ProductProfitability, 2)
	table := r.ProductProfitability[0]
	assert.Equal(t, "Table", table.ProductName)
	assert.True(t, table.QuantitySold.Equal(dec("3")))
	assert.True(t, table.TotalRevenue.Equal(dec("3000000")))
	assert.True(t, table.TotalCOGS.Equal(dec("1200000")))
	assert.True(t, table.TotalProfit.Equal(dec("1800000")))

	chair := r.ProductProfitability[1]
	assert.True(t, chair.QuantitySold.Equal(dec("5")))
	assert.True(t, chair.TotalCOGS.Equal(dec("500000")))
}

func TestBuild_UnboundedRange(t *testing.T) {
	r := reports.Build(ledgerState(), workshop.DateRange{}, inventory.Valuer{})

	assert.Equal(t, 3, r.DeliveredOrders)
	assert.True(t, r.TotalRevenue.Equal(dec("4300000")))
	assert.True(t, r.TotalSalaries.Equal(dec("180000")))
}

func TestBuild_Idempotent(t *testing.T) {
	st := ledgerState()
	rng := may(t)

	first := reports.Build(st, rng, inventory.Valuer{})
	second := reports.Build(st, rng, inventory.Valuer{})

	assert.Equal(t, first, second)
}

func TestBuild_FrozenAndReportTimeCOGSDiverge(t *testing.T) {
	// GIVEN: The Table's cost doubled after its orders were delivered
	st := ledgerState()
	table, _ := st.Part(1)
	st = st.WithPart(table.WithCost(dec("800000")))

	r := reports.Build(st, may(t), inventory.Valuer{})

	// THEN: Order-level COGS keeps delivery-time cost
	assert.True(t, r.TotalCOGS.Equal(dec("1300000")))
	// AND: Product rows value the same units at today's cost
	assert.True(t, r.ProductProfitability[0].TotalCOGS.Equal(dec("2400000")))
}

// =============================================================================
// SERIES & DASHBOARD TESTS
// =============================================================================

func TestMonthlyRevenue_SortedByMonth(t *testing.T) {
	months := reports.MonthlyRevenue(ledgerState())

	require.Len(t, months, 2)
	assert.Equal(t, "2024-04", months[0].Month)
	assert.True(t, months[0].Revenue.Equal(dec("300000")))
	assert.Equal(t, "2024-05", months[1].Month)
	assert.True(t, months[1].Revenue.Equal(dec("4000000")))
	assert.True(t, months[1].Profit.Equal(dec("2700000")))
}

func TestDashboard(t *testing.T) {
	st := ledgerState().
		WithPart(workshop.Part{ID: 3, Name: "Glue", Stock: dec("1"), Threshold: dec("10")}).
		WithOrder(workshop.SalesOrder{ID: 14, Date: day(time.May, 1), DeliveryDate: day(time.May, 5), Status: workshop.OrderPending})

	s := reports.Dashboard(st, may(t), day(time.May, 2), inventory.Valuer{})

	assert.Len(t, s.LowStock, 1)
	assert.Equal(t, 1, s.PendingOrders)
	assert.Empty(t, s.OverdueOrders)
	require.Len(t, s.MissingAttendance, 1)
	assert.Equal(t, "Idle", s.MissingAttendance[0].Name)
	assert.True(t, s.Report.TotalRevenue.Equal(dec("4000000")))
}
