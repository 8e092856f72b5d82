/*
Package reports aggregates the workshop's history into period figures.

PURPOSE:
  Every function here is a pure read of a State: same State and range in,
  identical report out. Nothing is cached and nothing is written.

DATE FILTER:
  Orders, purchases, work logs and expenses are filtered by their own date.
  The range is inclusive per calendar day; an open bound is unbounded.

FIGURES:
  revenue    = sum(totalAmount)      over delivered orders
  cogs       = sum(costOfGoodsSold)  over the same orders (frozen at delivery)
  purchases  = sum(totalAmount)      over purchases (informational only)
  salaries   = sum of every employee's period salary
  expenses   = sum(amount)           over expenses
  net profit = revenue - cogs - salaries - expenses

TWO COGS VIEWS:
  TotalCOGS uses the cost frozen on each order at delivery. The product
  profitability rows value the same units at today's cost. After a cost
  change the two disagree, and both are reported as they are.

SEE ALSO:
  - payroll/salary.go: Salary computation
  - inventory/valuation.go: Report-time valuation
*/
package reports

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/workshop-engine/inventory"
	"github.com/warp/workshop-engine/payroll"
	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// FINANCIAL REPORT
// =============================================================================

type FinancialReport struct {
	Start                *workshop.Date       `json:"start,omitempty"`
	End                  *workshop.Date       `json:"end,omitempty"`
	TotalRevenue         decimal.Decimal      `json:"totalRevenue"`
	TotalCOGS            decimal.Decimal      `json:"totalCOGS"`
	GrossProfit          decimal.Decimal      `json:"grossProfit"`
	TotalPurchaseCosts   decimal.Decimal      `json:"totalPurchaseCosts"`
	TotalSalaries        decimal.Decimal      `json:"totalSalaries"`
	TotalExpenses        decimal.Decimal      `json:"totalExpenses"`
	NetProfit            decimal.Decimal      `json:"netProfit"`
	DeliveredOrders      int                  `json:"deliveredOrders"`
	SalaryReports        []payroll.SalaryLine `json:"salaryReports"`
	ProductProfitability []ProductProfit      `json:"productProfitability"`
}

// ProductProfit is one product's sales in the period, valued at report time.
type ProductProfit struct {
	ProductID    workshop.PartID `json:"productId"`
	ProductName  string          `json:"productName"`
	QuantitySold decimal.Decimal `json:"quantitySold"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalCOGS    decimal.Decimal `json:"totalCOGS"`
	TotalProfit  decimal.Decimal `json:"totalProfit"`
}

// Build computes the financial report for the range.
func Build(st workshop.State, rng workshop.DateRange, valuer inventory.Valuer) FinancialReport {
	r := FinancialReport{
		Start:                rng.Start,
		End:                  rng.End,
		TotalRevenue:         decimal.Zero,
		TotalCOGS:            decimal.Zero,
		TotalPurchaseCosts:   decimal.Zero,
		TotalSalaries:        decimal.Zero,
		TotalExpenses:        decimal.Zero,
		SalaryReports:        []payroll.SalaryLine{},
		ProductProfitability: []ProductProfit{},
	}

	delivered := DeliveredOrders(st, rng)
	r.DeliveredOrders = len(delivered)
	for _, o := range delivered {
		r.TotalRevenue = r.TotalRevenue.Add(o.TotalAmount)
		if o.CostOfGoodsSold != nil {
			r.TotalCOGS = r.TotalCOGS.Add(*o.CostOfGoodsSold)
		}
	}

	for _, p := range st.Purchases {
		if rng.Contains(p.Date) {
			r.TotalPurchaseCosts = r.TotalPurchaseCosts.Add(p.TotalAmount)
		}
	}

	for _, e := range st.Expenses {
		if rng.Contains(e.Date) {
			r.TotalExpenses = r.TotalExpenses.Add(e.Amount)
		}
	}

	for _, line := range payroll.SalaryLines(st, rng) {
		r.TotalSalaries = r.TotalSalaries.Add(line.TotalSalary)
		if !line.TotalSalary.IsZero() {
			r.SalaryReports = append(r.SalaryReports, line)
		}
	}

	r.GrossProfit = r.TotalRevenue.Sub(r.TotalCOGS)
	r.NetProfit = r.GrossProfit.Sub(r.TotalSalaries).Sub(r.TotalExpenses)
	r.ProductProfitability = productProfitability(st, delivered, valuer)
	return r
}

// DeliveredOrders returns delivered orders dated inside the range.
func DeliveredOrders(st workshop.State, rng workshop.DateRange) []workshop.SalesOrder {
	var out []workshop.SalesOrder
	for _, o := range st.Orders {
		if o.Status == workshop.OrderDelivered && rng.Contains(o.Date) {
			out = append(out, o)
		}
	}
	return out
}

// productProfitability groups delivered lines by product in first-seen
// order. Lines for parts that no longer exist are skipped.
func productProfitability(st workshop.State, orders []workshop.SalesOrder, valuer inventory.Valuer) []ProductProfit {
	index := map[workshop.PartID]int{}
	rows := []ProductProfit{}
	for _, o := range orders {
		for _, item := range o.Items {
			part, ok := st.Part(item.ProductID)
			if !ok {
				continue
			}
			revenue := item.LineTotal()
			cogs := valuer.ResolveCost(st, item.ProductID).Mul(item.Quantity)

			i, seen := index[item.ProductID]
			if !seen {
				i = len(rows)
				index[item.ProductID] = i
				rows = append(rows, ProductProfit{
					ProductID:    part.ID,
					ProductName:  part.Name,
					QuantitySold: decimal.Zero,
					TotalRevenue: decimal.Zero,
					TotalCOGS:    decimal.Zero,
					TotalProfit:  decimal.Zero,
				})
			}
			row := &rows[i]
			row.QuantitySold = row.QuantitySold.Add(item.Quantity)
			row.TotalRevenue = row.TotalRevenue.Add(revenue)
			row.TotalCOGS = row.TotalCOGS.Add(cogs)
			row.TotalProfit = row.TotalRevenue.Sub(row.TotalCOGS)
		}
	}
	return rows
}

// =============================================================================
// MONTHLY SERIES
// =============================================================================

type MonthRevenue struct {
	Month   string          `json:"month"` // YYYY-MM
	Revenue decimal.Decimal `json:"revenue"`
	COGS    decimal.Decimal `json:"cogs"`
	Profit  decimal.Decimal `json:"profit"`
}

// MonthlyRevenue groups every delivered order by the month of its order
// date, oldest first.
func MonthlyRevenue(st workshop.State) []MonthRevenue {
	byMonth := map[string]*MonthRevenue{}
	for _, o := range st.Orders {
		if o.Status != workshop.OrderDelivered {
			continue
		}
		key := o.Date.MonthKey()
		m, ok := byMonth[key]
		if !ok {
			m = &MonthRevenue{Month: key, Revenue: decimal.Zero, COGS: decimal.Zero}
			byMonth[key] = m
		}
		m.Revenue = m.Revenue.Add(o.TotalAmount)
		if o.CostOfGoodsSold != nil {
			m.COGS = m.COGS.Add(*o.CostOfGoodsSold)
		}
	}

	out := make([]MonthRevenue, 0, len(byMonth))
	for _, m := range byMonth {
		m.Profit = m.Revenue.Sub(m.COGS)
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
