package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/warp/workshop-engine/inventory"
	"github.com/warp/workshop-engine/payroll"
	"github.com/warp/workshop-engine/reports"
	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// QUERIES - Read the current State, never write
// =============================================================================

// ResolveCost values one unit of a part under the session's cost discipline.
func (e *Engine) ResolveCost(ctx context.Context, id workshop.PartID) (decimal.Decimal, error) {
	st, err := e.store.Load(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if _, ok := st.Part(id); !ok {
		return decimal.Zero, workshop.NewNotFound("part", id)
	}
	return e.opts.Valuer.ResolveCost(st, id), nil
}

func (e *Engine) LowStock(ctx context.Context) ([]workshop.Part, error) {
	st, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return inventory.LowStock(st), nil
}

func (e *Engine) Report(ctx context.Context, rng workshop.DateRange) (reports.FinancialReport, error) {
	st, err := e.store.Load(ctx)
	if err != nil {
		return reports.FinancialReport{}, err
	}
	return reports.Build(st, rng, e.opts.Valuer), nil
}

func (e *Engine) MonthlyRevenue(ctx context.Context) ([]reports.MonthRevenue, error) {
	st, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return reports.MonthlyRevenue(st), nil
}

func (e *Engine) Dashboard(ctx context.Context, rng workshop.DateRange, today workshop.Date) (reports.Summary, error) {
	st, err := e.store.Load(ctx)
	if err != nil {
		return reports.Summary{}, err
	}
	return reports.Dashboard(st, rng, today, e.opts.Valuer), nil
}

func (e *Engine) SalaryLines(ctx context.Context, rng workshop.DateRange) ([]payroll.SalaryLine, error) {
	st, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return payroll.SalaryLines(st, rng), nil
}

func (e *Engine) Statement(ctx context.Context, id workshop.EmployeeID, rng workshop.DateRange) (payroll.Statement, error) {
	st, err := e.store.Load(ctx)
	if err != nil {
		return payroll.Statement{}, err
	}
	return payroll.BuildStatement(st, id, rng)
}
