package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/warp/workshop-engine/contacts"
	"github.com/warp/workshop-engine/inventory"
	"github.com/warp/workshop-engine/payroll"
	"github.com/warp/workshop-engine/production"
	"github.com/warp/workshop-engine/sales"
	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// PARTS & PURCHASES
// =============================================================================

func (e *Engine) AddPart(ctx context.Context, p workshop.Part) (workshop.Part, error) {
	return run(ctx, e, "AddPart", func(st workshop.State) (workshop.State, workshop.Part, error) {
		return inventory.AddPart(st, p, e.ids)
	}, zap.String("name", p.Name))
}

func (e *Engine) EditPart(ctx context.Context, p workshop.Part) (workshop.Part, error) {
	return run(ctx, e, "EditPart", func(st workshop.State) (workshop.State, workshop.Part, error) {
		next, err := inventory.EditPart(st, p)
		got, _ := next.Part(p.ID)
		return next, got, err
	}, zap.Int64("part_id", int64(p.ID)))
}

func (e *Engine) DeletePart(ctx context.Context, id workshop.PartID) error {
	return exec(ctx, e, "DeletePart", func(st workshop.State) (workshop.State, error) {
		return inventory.DeletePart(st, id)
	}, zap.Int64("part_id", int64(id)))
}

func (e *Engine) AddPurchase(ctx context.Context, inv workshop.PurchaseInvoice) (workshop.PurchaseInvoice, error) {
	return run(ctx, e, "AddPurchase", func(st workshop.State) (workshop.State, workshop.PurchaseInvoice, error) {
		return inventory.AddPurchase(st, inv, e.ids, e.opts.Purchases)
	}, zap.Int("items", len(inv.Items)))
}

func (e *Engine) EditPurchase(ctx context.Context, inv workshop.PurchaseInvoice) (workshop.PurchaseInvoice, error) {
	return run(ctx, e, "EditPurchase", func(st workshop.State) (workshop.State, workshop.PurchaseInvoice, error) {
		return inventory.EditPurchase(st, inv, e.ids, e.opts.Purchases)
	}, zap.Int64("purchase_id", int64(inv.ID)))
}

func (e *Engine) DeletePurchase(ctx context.Context, id workshop.PurchaseID) error {
	return exec(ctx, e, "DeletePurchase", func(st workshop.State) (workshop.State, error) {
		return inventory.DeletePurchase(st, id)
	}, zap.Int64("purchase_id", int64(id)))
}

// =============================================================================
// PRODUCTION
// =============================================================================

func (e *Engine) AddAssemblyOrder(ctx context.Context, o workshop.AssemblyOrder) (workshop.AssemblyOrder, error) {
	return run(ctx, e, "AddAssemblyOrder", func(st workshop.State) (workshop.State, workshop.AssemblyOrder, error) {
		return production.AddAssemblyOrder(st, o, e.ids)
	}, zap.Int64("part_id", int64(o.PartID)))
}

func (e *Engine) EditAssemblyOrder(ctx context.Context, o workshop.AssemblyOrder) (workshop.AssemblyOrder, error) {
	return run(ctx, e, "EditAssemblyOrder", func(st workshop.State) (workshop.State, workshop.AssemblyOrder, error) {
		next, err := production.EditAssemblyOrder(st, o)
		got, _ := next.AssemblyOrder(o.ID)
		return next, got, err
	}, zap.Int64("assembly_order_id", int64(o.ID)))
}

func (e *Engine) DeleteAssemblyOrder(ctx context.Context, id workshop.AssemblyOrderID) error {
	return exec(ctx, e, "DeleteAssemblyOrder", func(st workshop.State) (workshop.State, error) {
		return production.DeleteAssemblyOrder(st, id)
	}, zap.Int64("assembly_order_id", int64(id)))
}

// CompleteAssemblyOrder consumes components and receives the finished units.
func (e *Engine) CompleteAssemblyOrder(ctx context.Context, id workshop.AssemblyOrderID) (production.Completion, error) {
	return run(ctx, e, "CompleteAssemblyOrder", func(st workshop.State) (workshop.State, production.Completion, error) {
		return production.CompleteAssemblyOrder(st, id, e.opts.Valuer)
	}, zap.Int64("assembly_order_id", int64(id)))
}

func (e *Engine) AddProductionLog(ctx context.Context, l workshop.ProductionLog) (workshop.ProductionLog, error) {
	return run(ctx, e, "AddProductionLog", func(st workshop.State) (workshop.State, workshop.ProductionLog, error) {
		return production.AddProductionLog(st, l, e.ids)
	}, zap.Int64("assembly_order_id", int64(l.AssemblyOrderID)))
}

func (e *Engine) EditProductionLog(ctx context.Context, l workshop.ProductionLog) (workshop.ProductionLog, error) {
	return run(ctx, e, "EditProductionLog", func(st workshop.State) (workshop.State, workshop.ProductionLog, error) {
		next, err := production.EditProductionLog(st, l)
		got, _ := next.ProductionLog(l.ID)
		return next, got, err
	}, zap.Int64("production_log_id", int64(l.ID)))
}

func (e *Engine) DeleteProductionLog(ctx context.Context, id workshop.ProductionLogID) error {
	return exec(ctx, e, "DeleteProductionLog", func(st workshop.State) (workshop.State, error) {
		return production.DeleteProductionLog(st, id)
	}, zap.Int64("production_log_id", int64(id)))
}

// =============================================================================
// SALES
// =============================================================================

func (e *Engine) AddOrder(ctx context.Context, o workshop.SalesOrder) (workshop.SalesOrder, error) {
	return run(ctx, e, "AddOrder", func(st workshop.State) (workshop.State, workshop.SalesOrder, error) {
		return sales.AddOrder(st, o, e.ids)
	}, zap.Int64("customer_id", int64(o.CustomerID)))
}

func (e *Engine) EditOrder(ctx context.Context, o workshop.SalesOrder) (workshop.SalesOrder, error) {
	return run(ctx, e, "EditOrder", func(st workshop.State) (workshop.State, workshop.SalesOrder, error) {
		return sales.EditOrder(st, o)
	}, zap.Int64("order_id", int64(o.ID)))
}

func (e *Engine) DeleteOrder(ctx context.Context, id workshop.OrderID) error {
	return exec(ctx, e, "DeleteOrder", func(st workshop.State) (workshop.State, error) {
		return sales.DeleteOrder(st, id)
	}, zap.Int64("order_id", int64(id)))
}

func (e *Engine) AddPayment(ctx context.Context, id workshop.OrderID, p workshop.Payment) (workshop.SalesOrder, error) {
	return run(ctx, e, "AddPayment", func(st workshop.State) (workshop.State, workshop.SalesOrder, error) {
		return sales.AddPayment(st, id, p, e.opts.Payments, e.ids)
	}, zap.Int64("order_id", int64(id)), zap.String("amount", p.Amount.String()))
}

// DeliverOrder ships a paid order and freezes its cost of goods sold.
func (e *Engine) DeliverOrder(ctx context.Context, id workshop.OrderID) (sales.Delivery, error) {
	return run(ctx, e, "DeliverOrder", func(st workshop.State) (workshop.State, sales.Delivery, error) {
		return sales.DeliverOrder(st, id, e.opts.Valuer)
	}, zap.Int64("order_id", int64(id)))
}

// =============================================================================
// PAYROLL
// =============================================================================

func (e *Engine) AddEmployee(ctx context.Context, emp workshop.Employee) (workshop.Employee, error) {
	return run(ctx, e, "AddEmployee", func(st workshop.State) (workshop.State, workshop.Employee, error) {
		return payroll.AddEmployee(st, emp, e.ids)
	}, zap.String("pay_type", string(emp.PayType)))
}

func (e *Engine) EditEmployee(ctx context.Context, emp workshop.Employee) (workshop.Employee, error) {
	return run(ctx, e, "EditEmployee", func(st workshop.State) (workshop.State, workshop.Employee, error) {
		next, err := payroll.EditEmployee(st, emp)
		got, _ := next.Employee(emp.ID)
		return next, got, err
	}, zap.Int64("employee_id", int64(emp.ID)))
}

func (e *Engine) DeleteEmployee(ctx context.Context, id workshop.EmployeeID) error {
	return exec(ctx, e, "DeleteEmployee", func(st workshop.State) (workshop.State, error) {
		return payroll.DeleteEmployee(st, id)
	}, zap.Int64("employee_id", int64(id)))
}

func (e *Engine) AddWorkLog(ctx context.Context, l workshop.WorkLog) (workshop.WorkLog, error) {
	return run(ctx, e, "AddWorkLog", func(st workshop.State) (workshop.State, workshop.WorkLog, error) {
		return payroll.AddWorkLog(st, l, e.ids)
	}, zap.Int64("employee_id", int64(l.EmployeeID)))
}

func (e *Engine) EditWorkLog(ctx context.Context, l workshop.WorkLog) (workshop.WorkLog, error) {
	return run(ctx, e, "EditWorkLog", func(st workshop.State) (workshop.State, workshop.WorkLog, error) {
		next, err := payroll.EditWorkLog(st, l)
		got, _ := next.WorkLog(l.ID)
		return next, got, err
	}, zap.Int64("work_log_id", int64(l.ID)))
}

func (e *Engine) DeleteWorkLog(ctx context.Context, id workshop.WorkLogID) error {
	return exec(ctx, e, "DeleteWorkLog", func(st workshop.State) (workshop.State, error) {
		return payroll.DeleteWorkLog(st, id)
	}, zap.Int64("work_log_id", int64(id)))
}

func (e *Engine) PaySalary(ctx context.Context, p workshop.SalaryPayment) (workshop.SalaryPayment, error) {
	return run(ctx, e, "PaySalary", func(st workshop.State) (workshop.State, workshop.SalaryPayment, error) {
		return payroll.PaySalary(st, p, e.opts.Payments, e.ids)
	}, zap.Int64("employee_id", int64(p.EmployeeID)), zap.String("amount", p.Amount.String()))
}

// =============================================================================
// CONTACTS & EXPENSES
// =============================================================================

func (e *Engine) AddContact(ctx context.Context, c workshop.Contact) (workshop.Contact, error) {
	return run(ctx, e, "AddContact", func(st workshop.State) (workshop.State, workshop.Contact, error) {
		return contacts.AddContact(st, c, e.ids)
	})
}

func (e *Engine) EditContact(ctx context.Context, c workshop.Contact) (workshop.Contact, error) {
	return run(ctx, e, "EditContact", func(st workshop.State) (workshop.State, workshop.Contact, error) {
		next, err := contacts.EditContact(st, c)
		got, _ := next.Contact(c.ID)
		return next, got, err
	}, zap.Int64("contact_id", int64(c.ID)))
}

func (e *Engine) DeleteContact(ctx context.Context, id workshop.ContactID) error {
	return exec(ctx, e, "DeleteContact", func(st workshop.State) (workshop.State, error) {
		return contacts.DeleteContact(st, id)
	}, zap.Int64("contact_id", int64(id)))
}

func (e *Engine) AddExpense(ctx context.Context, x workshop.Expense) (workshop.Expense, error) {
	return run(ctx, e, "AddExpense", func(st workshop.State) (workshop.State, workshop.Expense, error) {
		return contacts.AddExpense(st, x, e.ids)
	})
}

func (e *Engine) EditExpense(ctx context.Context, x workshop.Expense) (workshop.Expense, error) {
	return run(ctx, e, "EditExpense", func(st workshop.State) (workshop.State, workshop.Expense, error) {
		next, err := contacts.EditExpense(st, x)
		got, _ := next.Expense(x.ID)
		return next, got, err
	}, zap.Int64("expense_id", int64(x.ID)))
}

func (e *Engine) DeleteExpense(ctx context.Context, id workshop.ExpenseID) error {
	return exec(ctx, e, "DeleteExpense", func(st workshop.State) (workshop.State, error) {
		return contacts.DeleteExpense(st, id)
	}, zap.Int64("expense_id", int64(id)))
}
