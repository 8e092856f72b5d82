package workshop

import "strings"

// =============================================================================
// STATE - The entity graph owned by one application session
// =============================================================================

// State holds every entity collection. It is a value: mutation helpers
// return a new State whose changed collection is a fresh slice, so a State
// handed to a reader never changes underneath it.
type State struct {
	Parts          []Part
	Purchases      []PurchaseInvoice
	Orders         []SalesOrder
	AssemblyOrders []AssemblyOrder
	ProductionLogs []ProductionLog
	Employees      []Employee
	WorkLogs       []WorkLog
	SalaryPayments []SalaryPayment
	Expenses       []Expense
	Contacts       []Contact
}

type keyed interface {
	key() int64
}

func find[T keyed](items []T, id int64) (T, bool) {
	for _, it := range items {
		if it.key() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// upsert replaces the record with the same key or appends it, on a copy.
func upsert[T keyed](items []T, v T) []T {
	out := make([]T, 0, len(items)+1)
	replaced := false
	for _, it := range items {
		if it.key() == v.key() {
			out = append(out, v)
			replaced = true
			continue
		}
		out = append(out, it)
	}
	if !replaced {
		out = append(out, v)
	}
	return out
}

// removeWhere returns a copy without the records matching drop.
func removeWhere[T any](items []T, drop func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !drop(it) {
			out = append(out, it)
		}
	}
	return out
}

// =============================================================================
// PARTS
// =============================================================================

func (s State) Part(id PartID) (Part, bool) { return find(s.Parts, int64(id)) }

// PartByName matches names case-insensitively.
func (s State) PartByName(name string) (Part, bool) {
	for _, p := range s.Parts {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Part{}, false
}

func (s State) WithPart(p Part) State {
	s.Parts = upsert(s.Parts, p)
	return s
}

func (s State) WithoutPart(id PartID) State {
	s.Parts = removeWhere(s.Parts, func(p Part) bool { return p.ID == id })
	return s
}

// =============================================================================
// PURCHASES
// =============================================================================

func (s State) Purchase(id PurchaseID) (PurchaseInvoice, bool) {
	return find(s.Purchases, int64(id))
}

func (s State) WithPurchase(p PurchaseInvoice) State {
	s.Purchases = upsert(s.Purchases, p)
	return s
}

func (s State) WithoutPurchase(id PurchaseID) State {
	s.Purchases = removeWhere(s.Purchases, func(p PurchaseInvoice) bool { return p.ID == id })
	return s
}

// =============================================================================
// SALES ORDERS
// =============================================================================

func (s State) Order(id OrderID) (SalesOrder, bool) { return find(s.Orders, int64(id)) }

func (s State) WithOrder(o SalesOrder) State {
	s.Orders = upsert(s.Orders, o)
	return s
}

func (s State) WithoutOrder(id OrderID) State {
	s.Orders = removeWhere(s.Orders, func(o SalesOrder) bool { return o.ID == id })
	return s
}

// =============================================================================
// ASSEMBLY ORDERS & PRODUCTION LOGS
// =============================================================================

func (s State) AssemblyOrder(id AssemblyOrderID) (AssemblyOrder, bool) {
	return find(s.AssemblyOrders, int64(id))
}

func (s State) WithAssemblyOrder(o AssemblyOrder) State {
	s.AssemblyOrders = upsert(s.AssemblyOrders, o)
	return s
}

// WithoutAssemblyOrder also drops the order's production logs.
func (s State) WithoutAssemblyOrder(id AssemblyOrderID) State {
	s.AssemblyOrders = removeWhere(s.AssemblyOrders, func(o AssemblyOrder) bool { return o.ID == id })
	s.ProductionLogs = removeWhere(s.ProductionLogs, func(l ProductionLog) bool { return l.AssemblyOrderID == id })
	return s
}

func (s State) ProductionLog(id ProductionLogID) (ProductionLog, bool) {
	return find(s.ProductionLogs, int64(id))
}

// LogsFor returns the production logs recorded against an assembly order.
func (s State) LogsFor(id AssemblyOrderID) []ProductionLog {
	var out []ProductionLog
	for _, l := range s.ProductionLogs {
		if l.AssemblyOrderID == id {
			out = append(out, l)
		}
	}
	return out
}

func (s State) WithProductionLog(l ProductionLog) State {
	s.ProductionLogs = upsert(s.ProductionLogs, l)
	return s
}

func (s State) WithoutProductionLog(id ProductionLogID) State {
	s.ProductionLogs = removeWhere(s.ProductionLogs, func(l ProductionLog) bool { return l.ID == id })
	return s
}

// =============================================================================
// EMPLOYEES, WORK LOGS, SALARY PAYMENTS
// =============================================================================

func (s State) Employee(id EmployeeID) (Employee, bool) { return find(s.Employees, int64(id)) }

func (s State) WithEmployee(e Employee) State {
	s.Employees = upsert(s.Employees, e)
	return s
}

// WithoutEmployee also drops the employee's work logs. Salary payments and
// production logs stay: they are part of the financial history.
func (s State) WithoutEmployee(id EmployeeID) State {
	s.Employees = removeWhere(s.Employees, func(e Employee) bool { return e.ID == id })
	s.WorkLogs = removeWhere(s.WorkLogs, func(l WorkLog) bool { return l.EmployeeID == id })
	return s
}

func (s State) WorkLog(id WorkLogID) (WorkLog, bool) { return find(s.WorkLogs, int64(id)) }

func (s State) WithWorkLog(l WorkLog) State {
	s.WorkLogs = upsert(s.WorkLogs, l)
	return s
}

func (s State) WithoutWorkLog(id WorkLogID) State {
	s.WorkLogs = removeWhere(s.WorkLogs, func(l WorkLog) bool { return l.ID == id })
	return s
}

func (s State) WithSalaryPayment(p SalaryPayment) State {
	s.SalaryPayments = upsert(s.SalaryPayments, p)
	return s
}

// =============================================================================
// EXPENSES & CONTACTS
// =============================================================================

func (s State) Expense(id ExpenseID) (Expense, bool) { return find(s.Expenses, int64(id)) }

func (s State) WithExpense(e Expense) State {
	s.Expenses = upsert(s.Expenses, e)
	return s
}

func (s State) WithoutExpense(id ExpenseID) State {
	s.Expenses = removeWhere(s.Expenses, func(e Expense) bool { return e.ID == id })
	return s
}

func (s State) Contact(id ContactID) (Contact, bool) { return find(s.Contacts, int64(id)) }

func (s State) WithContact(c Contact) State {
	s.Contacts = upsert(s.Contacts, c)
	return s
}

func (s State) WithoutContact(id ContactID) State {
	s.Contacts = removeWhere(s.Contacts, func(c Contact) bool { return c.ID == id })
	return s
}
