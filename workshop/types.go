/*
Package workshop provides the core entity model of the workshop costing engine.

PURPOSE:
  This package holds the records every other package works on: parts and
  their bills of materials, purchase invoices, sales orders, assembly orders,
  production logs, employees, work logs, salary payments, expenses and
  contacts. It also owns the entity store contract (store.go), the snapshot
  codec (snapshot.go) and the error taxonomy (errors.go).

KEY CONCEPTS IN THIS FILE (types.go):
  - IDs: Type-safe numeric identifiers, minted by the caller context
  - Part / Component: raw materials and assemblies with their BOM
  - SalesOrder / AssemblyOrder: the two stateful documents
  - WorkLog: tagged union of hourly and daily work entries

DESIGN PRINCIPLES:
  1. Value records: entities are copied, never edited in place
  2. Precision: all money and quantities use decimal.Decimal
  3. Type Safety: one ID type per collection prevents mixing references

SEE ALSO:
  - state.go: Copy-on-write collection helpers
  - time.go: Date and DateRange
  - inventory/, sales/, production/, payroll/: the mutation recipes
*/
package workshop

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Snapshots keep numbers as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PartID int64
type PurchaseID int64
type OrderID int64
type PaymentID int64
type AssemblyOrderID int64
type ProductionLogID int64
type EmployeeID int64
type WorkLogID int64
type SalaryPaymentID int64
type ExpenseID int64
type ContactID int64

// =============================================================================
// INVENTORY
// =============================================================================

// Part is either a raw material (IsAssembly=false, Cost set directly) or an
// assembly with a Components BOM and a weighted-average production cost.
type Part struct {
	ID         PartID           `json:"id"`
	Name       string           `json:"name" validate:"required"`
	IsAssembly bool             `json:"isAssembly"`
	Stock      decimal.Decimal  `json:"stock" validate:"gte=0"`
	Threshold  decimal.Decimal  `json:"threshold" validate:"gte=0"`
	Cost       *decimal.Decimal `json:"cost,omitempty"`
	Components []Component      `json:"components,omitempty" validate:"dive"`
}

// Component is one BOM line: Quantity units of PartID per assembled unit.
type Component struct {
	PartID   PartID          `json:"partId" validate:"required"`
	Quantity decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// CostValue returns the stored cost, or zero when none is set.
func (p Part) CostValue() decimal.Decimal {
	if p.Cost == nil {
		return decimal.Zero
	}
	return *p.Cost
}

// WithStock returns a copy of the part with a new stock level.
func (p Part) WithStock(stock decimal.Decimal) Part {
	p.Stock = stock
	return p
}

// WithCost returns a copy of the part with a new stored cost.
func (p Part) WithCost(cost decimal.Decimal) Part {
	p.Cost = &cost
	return p
}

// HasRecipe reports whether the part is an assembly with a non-empty BOM.
func (p Part) HasRecipe() bool {
	return p.IsAssembly && len(p.Components) > 0
}

func (p Part) key() int64 { return int64(p.ID) }

// =============================================================================
// PURCHASING
// =============================================================================

type PurchaseItem struct {
	ID        int64           `json:"id,omitempty"`
	ItemName  string          `json:"itemName" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"gte=0"`
}

// LineTotal is Quantity * UnitPrice.
func (i PurchaseItem) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// PurchaseInvoice records goods received from a supplier.
// TotalAmount is always the sum of its line totals.
type PurchaseInvoice struct {
	ID          PurchaseID      `json:"id"`
	SupplierID  ContactID       `json:"supplierId"`
	Date        Date            `json:"date" validate:"required"`
	Items       []PurchaseItem  `json:"items" validate:"required,min=1,dive"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func (p PurchaseInvoice) key() int64 { return int64(p.ID) }

// =============================================================================
// SALES
// =============================================================================

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

type OrderItem struct {
	ProductID PartID          `json:"productId" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
}

// LineTotal is Quantity * Price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.Price)
}

type Payment struct {
	ID     PaymentID       `json:"id"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Date   Date            `json:"date" validate:"required"`
}

// SalesOrder is a customer order. TotalAmount is fixed at creation;
// CostOfGoodsSold is set once, at delivery, and never recomputed.
type SalesOrder struct {
	ID              OrderID          `json:"id"`
	CustomerID      ContactID        `json:"customerId"`
	Date            Date             `json:"date" validate:"required"`
	DeliveryDate    Date             `json:"deliveryDate"`
	Items           []OrderItem      `json:"items" validate:"required,min=1,dive"`
	TotalAmount     decimal.Decimal  `json:"totalAmount"`
	Payments        []Payment        `json:"payments"`
	Status          OrderStatus      `json:"status"`
	CostOfGoodsSold *decimal.Decimal `json:"costOfGoodsSold,omitempty"`
}

func (o SalesOrder) key() int64 { return int64(o.ID) }

// =============================================================================
// PRODUCTION
// =============================================================================

type AssemblyStatus string

const (
	AssemblyPending   AssemblyStatus = "PENDING"
	AssemblyCompleted AssemblyStatus = "COMPLETED"
)

// AssemblyOrder produces Quantity units of an assembly part.
// MaterialCost and LaborCost are frozen at completion.
type AssemblyOrder struct {
	ID           AssemblyOrderID  `json:"id"`
	PartID       PartID           `json:"partId" validate:"required"`
	Quantity     decimal.Decimal  `json:"quantity" validate:"gt=0"`
	Date         Date             `json:"date" validate:"required"`
	Status       AssemblyStatus   `json:"status"`
	MaterialCost *decimal.Decimal `json:"materialCost,omitempty"`
	LaborCost    *decimal.Decimal `json:"laborCost,omitempty"`
}

func (o AssemblyOrder) key() int64 { return int64(o.ID) }

type ProductionLog struct {
	ID              ProductionLogID `json:"id"`
	AssemblyOrderID AssemblyOrderID `json:"assemblyOrderId" validate:"required"`
	EmployeeID      EmployeeID      `json:"employeeId" validate:"required"`
	Date            Date            `json:"date" validate:"required"`
	HoursSpent      decimal.Decimal `json:"hoursSpent" validate:"gt=0"`
}

func (l ProductionLog) key() int64 { return int64(l.ID) }

// =============================================================================
// PAYROLL
// =============================================================================

type PayType string

const (
	PayHourly PayType = "HOURLY"
	PayDaily  PayType = "DAILY"
)

type Employee struct {
	ID           EmployeeID      `json:"id"`
	Name         string          `json:"name" validate:"required"`
	PayType      PayType         `json:"payType" validate:"oneof=HOURLY DAILY"`
	HourlyRate   decimal.Decimal `json:"hourlyRate" validate:"gte=0"`
	DailyRate    decimal.Decimal `json:"dailyRate" validate:"gte=0"`
	OvertimeRate decimal.Decimal `json:"overtimeRate" validate:"gte=0"`
}

func (e Employee) key() int64 { return int64(e.ID) }

// SalaryPayment is an append-only payment against a computed period salary.
type SalaryPayment struct {
	ID          SalaryPaymentID `json:"id"`
	EmployeeID  EmployeeID      `json:"employeeId" validate:"required"`
	PeriodStart Date            `json:"periodStart" validate:"required"`
	PeriodEnd   Date            `json:"periodEnd" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	PaymentDate Date            `json:"paymentDate" validate:"required"`
	Notes       string          `json:"notes,omitempty"`
}

func (p SalaryPayment) key() int64 { return int64(p.ID) }

// =============================================================================
// EXPENSES & CONTACTS
// =============================================================================

type Expense struct {
	ID          ExpenseID       `json:"id"`
	Date        Date            `json:"date" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Category    string          `json:"category"`
}

func (e Expense) key() int64 { return int64(e.ID) }

type ContactRole string

const (
	RoleCustomer ContactRole = "CUSTOMER"
	RoleSupplier ContactRole = "SUPPLIER"
)

// Contact is a customer, a supplier, or both.
type Contact struct {
	ID           ContactID     `json:"id"`
	Name         string        `json:"name" validate:"required"`
	Roles        []ContactRole `json:"roles" validate:"required,min=1,dive,oneof=CUSTOMER SUPPLIER"`
	ContactInfo  string        `json:"contactInfo"`
	Phone        string        `json:"phone,omitempty"`
	Address      string        `json:"address,omitempty"`
	Job          string        `json:"job,omitempty"`
	ActivityType string        `json:"activityType,omitempty"`
}

// HasRole reports whether the contact carries the role.
func (c Contact) HasRole(role ContactRole) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (c Contact) key() int64 { return int64(c.ID) }
