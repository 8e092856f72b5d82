/*
Package factory builds demo workshop states.

PURPOSE:
  Gives the server something to show before anyone has typed data in.
  Each scenario yields a complete, consistent workshop.State that the
  engine swaps in wholesale.

AVAILABLE SCENARIOS:
  empty:            Nothing at all
  sample-workshop:  The classic sample data set, stored in the old
                    customers/suppliers layout and migrated on load
  bracket-shop:     Built by running real commands: a purchase, a
                    bracket BOM, one assembly run and one delivered order

ADDING NEW SCENARIOS:
  1. Add to the Scenarios slice with ID, name, description
  2. Write a builder func() (workshop.State, error)
  3. Register it in builders

SEE ALSO:
  - api/scenarios.go: HTTP endpoints
  - workshop/snapshot.go: Legacy contact migration
*/
package factory

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/workshop-engine/contacts"
	"github.com/warp/workshop-engine/inventory"
	"github.com/warp/workshop-engine/payroll"
	"github.com/warp/workshop-engine/production"
	"github.com/warp/workshop-engine/sales"
	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type Scenario struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var Scenarios = []Scenario{
	{
		ID:          "empty",
		Name:        "Empty Workshop",
		Description: "No parts, orders or staff",
	},
	{
		ID:          "sample-workshop",
		Name:        "Sample Workshop",
		Description: "Two employees, a two-level BOM, orders in every state, May 2024 expenses",
	},
	{
		ID:          "bracket-shop",
		Name:        "Bracket Shop",
		Description: "Steel and bolts bought, brackets assembled, one order delivered and one pending",
	},
}

var builders = map[string]func() (workshop.State, error){
	"empty":           func() (workshop.State, error) { return workshop.State{}, nil },
	"sample-workshop": SampleWorkshop,
	"bracket-shop":    BracketShop,
}

// Build returns the State for a scenario ID.
func Build(id string) (workshop.State, error) {
	build, ok := builders[id]
	if !ok {
		return workshop.State{}, workshop.Invalid("scenarioId", "oneof", fmt.Sprintf("unknown scenario %q", id))
	}
	return build()
}

// =============================================================================
// SAMPLE WORKSHOP
// =============================================================================

//go:embed seeds/sample_workshop.json
var sampleWorkshopJSON []byte

// SampleWorkshop decodes the embedded sample snapshot.
func SampleWorkshop() (workshop.State, error) {
	var snap workshop.Snapshot
	if err := json.Unmarshal(sampleWorkshopJSON, &snap); err != nil {
		return workshop.State{}, fmt.Errorf("sample workshop: %w", err)
	}
	return workshop.DecodeState(snap)
}

// =============================================================================
// BRACKET SHOP
// =============================================================================

// builder threads a State through commands and keeps the first error.
type builder struct {
	st  workshop.State
	ids *workshop.Sequence
	err error
}

func (b *builder) do(step func(workshop.State) (workshop.State, error)) {
	if b.err != nil {
		return
	}
	b.st, b.err = step(b.st)
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// BracketShop runs the commands a user would run to set up a small shop.
func BracketShop() (workshop.State, error) {
	b := &builder{ids: &workshop.Sequence{}}
	may := func(day int) workshop.Date { return workshop.NewDate(2024, time.May, day) }

	var supplier, customer workshop.Contact
	var bracket workshop.Part
	var worker workshop.Employee
	var run workshop.AssemblyOrder
	var sold workshop.SalesOrder

	b.do(func(st workshop.State) (workshop.State, error) {
		var err error
		st, supplier, err = contacts.AddContact(st, workshop.Contact{
			Name: "Metal Supply Co", Roles: []workshop.ContactRole{workshop.RoleSupplier},
			ContactInfo: "info@metalsupply.com", ActivityType: "Raw materials",
		}, b.ids)
		if err != nil {
			return st, err
		}
		st, customer, err = contacts.AddContact(st, workshop.Contact{
			Name: "Global Corp", Roles: []workshop.ContactRole{workshop.RoleCustomer},
			ContactInfo: "contact@globalcorp.com", Job: "Manufacturing",
		}, b.ids)
		return st, err
	})

	b.do(func(st workshop.State) (workshop.State, error) {
		st, _, err := inventory.AddPurchase(st, workshop.PurchaseInvoice{
			SupplierID: supplier.ID,
			Date:       may(2),
			Items: []workshop.PurchaseItem{
				{ItemName: "Steel Sheet", Quantity: d("20"), UnitPrice: d("30000")},
				{ItemName: "Bolt", Quantity: d("200"), UnitPrice: d("500")},
			},
		}, b.ids, inventory.DefaultPurchaseOptions())
		return st, err
	})

	b.do(func(st workshop.State) (workshop.State, error) {
		steel, _ := st.PartByName("Steel Sheet")
		bolt, _ := st.PartByName("Bolt")
		var err error
		st, bracket, err = inventory.AddPart(st, workshop.Part{
			Name:       "Bracket",
			IsAssembly: true,
			Threshold:  d("5"),
			Components: []workshop.Component{
				{PartID: steel.ID, Quantity: d("1")},
				{PartID: bolt.ID, Quantity: d("4")},
			},
		}, b.ids)
		return st, err
	})

	b.do(func(st workshop.State) (workshop.State, error) {
		var err error
		st, worker, err = payroll.AddEmployee(st, workshop.Employee{
			Name: "Ali Rezaei", PayType: workshop.PayHourly,
			HourlyRate: d("150000"), OvertimeRate: d("200000"),
		}, b.ids)
		if err != nil {
			return st, err
		}
		st, _, err = payroll.AddWorkLog(st, workshop.WorkLog{
			EmployeeID: worker.ID, Date: may(3),
			Work: workshop.HourlyWork{Hours: d("8")}, OvertimeHours: d("1"),
		}, b.ids)
		return st, err
	})

	b.do(func(st workshop.State) (workshop.State, error) {
		var err error
		st, run, err = production.AddAssemblyOrder(st, workshop.AssemblyOrder{
			PartID: bracket.ID, Quantity: d("5"), Date: may(3),
		}, b.ids)
		if err != nil {
			return st, err
		}
		st, _, err = production.AddProductionLog(st, workshop.ProductionLog{
			AssemblyOrderID: run.ID, EmployeeID: worker.ID, Date: may(3), HoursSpent: d("2"),
		}, b.ids)
		if err != nil {
			return st, err
		}
		st, _, err = production.CompleteAssemblyOrder(st, run.ID, inventory.Valuer{})
		return st, err
	})

	b.do(func(st workshop.State) (workshop.State, error) {
		var err error
		st, sold, err = sales.AddOrder(st, workshop.SalesOrder{
			CustomerID: customer.ID, Date: may(6), DeliveryDate: may(10),
			Items: []workshop.OrderItem{{ProductID: bracket.ID, Quantity: d("2"), Price: d("150000")}},
		}, b.ids)
		if err != nil {
			return st, err
		}
		st, _, err = sales.AddPayment(st, sold.ID, workshop.Payment{Amount: d("300000"), Date: may(6)},
			workshop.OverpaymentReject, b.ids)
		if err != nil {
			return st, err
		}
		st, _, err = sales.DeliverOrder(st, sold.ID, inventory.Valuer{})
		if err != nil {
			return st, err
		}
		st, _, err = sales.AddOrder(st, workshop.SalesOrder{
			CustomerID: customer.ID, Date: may(12), DeliveryDate: may(20),
			Items: []workshop.OrderItem{{ProductID: bracket.ID, Quantity: d("3"), Price: d("150000")}},
		}, b.ids)
		return st, err
	})

	b.do(func(st workshop.State) (workshop.State, error) {
		st, _, err := contacts.AddExpense(st, workshop.Expense{
			Date: may(1), Description: "Workshop rent for May", Amount: d("5000000"), Category: "Rent",
		}, b.ids)
		return st, err
	})

	if b.err != nil {
		return workshop.State{}, fmt.Errorf("bracket shop: %w", b.err)
	}
	return b.st, nil
}
