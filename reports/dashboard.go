package reports

import (
	"github.com/warp/workshop-engine/inventory"
	"github.com/warp/workshop-engine/payroll"
	"github.com/warp/workshop-engine/sales"
	"github.com/warp/workshop-engine/workshop"
)

// Summary is the landing view: headline figures plus what needs attention.
type Summary struct {
	Report            FinancialReport       `json:"report"`
	LowStock          []workshop.Part       `json:"lowStock"`
	PendingOrders     int                   `json:"pendingOrders"`
	OverdueOrders     []workshop.SalesOrder `json:"overdueOrders"`
	MissingAttendance []workshop.Employee   `json:"missingAttendance"`
}

// Dashboard builds the summary for a range as seen on the given day.
func Dashboard(st workshop.State, rng workshop.DateRange, today workshop.Date, valuer inventory.Valuer) Summary {
	return Summary{
		Report:            Build(st, rng, valuer),
		LowStock:          orEmpty(inventory.LowStock(st)),
		PendingOrders:     len(sales.Pending(st)),
		OverdueOrders:     orEmpty(sales.Overdue(st, today)),
		MissingAttendance: orEmpty(payroll.MissingAttendance(st, today)),
	}
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
