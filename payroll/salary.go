package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// SALARY COMPUTATION
// =============================================================================

// SalaryLine is one employee's pay for a set of work logs.
type SalaryLine struct {
	EmployeeID     workshop.EmployeeID `json:"employeeId"`
	EmployeeName   string              `json:"employeeName"`
	PayType        workshop.PayType    `json:"payType"`
	TotalHours     decimal.Decimal     `json:"totalHours"`
	TotalDays      int                 `json:"totalDays"`
	TotalOvertime  decimal.Decimal     `json:"totalOvertime"`
	BaseSalary     decimal.Decimal     `json:"baseSalary"`
	OvertimeSalary decimal.Decimal     `json:"overtimeSalary"`
	TotalSalary    decimal.Decimal     `json:"totalSalary"`
}

// ComputeSalary prices the given logs at the employee's current rates.
// Logs of other employees are ignored.
func ComputeSalary(e workshop.Employee, logs []workshop.WorkLog) SalaryLine {
	line := SalaryLine{
		EmployeeID:    e.ID,
		EmployeeName:  e.Name,
		PayType:       e.PayType,
		TotalHours:    decimal.Zero,
		TotalOvertime: decimal.Zero,
	}
	for _, l := range logs {
		if l.EmployeeID != e.ID {
			continue
		}
		line.TotalHours = line.TotalHours.Add(l.Hours())
		line.TotalOvertime = line.TotalOvertime.Add(l.OvertimeHours)
		if l.WorkedDay() {
			line.TotalDays++
		}
	}

	if e.PayType == workshop.PayHourly {
		line.BaseSalary = line.TotalHours.Mul(e.HourlyRate)
	} else {
		line.BaseSalary = decimal.NewFromInt(int64(line.TotalDays)).Mul(e.DailyRate)
	}
	line.OvertimeSalary = line.TotalOvertime.Mul(e.OvertimeRate)
	line.TotalSalary = line.BaseSalary.Add(line.OvertimeSalary)
	return line
}

// SalaryLines computes every employee's salary over the range, in employee
// order. Zero lines are included; callers filter.
func SalaryLines(st workshop.State, rng workshop.DateRange) []SalaryLine {
	lines := make([]SalaryLine, 0, len(st.Employees))
	for _, e := range st.Employees {
		lines = append(lines, ComputeSalary(e, WorkLogsFor(st, e.ID, rng)))
	}
	return lines
}

// =============================================================================
// SALARY PAYMENTS
// =============================================================================

// Statement is what an employee earned in a period against what was paid.
type Statement struct {
	Salary    SalaryLine               `json:"salary"`
	Payments  []workshop.SalaryPayment `json:"payments"`
	Paid      decimal.Decimal          `json:"paid"`
	Remaining decimal.Decimal          `json:"remaining"`
}

// BuildStatement computes the salary over the range and sums the payments
// whose whole period lies inside it.
func BuildStatement(st workshop.State, id workshop.EmployeeID, rng workshop.DateRange) (Statement, error) {
	e, ok := st.Employee(id)
	if !ok {
		return Statement{}, workshop.NewNotFound("employee", id)
	}
	s := Statement{
		Salary:   ComputeSalary(e, WorkLogsFor(st, id, rng)),
		Payments: []workshop.SalaryPayment{},
		Paid:     decimal.Zero,
	}
	for _, p := range st.SalaryPayments {
		if p.EmployeeID == id && rng.Within(p.PeriodStart, p.PeriodEnd) {
			s.Payments = append(s.Payments, p)
			s.Paid = s.Paid.Add(p.Amount)
		}
	}
	s.Remaining = s.Salary.TotalSalary.Sub(s.Paid)
	return s, nil
}

// PaySalary appends a payment against a period. Partial payments are
// normal; under OverpaymentReject a payment above the period's remaining
// salary is refused.
func PaySalary(st workshop.State, p workshop.SalaryPayment, policy workshop.OverpaymentPolicy, ids workshop.IDSource) (workshop.State, workshop.SalaryPayment, error) {
	if err := workshop.Validate(p); err != nil {
		return st, workshop.SalaryPayment{}, err
	}
	if _, ok := st.Employee(p.EmployeeID); !ok {
		return st, workshop.SalaryPayment{}, workshop.NewNotFound("employee", p.EmployeeID)
	}
	if p.PeriodEnd.Before(p.PeriodStart) {
		return st, workshop.SalaryPayment{}, workshop.Invalid("periodEnd", "gtefield", "period end is before period start")
	}

	if policy == workshop.OverpaymentReject {
		stmt, err := BuildStatement(st, p.EmployeeID, workshop.Between(p.PeriodStart, p.PeriodEnd))
		if err != nil {
			return st, workshop.SalaryPayment{}, err
		}
		if p.Amount.GreaterThan(stmt.Remaining) {
			return st, workshop.SalaryPayment{}, workshop.Invalid("amount", "overpayment",
				fmt.Sprintf("payment %s exceeds remaining salary %s", p.Amount, stmt.Remaining))
		}
	}

	p.ID = workshop.SalaryPaymentID(ids.NextID())
	return st.WithSalaryPayment(p), p, nil
}
