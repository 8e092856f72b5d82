/*
Package payroll keeps employees, their attendance and their pay.

PURPOSE:
  Work logs are the attendance ledger. A period's salary is computed from
  them on demand and never stored; salary payments are an append-only
  ledger of money handed out against a period.

WORK ENTRIES:
  An hourly employee logs HourlyWork{Hours}; a daily employee logs
  DailyWork{Worked}. A log whose variant does not match the employee's pay
  type is refused. Overtime applies to both.

SALARY:
  base     = hours * hourlyRate          (HOURLY)
           = workedDays * dailyRate      (DAILY)
  overtime = overtimeHours * overtimeRate
  total    = base + overtime

SEE ALSO:
  - salary.go: ComputeSalary, PaySalary, Statement
  - reports/: Period salary totals
*/
package payroll

import (
	"strings"

	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

func AddEmployee(st workshop.State, e workshop.Employee, ids workshop.IDSource) (workshop.State, workshop.Employee, error) {
	if err := validateEmployee(e); err != nil {
		return st, workshop.Employee{}, err
	}
	e.ID = workshop.EmployeeID(ids.NextID())
	return st.WithEmployee(e), e, nil
}

func EditEmployee(st workshop.State, e workshop.Employee) (workshop.State, error) {
	if _, ok := st.Employee(e.ID); !ok {
		return st, workshop.NewNotFound("employee", e.ID)
	}
	if err := validateEmployee(e); err != nil {
		return st, err
	}
	return st.WithEmployee(e), nil
}

// DeleteEmployee removes the employee and every work log they own.
// Salary payments and production logs are kept as history.
func DeleteEmployee(st workshop.State, id workshop.EmployeeID) (workshop.State, error) {
	if _, ok := st.Employee(id); !ok {
		return st, workshop.NewNotFound("employee", id)
	}
	return st.WithoutEmployee(id), nil
}

func validateEmployee(e workshop.Employee) error {
	if err := workshop.Validate(e); err != nil {
		return err
	}
	if strings.TrimSpace(e.Name) == "" {
		return workshop.Invalid("name", "required", "name must not be blank")
	}
	return nil
}

// =============================================================================
// WORK LOGS
// =============================================================================

func AddWorkLog(st workshop.State, log workshop.WorkLog, ids workshop.IDSource) (workshop.State, workshop.WorkLog, error) {
	log.ID = workshop.WorkLogID(ids.NextID())
	log = settleWork(st, log)
	if err := validateWorkLog(st, log); err != nil {
		return st, workshop.WorkLog{}, err
	}
	return st.WithWorkLog(log), log, nil
}

func EditWorkLog(st workshop.State, log workshop.WorkLog) (workshop.State, error) {
	if _, ok := st.WorkLog(log.ID); !ok {
		return st, workshop.NewNotFound("work log", log.ID)
	}
	log = settleWork(st, log)
	if err := validateWorkLog(st, log); err != nil {
		return st, err
	}
	return st.WithWorkLog(log), nil
}

func DeleteWorkLog(st workshop.State, id workshop.WorkLogID) (workshop.State, error) {
	if _, ok := st.WorkLog(id); !ok {
		return st, workshop.NewNotFound("work log", id)
	}
	return st.WithoutWorkLog(id), nil
}

// WorkLogsFor returns an employee's logs inside the range.
func WorkLogsFor(st workshop.State, id workshop.EmployeeID, rng workshop.DateRange) []workshop.WorkLog {
	var out []workshop.WorkLog
	for _, l := range st.WorkLogs {
		if l.EmployeeID == id && rng.Contains(l.Date) {
			out = append(out, l)
		}
	}
	return out
}

// settleWork picks the entry matching the employee when the body sent both.
func settleWork(st workshop.State, log workshop.WorkLog) workshop.WorkLog {
	e, _ := st.Employee(log.EmployeeID)
	return log.ForPayType(e.PayType)
}

func validateWorkLog(st workshop.State, log workshop.WorkLog) error {
	if err := workshop.Validate(log); err != nil {
		return err
	}
	e, ok := st.Employee(log.EmployeeID)
	if !ok {
		return workshop.NewNotFound("employee", log.EmployeeID)
	}
	if log.Work == nil {
		return workshop.Invalid("work", "required", "hoursWorked or workedDay is required")
	}
	if log.Work.PayType() != e.PayType {
		return workshop.Invalid("work", "payType",
			"a "+string(log.Work.PayType())+" entry does not fit a "+string(e.PayType)+" employee")
	}
	if w, ok := log.Work.(workshop.HourlyWork); ok && w.Hours.IsNegative() {
		return workshop.Invalid("hoursWorked", "gte", "hours must not be negative")
	}
	for _, other := range st.WorkLogs {
		if other.ID != log.ID && other.EmployeeID == log.EmployeeID && other.Date.Equal(log.Date) {
			return workshop.Invalid("date", "unique", "a log for "+log.Date.String()+" already exists")
		}
	}
	return nil
}

// MissingAttendance lists employees with no work log on the day.
func MissingAttendance(st workshop.State, day workshop.Date) []workshop.Employee {
	logged := map[workshop.EmployeeID]bool{}
	for _, l := range st.WorkLogs {
		if l.Date.Equal(day) {
			logged[l.EmployeeID] = true
		}
	}
	var out []workshop.Employee
	for _, e := range st.Employees {
		if !logged[e.ID] {
			out = append(out, e)
		}
	}
	return out
}
