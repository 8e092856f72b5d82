package workshop

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// =============================================================================
// WORK LOG - Tagged union keyed by the employee's pay type
// =============================================================================

// WorkEntry is the pay-type specific part of a work log.
// Implementations: HourlyWork, DailyWork.
type WorkEntry interface {
	PayType() PayType
	isWorkEntry()
}

// HourlyWork records hours worked by an hourly employee.
type HourlyWork struct {
	Hours decimal.Decimal
}

func (HourlyWork) PayType() PayType { return PayHourly }
func (HourlyWork) isWorkEntry()     {}

// DailyWork records whether a daily-rate employee worked the day.
type DailyWork struct {
	Worked bool
}

func (DailyWork) PayType() PayType { return PayDaily }
func (DailyWork) isWorkEntry()     {}

// WorkLog is one day of attendance. Work may be nil for logs loaded from a
// snapshot that carried neither variant; such logs only contribute overtime.
type WorkLog struct {
	ID            WorkLogID       `json:"id"`
	EmployeeID    EmployeeID      `json:"employeeId" validate:"required"`
	Date          Date            `json:"date" validate:"required"`
	Work          WorkEntry       `json:"-"`
	OvertimeHours decimal.Decimal `json:"overtimeHours" validate:"gte=0"`
	Description   string          `json:"description,omitempty"`

	// alt holds the daily variant when a decoded log carried both fields.
	alt WorkEntry
}

func (l WorkLog) key() int64 { return int64(l.ID) }

// Hours returns the hourly hours, zero for any other variant.
func (l WorkLog) Hours() decimal.Decimal {
	if w, ok := l.Work.(HourlyWork); ok {
		return w.Hours
	}
	return decimal.Zero
}

// WorkedDay reports whether a daily entry marks the day as worked.
func (l WorkLog) WorkedDay() bool {
	if w, ok := l.Work.(DailyWork); ok {
		return w.Worked
	}
	return false
}

// workLogJSON is the persisted shape: hoursWorked and workedDay side by side.
type workLogJSON struct {
	ID            WorkLogID        `json:"id"`
	EmployeeID    EmployeeID       `json:"employeeId"`
	Date          Date             `json:"date"`
	HoursWorked   *decimal.Decimal `json:"hoursWorked,omitempty"`
	WorkedDay     *bool            `json:"workedDay,omitempty"`
	OvertimeHours decimal.Decimal  `json:"overtimeHours"`
	Description   string           `json:"description,omitempty"`
}

func (l WorkLog) MarshalJSON() ([]byte, error) {
	out := workLogJSON{
		ID:            l.ID,
		EmployeeID:    l.EmployeeID,
		Date:          l.Date,
		OvertimeHours: l.OvertimeHours,
		Description:   l.Description,
	}
	switch w := l.Work.(type) {
	case HourlyWork:
		h := w.Hours
		out.HoursWorked = &h
	case DailyWork:
		d := w.Worked
		out.WorkedDay = &d
	}
	return json.Marshal(out)
}

func (l *WorkLog) UnmarshalJSON(data []byte) error {
	var in workLogJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*l = WorkLog{
		ID:            in.ID,
		EmployeeID:    in.EmployeeID,
		Date:          in.Date,
		OvertimeHours: in.OvertimeHours,
		Description:   in.Description,
	}
	switch {
	case in.HoursWorked != nil:
		l.Work = HourlyWork{Hours: *in.HoursWorked}
		if in.WorkedDay != nil {
			l.alt = DailyWork{Worked: *in.WorkedDay}
		}
	case in.WorkedDay != nil:
		l.Work = DailyWork{Worked: *in.WorkedDay}
	}
	return nil
}

// ForPayType settles a log decoded with both hoursWorked and workedDay on
// the variant matching pt. Without a match the hourly variant stays.
func (l WorkLog) ForPayType(pt PayType) WorkLog {
	if l.alt != nil && l.alt.PayType() == pt && (l.Work == nil || l.Work.PayType() != pt) {
		l.Work = l.alt
	}
	l.alt = nil
	return l
}
