package payments

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusUnpaid Status = "Unpaid"
	StatusPaid   Status = "Paid"
)

type Schedule string

const (
	ScheduleHourly Schedule = "Hourly"
	ScheduleDaily  Schedule = "Daily"
)

const (
	FilterDaily   = "daily"
	FilterWeekly  = "weekly"
	FilterMonthly = "monthly"
)

// PaymentRecord is the pay owed for one daily summary. TotalTimeSeconds is
// joined from the summary.
type PaymentRecord struct {
	ID               int64           `json:"id"`
	EmployeeID       string          `json:"employeeId"`
	Date             time.Time       `json:"date"`
	PayAmount        decimal.Decimal `json:"payAmount"`
	Status           Status          `json:"status"`
	DailySummaryID   int64           `json:"dailySummaryId"`
	TotalTimeSeconds int64           `json:"totalTimeSeconds"`
}

// PeriodGroup is a computed pay period; Duration is in hours.
type PeriodGroup struct {
	Date       string          `json:"date"`
	PayAmount  decimal.Decimal `json:"payAmount"`
	Duration   float64         `json:"duration"`
	Status     Status          `json:"status"`
	IsComplete bool            `json:"isComplete"`

	start time.Time
}

type PayRate struct {
	EmployeeID      string          `json:"employeeId"`
	PayRate         decimal.Decimal `json:"payRate"`
	PayRateSchedule Schedule        `json:"payRateSchedule"`
	EffectiveDate   time.Time       `json:"effectiveDate"`
}

type RecordQuery struct {
	Status Status
	From   time.Time
	To     time.Time
}

// SummaryRef is a billable daily summary with the payment record already
// derived from it, if any.
type SummaryRef struct {
	SummaryID        int64
	Date             time.Time
	TotalTimeSeconds int64
	RecordID         int64
	RecordStatus     Status
	RecordAmount     decimal.Decimal
}

type GroupedView struct {
	PayRate         *decimal.Decimal `json:"payRate"`
	PayRateSchedule Schedule         `json:"payRateSchedule,omitempty"`
	EffectiveDate   *string          `json:"effectiveDate"`
	GroupedRecords  []PeriodGroup    `json:"groupedRecords"`
}
