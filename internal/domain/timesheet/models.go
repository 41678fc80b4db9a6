package timesheet

import "time"

// Action is a clock event kind. The zero value means "no event".
type Action uint8

const (
	ActionNone Action = iota
	ActionTimeIn
	ActionBreak
	ActionTimeOut
)

// DayState is where an employee's day stands after its latest event.
type DayState uint8

const (
	StateNone DayState = iota
	StateIn
	StateOnBreak
	StateOut
)

type ClockEvent struct {
	ID         int64     `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Action     Action    `json:"action"`
	OccurredAt time.Time `json:"occurredAt"`
}

// DailySummary is keyed by (EmployeeID, Date). Date is the civil day in the
// reference timezone, carried as midnight UTC.
type DailySummary struct {
	ID               int64     `json:"id"`
	EmployeeID       string    `json:"employeeId"`
	Date             time.Time `json:"date"`
	TotalTimeSeconds int64     `json:"totalTimeSeconds"`
	FirstEventAt     time.Time `json:"firstEventAt"`
	LastEventAt      time.Time `json:"lastEventAt"`
}

type DayView struct {
	LastAction Action
	Events     []ClockEvent
	Summary    *DailySummary
}

// SummaryRow is one line of the paginated timesheet history.
type SummaryRow struct {
	FullName  string `json:"fullName"`
	Date      string `json:"date"`
	TotalTime string `json:"totalTime"`
	TimeSpan  string `json:"timeSpan"`
}

type SummaryPage struct {
	LastAction     Action       `json:"lastAction"`
	DailySummaries []SummaryRow `json:"dailySummaries"`
	TotalPages     int          `json:"totalPages"`
	CurrentPage    int          `json:"currentPage"`
}

// TodayView is the "today" card: totals plus the first and last event times.
type TodayView struct {
	LastAction   Action        `json:"lastAction"`
	DailySummary *TodaySummary `json:"dailySummary"`
}

type TodaySummary struct {
	FullName  string  `json:"fullName"`
	TotalTime string  `json:"totalTime"`
	TimeIn    string  `json:"timeIn,omitempty"`
	TimeOut   *string `json:"timeOut"`
	TimeSpan  string  `json:"timeSpan"`
	Date      string  `json:"date"`
}

type ImportResult struct {
	Days   int `json:"days"`
	Events int `json:"events"`
}
