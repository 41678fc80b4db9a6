package timesheet

import (
	"fmt"
	"strings"
	"time"
)

var actionNames = [...]string{
	ActionNone:    "",
	ActionTimeIn:  "TIME_IN",
	ActionBreak:   "BREAK",
	ActionTimeOut: "TIME_OUT",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

func (a Action) Valid() bool {
	return a >= ActionTimeIn && a <= ActionTimeOut
}

func (a Action) MarshalText() ([]byte, error) {
	if a != ActionNone && !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAction, uint8(a))
	}
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAction accepts the three event names in any letter case.
func ParseAction(value string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "TIME_IN":
		return ActionTimeIn, nil
	case "BREAK":
		return ActionBreak, nil
	case "TIME_OUT":
		return ActionTimeOut, nil
	}
	return ActionNone, fmt.Errorf("%w: %q", ErrInvalidAction, value)
}

func (s DayState) String() string {
	switch s {
	case StateNone:
		return "not timed in"
	case StateIn:
		return "timed in"
	case StateOnBreak:
		return "on break"
	case StateOut:
		return "timed out"
	}
	return fmt.Sprintf("DayState(%d)", uint8(s))
}

// StateAfter maps the day's latest action to the state it leaves the day in.
func StateAfter(last Action) DayState {
	switch last {
	case ActionTimeIn:
		return StateIn
	case ActionBreak:
		return StateOnBreak
	case ActionTimeOut:
		return StateOut
	}
	return StateNone
}

// Next applies action to state or returns a *TransitionError.
func Next(state DayState, action Action) (DayState, error) {
	reject := func(reason string) (DayState, error) {
		return state, &TransitionError{From: state, Action: action, Reason: reason}
	}
	if !action.Valid() {
		return reject("unknown action")
	}

	switch state {
	case StateNone:
		if action == ActionTimeIn {
			return StateIn, nil
		}
		return reject("must Time In first")
	case StateIn:
		switch action {
		case ActionBreak:
			return StateOnBreak, nil
		case ActionTimeOut:
			return StateOut, nil
		default:
			return reject("already timed in")
		}
	case StateOnBreak:
		switch action {
		case ActionTimeIn:
			return StateIn, nil
		case ActionBreak:
			return reject("consecutive BREAK not allowed")
		default:
			return reject("must Time In before Time Out")
		}
	case StateOut:
		return reject("day already closed")
	}
	return reject("unknown state")
}

// ElapsedSeconds sums every TIME_IN to BREAK/TIME_OUT interval of an ordered
// day. A repeated TIME_IN restarts the open interval and closers without an
// open interval add nothing. The exact sum is truncated to whole seconds.
func ElapsedSeconds(events []ClockEvent) int64 {
	var total time.Duration
	var openedAt time.Time
	open := false

	for _, evt := range events {
		switch evt.Action {
		case ActionTimeIn:
			openedAt = evt.OccurredAt
			open = true
		case ActionBreak, ActionTimeOut:
			if open {
				total += evt.OccurredAt.Sub(openedAt)
				open = false
			}
		}
	}
	if total < 0 {
		return 0
	}
	return int64(total / time.Second)
}

// CivilDay returns the calendar day of t in loc, as midnight UTC.
func CivilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayBounds returns the [start, end) instants of a civil day in loc.
func DayBounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

// FormatDuration renders seconds as HH:MM:SS; hours may exceed 24.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
