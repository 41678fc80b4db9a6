package timesheet

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAction     = errors.New("invalid action")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrEventOutOfOrder   = errors.New("event is earlier than the latest event of the day")
	ErrInvalidLog        = errors.New("invalid log")
	ErrDuplicateDay      = errors.New("logs already exist")
	ErrTooManyLogs       = errors.New("too many logs")
)

// TransitionError reports an event the day state machine refused.
type TransitionError struct {
	From   DayState
	Action Action
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s: %s", e.Action, e.From, e.Reason)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// LogError points at the log row or day that failed batch validation.
type LogError struct {
	Date   string
	Reason string
	err    error
}

func (e *LogError) Error() string {
	if e.Date == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s for %s", e.Reason, e.Date)
}

func (e *LogError) Unwrap() error {
	return e.err
}

func invalidLog(date, reason string) *LogError {
	return &LogError{Date: date, Reason: reason, err: ErrInvalidLog}
}
