package timesheet

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestNextTransitionTable(t *testing.T) {
	cases := []struct {
		from   DayState
		action Action
		want   DayState
		reason string
	}{
		{StateNone, ActionTimeIn, StateIn, ""},
		{StateNone, ActionBreak, StateNone, "must Time In first"},
		{StateNone, ActionTimeOut, StateNone, "must Time In first"},
		{StateIn, ActionBreak, StateOnBreak, ""},
		{StateIn, ActionTimeOut, StateOut, ""},
		{StateIn, ActionTimeIn, StateIn, "already timed in"},
		{StateOnBreak, ActionTimeIn, StateIn, ""},
		{StateOnBreak, ActionBreak, StateOnBreak, "consecutive BREAK not allowed"},
		{StateOnBreak, ActionTimeOut, StateOnBreak, "must Time In before Time Out"},
		{StateOut, ActionTimeIn, StateOut, "day already closed"},
		{StateOut, ActionBreak, StateOut, "day already closed"},
		{StateOut, ActionTimeOut, StateOut, "day already closed"},
	}

	for _, tc := range cases {
		got, err := Next(tc.from, tc.action)
		if got != tc.want {
			t.Fatalf("%s + %s: expected state %s, got %s", tc.from, tc.action, tc.want, got)
		}
		if tc.reason == "" {
			if err != nil {
				t.Fatalf("%s + %s: unexpected error %v", tc.from, tc.action, err)
			}
			continue
		}
		var terr *TransitionError
		if !errors.As(err, &terr) || terr.Reason != tc.reason {
			t.Fatalf("%s + %s: expected reason %q, got %v", tc.from, tc.action, tc.reason, err)
		}
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition in chain, got %v", err)
		}
	}
}

func TestNextRejectsNoneAction(t *testing.T) {
	if _, err := Next(StateNone, ActionNone); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected rejection of ActionNone, got %v", err)
	}
}

func TestParseAction(t *testing.T) {
	for input, want := range map[string]Action{
		"TIME_IN":  ActionTimeIn,
		"time_in":  ActionTimeIn,
		" Break ":  ActionBreak,
		"time_OUT": ActionTimeOut,
	} {
		got, err := ParseAction(input)
		if err != nil || got != want {
			t.Fatalf("ParseAction(%q) = %v, %v", input, got, err)
		}
	}
	for _, input := range []string{"", "LUNCH", "TIMEIN"} {
		if _, err := ParseAction(input); !errors.Is(err, ErrInvalidAction) {
			t.Fatalf("ParseAction(%q): expected ErrInvalidAction, got %v", input, err)
		}
	}
}

func TestActionJSON(t *testing.T) {
	payload, err := json.Marshal(struct {
		A Action `json:"a"`
		B Action `json:"b"`
	}{ActionBreak, ActionNone})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(payload) != `{"a":"BREAK","b":""}` {
		t.Fatalf("unexpected payload %s", payload)
	}

	var decoded struct {
		Action Action `json:"action"`
	}
	if err := json.Unmarshal([]byte(`{"action":"time_out"}`), &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Action != ActionTimeOut {
		t.Fatalf("expected TIME_OUT, got %s", decoded.Action)
	}
	if err := json.Unmarshal([]byte(`{"action":"nap"}`), &decoded); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestElapsedSeconds(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	at := func(h, m, s int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second) }

	cases := []struct {
		name   string
		events []ClockEvent
		want   int64
	}{
		{"empty", nil, 0},
		{"open interval only", []ClockEvent{{Action: ActionTimeIn, OccurredAt: at(9, 0, 0)}}, 0},
		{
			"work with break",
			[]ClockEvent{
				{Action: ActionTimeIn, OccurredAt: at(9, 0, 0)},
				{Action: ActionBreak, OccurredAt: at(12, 0, 0)},
				{Action: ActionTimeIn, OccurredAt: at(13, 0, 0)},
				{Action: ActionTimeOut, OccurredAt: at(17, 0, 0)},
			},
			25200,
		},
		{
			"repeated time in restarts interval",
			[]ClockEvent{
				{Action: ActionTimeIn, OccurredAt: at(8, 0, 0)},
				{Action: ActionTimeIn, OccurredAt: at(9, 0, 0)},
				{Action: ActionTimeOut, OccurredAt: at(10, 0, 0)},
			},
			3600,
		},
		{
			"unpaired closer adds nothing",
			[]ClockEvent{
				{Action: ActionBreak, OccurredAt: at(8, 0, 0)},
				{Action: ActionTimeIn, OccurredAt: at(9, 0, 0)},
				{Action: ActionTimeOut, OccurredAt: at(9, 30, 0)},
				{Action: ActionTimeOut, OccurredAt: at(10, 0, 0)},
			},
			1800,
		},
		{
			"sum is truncated once",
			[]ClockEvent{
				{Action: ActionTimeIn, OccurredAt: at(9, 0, 0)},
				{Action: ActionBreak, OccurredAt: at(9, 0, 1).Add(600 * time.Millisecond)},
				{Action: ActionTimeIn, OccurredAt: at(10, 0, 0)},
				{Action: ActionTimeOut, OccurredAt: at(10, 0, 1).Add(600 * time.Millisecond)},
			},
			3,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ElapsedSeconds(tc.events); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestCivilDayUsesReferenceZone(t *testing.T) {
	manila := time.FixedZone("PHT", 8*3600)
	at := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)

	if got := CivilDay(at, manila); !got.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected 2024-01-02, got %s", got)
	}
	start, end := DayBounds(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), manila)
	if !start.Equal(time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC)) || end.Sub(start) != 24*time.Hour {
		t.Fatalf("unexpected bounds %s - %s", start, end)
	}
}

func TestFormatDuration(t *testing.T) {
	for seconds, want := range map[int64]string{
		0:      "00:00:00",
		25200:  "07:00:00",
		3661:   "01:01:01",
		100000: "27:46:40",
		-5:     "00:00:00",
	} {
		if got := FormatDuration(seconds); got != want {
			t.Fatalf("FormatDuration(%d) = %s, want %s", seconds, got, want)
		}
	}
}
