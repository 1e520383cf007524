package session

import (
	"errors"
	"testing"

	"tubeinsight/internal/services"
)

func TestMachineHappyPath(t *testing.T) {
	var observed []Step
	m := New(func(s Step) { observed = append(observed, s) })

	for _, ev := range []Event{EventStart, EventVideoFound, EventContentAcquired, EventSummaryComplete} {
		if err := m.Fire(ev); err != nil {
			t.Fatalf("Fire(%s): %v", ev, err)
		}
	}
	if m.State() != StateDone {
		t.Fatalf("state = %s", m.State())
	}
	if got := m.Path(); got != "idle -> searching -> searching -> analyzing -> done" {
		t.Fatalf("path = %q", got)
	}
	if len(observed) != 4 || len(m.History()) != 4 {
		t.Fatalf("observed %d steps", len(observed))
	}
}

func TestMachineManualUploadBranch(t *testing.T) {
	m := New(nil)
	steps := []struct {
		event Event
		want  State
	}{
		{EventStart, StateSearching},
		{EventVideoFound, StateSearching},
		{EventContentExhausted, StateNeedManualUpload},
		{EventManualProvided, StateAnalyzing},
		{EventSummaryComplete, StateDone},
		{EventReset, StateIdle},
	}
	for _, step := range steps {
		if err := m.Fire(step.event); err != nil {
			t.Fatalf("Fire(%s): %v", step.event, err)
		}
		if m.State() != step.want {
			t.Fatalf("after %s: state %s, want %s", step.event, m.State(), step.want)
		}
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from  State
		event Event
		want  State
		ok    bool
	}{
		{StateSearching, EventVideoNotFound, StateDone, true},
		{StateNeedManualUpload, EventManualSkipped, StateDone, true},
		{StateDone, EventStart, StateSearching, true},
		{StateIdle, EventSummaryComplete, StateIdle, false},
		{StateAnalyzing, EventContentExhausted, StateAnalyzing, false},
		{StateNeedManualUpload, EventContentAcquired, StateNeedManualUpload, false},
	}
	for _, tt := range tests {
		got, err := Transition(tt.from, tt.event)
		if got != tt.want {
			t.Errorf("Transition(%s, %s) = %s, want %s", tt.from, tt.event, got, tt.want)
		}
		if (err == nil) != tt.ok {
			t.Errorf("Transition(%s, %s) err = %v", tt.from, tt.event, err)
		}
	}
}

func TestInvalidEventLeavesStateUnchanged(t *testing.T) {
	m := New(nil)
	err := m.Fire(EventManualProvided)
	if !errors.Is(err, ErrInvalidTransition) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if m.State() != StateIdle || len(m.History()) != 0 || m.Path() != "idle" {
		t.Fatalf("state changed to %s", m.State())
	}
}
