// Package session models one report run as an explicit state machine so the
// acquisition and summarization flow can be driven and tested without a UI.
package session

import (
	"fmt"
	"strings"

	"tubeinsight/internal/services"
)

// State is a session lifecycle position.
type State string

const (
	StateIdle             State = "idle"
	StateSearching        State = "searching"
	StateNeedManualUpload State = "need_manual_upload"
	StateAnalyzing        State = "analyzing"
	StateDone             State = "done"
)

// Event triggers a transition.
type Event string

const (
	EventStart            Event = "start"
	EventVideoFound       Event = "video_found"
	EventVideoNotFound    Event = "video_not_found"
	EventContentAcquired  Event = "content_acquired"
	EventContentExhausted Event = "content_exhausted"
	EventManualProvided   Event = "manual_provided"
	EventManualSkipped    Event = "manual_skipped"
	EventSummaryComplete  Event = "summary_complete"
	EventReset            Event = "reset"
)

// ErrInvalidTransition is returned when an event does not apply to the current state.
var ErrInvalidTransition = fmt.Errorf("%w: invalid session transition", services.ErrValidation)

type transitionKey struct {
	from  State
	event Event
}

var transitions = map[transitionKey]State{
	{StateIdle, EventStart}:                      StateSearching,
	{StateSearching, EventVideoFound}:            StateSearching,
	{StateSearching, EventVideoNotFound}:         StateDone,
	{StateSearching, EventContentAcquired}:       StateAnalyzing,
	{StateSearching, EventContentExhausted}:      StateNeedManualUpload,
	{StateNeedManualUpload, EventManualProvided}: StateAnalyzing,
	{StateNeedManualUpload, EventManualSkipped}:  StateDone,
	{StateAnalyzing, EventSummaryComplete}:       StateDone,
	{StateDone, EventReset}:                      StateIdle,
	{StateDone, EventStart}:                      StateSearching,
}

// Transition returns the state reached by applying event in from.
func Transition(from State, event Event) (State, error) {
	to, ok := transitions[transitionKey{from, event}]
	if !ok {
		return from, fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, event, from)
	}
	return to, nil
}

// Step records one applied transition.
type Step struct {
	From  State
	Event Event
	To    State
}

// Machine tracks the current state of one session. It is not safe for
// concurrent use.
type Machine struct {
	state   State
	history []Step
	observe func(Step)
}

// New returns a machine in StateIdle. observe, when non-nil, sees every applied step.
func New(observe func(Step)) *Machine {
	return &Machine{state: StateIdle, observe: observe}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Fire applies event. The state is unchanged on error.
func (m *Machine) Fire(event Event) error {
	to, err := Transition(m.state, event)
	if err != nil {
		return err
	}
	step := Step{From: m.state, Event: event, To: to}
	m.state = to
	m.history = append(m.history, step)
	if m.observe != nil {
		m.observe(step)
	}
	return nil
}

// History returns a copy of the applied steps.
func (m *Machine) History() []Step {
	out := make([]Step, len(m.history))
	copy(out, m.history)
	return out
}

// Path renders the visited states, e.g. "idle -> searching -> done".
func (m *Machine) Path() string {
	if len(m.history) == 0 {
		return string(m.state)
	}
	parts := []string{string(m.history[0].From)}
	for _, step := range m.history {
		parts = append(parts, string(step.To))
	}
	return strings.Join(parts, " -> ")
}
