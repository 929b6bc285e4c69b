package extract

import (
	"resume-insights/internal/shared/telemetry"
)

// State is a step of the extraction state machine:
// Idle -> Loading -> Rendering (per page) -> Idle on success,
// Loading -> PasswordPrompt -> Loading when a password is tried,
// Loading -> Failed on an unrecoverable error.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePasswordPrompt
	StateRendering
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePasswordPrompt:
		return "password_prompt"
	case StateRendering:
		return "rendering"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type tracker struct {
	format Format
	states []State
}

func newTracker() *tracker {
	return &tracker{states: []State{StateIdle}}
}

func (t *tracker) current() State {
	return t.states[len(t.states)-1]
}

func (t *tracker) to(next State) {
	from := t.current()
	t.states = append(t.states, next)
	telemetry.Debug("extract.state", map[string]any{
		"format": string(t.format),
		"from":   from.String(),
		"to":     next.String(),
	})
}

func (t *tracker) trace() []State {
	return append([]State(nil), t.states...)
}
