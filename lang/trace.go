package lang

import (
	"errors"
	"log/slog"
	"strconv"
)

// EventKind distinguishes the two halves of a node visit.
type EventKind int

const (
	// EventStart is recorded before a node is evaluated.
	EventStart EventKind = iota

	// EventEnd is recorded after a node has produced a value or failed.
	EventEnd
)

// String returns the name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "Start"

	case EventEnd:
		return "End"

	default:
		return "Unknown"
	}
}

// Event is one entry of a [Trace].
type Event struct {
	Kind EventKind
	ID   NodeID
	// Env is the environment in effect when the node was entered (Start only).
	// Environments are immutable, so the pointer is a stable snapshot.
	Env *Env
	// Value and Err hold the outcome of the node (End only).
	Value Value
	Err   error
}

// Trace is the ordered record of node visits made by one evaluation.
//
// Events nest like a pre/post-order traversal of the evaluation call tree:
// every Start is matched by exactly one later End with the same ID, and
// a node entered after another's Start ends before that node's End. A node
// may be visited more than once when a function body is called repeatedly.
type Trace []Event

// State is the progress of a node at some step of a [Trace].
type State int

const (
	// StateNotStarted means the node has no Start event in the prefix.
	StateNotStarted State = iota

	// StateInProgress means the node has started but not yet ended.
	StateInProgress

	// StateDone means the node has ended with a value or an error.
	StateDone
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"

	case StateInProgress:
		return "in progress"

	case StateDone:
		return "done"

	default:
		return "unknown"
	}
}

// Status describes a node at one step of a [Trace].
// Nodes absent from a status map are not started.
type Status struct {
	State State
	// Env is the environment at the node's most recent Start.
	Env *Env
	// Value and Err are the outcome of the most recent End (StateDone only).
	Value Value
	Err   error
}

// Status replays the first step events of t and reports the state of every
// node that has started. A negative step or one beyond the end of t replays
// the whole trace. For repeated visits the most recent one wins.
func (t Trace) Status(step int) map[NodeID]Status {
	if step < 0 || step > len(t) {
		step = len(t)
	}

	status := make(map[NodeID]Status)

	for _, ev := range t[:step] {
		switch ev.Kind {
		case EventStart:
			status[ev.ID] = Status{State: StateInProgress, Env: ev.Env}

		case EventEnd:
			s := status[ev.ID]
			s.State = StateDone
			s.Value = ev.Value
			s.Err = ev.Err
			status[ev.ID] = s
		}
	}

	return status
}

// Validate reports whether t is properly nested: each End closes the most
// recently started open node and no node is left open.
func (t Trace) Validate() error {
	open := make([]NodeID, 0, 16)

	for i, ev := range t {
		switch ev.Kind {
		case EventStart:
			open = append(open, ev.ID)

		case EventEnd:
			if len(open) == 0 {
				return ErrInvalidTrace.With(
					slog.Int("step", i),
					slog.Int("node", int(ev.ID)),
					slog.String("problem", "end without start"))
			}

			if top := open[len(open)-1]; top != ev.ID {
				return ErrInvalidTrace.With(
					slog.Int("step", i),
					slog.Int("node", int(ev.ID)),
					slog.Int("open", int(top)),
					slog.String("problem", "end does not match innermost start"))
			}

			open = open[:len(open)-1]

		default:
			return ErrInvalidTrace.With(
				slog.Int("step", i),
				slog.String("problem", "unknown event kind"))
		}
	}

	if len(open) > 0 {
		return ErrInvalidTrace.With(
			slog.Int("open", len(open)),
			slog.String("problem", "unterminated start"))
	}

	return nil
}

// ToNative converts t to plain Go values for serialization.
func (t Trace) ToNative() []any {
	out := make([]any, len(t))
	for i, ev := range t {
		out[i] = ev.ToNative()
	}

	return out
}

// ToNative converts ev to a plain Go map for serialization.
func (ev Event) ToNative() map[string]any {
	m := map[string]any{
		"event": ev.Kind.String(),
		"node":  int(ev.ID),
	}

	switch ev.Kind {
	case EventStart:
		env := make(map[string]any, ev.Env.Len())
		for name, v := range ev.Env.All() {
			env[name] = v.ToNative()
		}

		m["env"] = env

	case EventEnd:
		if ev.Err != nil {
			m["error"] = errorNative(ev.Err)
		} else {
			m["value"] = ev.Value.ToNative()
		}
	}

	return m
}

func errorNative(err error) map[string]any {
	var ee *EvalError
	if errors.As(err, &ee) {
		return map[string]any{
			"reason":  ee.Reason.String(),
			"range":   ee.Range.String(),
			"message": ee.Error(),
		}
	}

	return map[string]any{"message": err.Error()}
}

// String returns a one-line description of ev.
func (ev Event) String() string {
	s := ev.Kind.String() + "(" + strconv.Itoa(int(ev.ID))

	switch ev.Kind {
	case EventStart:
		s += ", env=" + strconv.Itoa(len(ev.Env.Names()))

	case EventEnd:
		if ev.Err != nil {
			s += ", error=" + ev.Err.Error()
		} else {
			s += ", " + ev.Value.String()
		}
	}

	return s + ")"
}
