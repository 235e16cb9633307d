package floorplan

import (
	"math"
)

// DefaultDragThreshold is how far the pointer may travel between press
// and release while still counting as a click.
const DefaultDragThreshold = 4.0

// LeavePolicy decides what pointer-leave does to an active drag.
type LeavePolicy string

const (
	// LeaveCommit treats leaving the canvas exactly like a release.
	LeaveCommit LeavePolicy = "commit"
	// LeaveCancel drops the drag and keeps the committed position.
	LeaveCancel LeavePolicy = "cancel"
)

// ParseLeavePolicy falls back to LeaveCommit for anything unrecognised.
func ParseLeavePolicy(s string) LeavePolicy {
	if LeavePolicy(s) == LeaveCancel {
		return LeaveCancel
	}
	return LeaveCommit
}

// DragSession is the in-flight manipulation of one entity.
type DragSession struct {
	EntityID string `json:"entityId"`
	// Grab is the pointer offset from the entity's top-left corner,
	// fixed at press time.
	Grab Point `json:"grabOffset"`
	// Live is the clamped preview position, nil until known.
	Live *Point `json:"livePosition,omitempty"`

	origin Point
	moved  bool
}

// State is the whole engine state for one pointer owner. Selection is
// independent from dragging.
type State struct {
	Drag       *DragSession `json:"drag,omitempty"`
	SelectedID string       `json:"selectedId,omitempty"`

	// released is the entity whose press just ended with a release. The
	// browser follows that release with a click, which is already handled.
	released string
}

// Dragging reports whether a session is active.
func (s State) Dragging() bool {
	return s.Drag != nil
}

// DraggingID returns the id of the dragged entity or "".
func (s State) DraggingID() string {
	if s.Drag == nil {
		return ""
	}
	return s.Drag.EntityID
}

// EventKind enumerates the inputs the reducer understands.
type EventKind string

const (
	EventPress      EventKind = "press"
	EventMove       EventKind = "move"
	EventRelease    EventKind = "release"
	EventLeave      EventKind = "leave"
	EventClick      EventKind = "click"
	EventListSelect EventKind = "list_select"
)

// Event is a single input. EntityID is only read for press, click and
// list selection.
type Event struct {
	Kind     EventKind
	EntityID string
	Pointer  PointerInput
}

// Effect is an instruction for the caller produced by a transition.
type Effect interface {
	isEffect()
}

// DragStarted is emitted when a press creates a session.
type DragStarted struct {
	EntityID string
}

// CommitRequested asks the caller to persist a finished drag.
type CommitRequested struct {
	Request CommitRequest
}

// Selected is the selection callback.
type Selected struct {
	EntityID string
}

// Abandoned reports a session dropped without a commit.
type Abandoned struct {
	EntityID string
	Reason   string
}

func (DragStarted) isEffect()     {}
func (CommitRequested) isEffect() {}
func (Selected) isEffect()        {}
func (Abandoned) isEffect()       {}

// Env carries everything the reducer reads besides state and event.
// Lookup must reflect the latest entity data; footprints are resolved
// from it on every move.
type Env struct {
	Canvas    Canvas
	Lookup    Lookup
	Threshold float64
	Leave     LeavePolicy
}

// Reduce applies one event and returns the next state plus any effects.
// The input state is never modified.
func Reduce(s State, ev Event, env Env) (State, []Effect) {
	switch ev.Kind {
	case EventPress:
		return press(s, ev, env)
	case EventMove:
		return move(s, ev, env)
	case EventRelease:
		next, effects := finish(s, env, true)
		if s.Drag != nil {
			next.released = s.Drag.EntityID
		}
		return next, effects
	case EventLeave:
		return finish(s, env, env.Leave != LeaveCancel)
	case EventClick:
		if s.Dragging() {
			return s, nil
		}
		if released := s.released; released != "" {
			s.released = ""
			if released == ev.EntityID {
				return s, nil
			}
		}
		e, ok := lookup(env, ev.EntityID)
		if !ok || !e.Placed() {
			return s, nil
		}
		s.SelectedID = e.ID
		return s, []Effect{Selected{EntityID: e.ID}}
	case EventListSelect:
		if _, ok := lookup(env, ev.EntityID); !ok {
			return s, nil
		}
		s.SelectedID = ev.EntityID
		return s, []Effect{Selected{EntityID: ev.EntityID}}
	}
	return s, nil
}

func press(s State, ev Event, env Env) (State, []Effect) {
	if s.Dragging() {
		return s, nil
	}
	e, ok := lookup(env, ev.EntityID)
	if !ok || !e.Placed() {
		return s, nil
	}
	local, ok := ToCanvas(ev.Pointer)
	if !ok {
		return s, nil
	}
	committed := e.Position.Point()
	if !committed.Finite() {
		return s, nil
	}
	live := committed
	s.Drag = &DragSession{
		EntityID: e.ID,
		Grab:     local.Sub(committed),
		Live:     &live,
		origin:   local,
	}
	s.released = ""
	return s, []Effect{DragStarted{EntityID: e.ID}}
}

func move(s State, ev Event, env Env) (State, []Effect) {
	if !s.Dragging() {
		return s, nil
	}
	id := s.Drag.EntityID
	e, ok := lookup(env, id)
	if !ok || !e.Placed() {
		s.Drag = nil
		return s, []Effect{Abandoned{EntityID: id, Reason: "entity no longer available"}}
	}
	local, ok := ToCanvas(ev.Pointer)
	if !ok {
		return s, nil
	}
	proposed := local.Sub(s.Drag.Grab)
	if !proposed.Finite() {
		return s, nil
	}
	live := env.Canvas.Clamp(proposed, env.Canvas.ResolveFootprint(e))

	next := *s.Drag
	next.Live = &live
	if !next.moved && distance(local, next.origin) > env.Threshold {
		next.moved = true
	}
	s.Drag = &next
	return s, nil
}

// finish ends the session. A session that never left the click
// threshold becomes a selection instead of a write.
func finish(s State, env Env, commit bool) (State, []Effect) {
	if !s.Dragging() {
		return s, nil
	}
	d := s.Drag
	s.Drag = nil

	e, ok := lookup(env, d.EntityID)
	if !ok || !e.Placed() {
		return s, []Effect{Abandoned{EntityID: d.EntityID, Reason: "entity no longer available"}}
	}
	if !commit {
		return s, []Effect{Abandoned{EntityID: d.EntityID, Reason: "pointer left canvas"}}
	}
	if !d.moved {
		s.SelectedID = d.EntityID
		return s, []Effect{Selected{EntityID: d.EntityID}}
	}
	if d.Live == nil {
		return s, nil
	}
	fp := env.Canvas.ResolveFootprint(e)
	req := CommitRequest{
		EntityID: d.EntityID,
		X:        roundWithin(d.Live.X, env.Canvas.Extent.Width-fp.Width),
		Y:        roundWithin(d.Live.Y, env.Canvas.Extent.Height-fp.Height),
		Rotation: e.Position.Rotation,
	}
	return s, []Effect{CommitRequested{Request: req}}
}

func lookup(env Env, id string) (Entity, bool) {
	if env.Lookup == nil || id == "" {
		return Entity{}, false
	}
	return env.Lookup(id)
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// roundWithin rounds to the nearest integer without leaving [0, max].
// A non-integral upper bound is floored so rounding up cannot escape it.
func roundWithin(v, max float64) int {
	r := math.Round(v)
	if hi := math.Floor(max); r > hi {
		r = hi
	}
	if r < 0 {
		r = 0
	}
	return int(r)
}
