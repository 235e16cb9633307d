package floorplan

import (
	"math"
	"testing"
)

func at(x, y float64) PointerInput {
	return PointerInput{Viewport: Point{X: x, Y: y}}
}

func envFor(entities ...Entity) Env {
	return Env{
		Canvas:    DefaultCanvas(),
		Lookup:    Index(entities),
		Threshold: DefaultDragThreshold,
		Leave:     LeaveCommit,
	}
}

func step(t *testing.T, s State, ev Event, env Env) (State, []Effect) {
	t.Helper()
	return Reduce(s, ev, env)
}

func commitOf(t *testing.T, effects []Effect) CommitRequest {
	t.Helper()
	for _, eff := range effects {
		if c, ok := eff.(CommitRequested); ok {
			return c.Request
		}
	}
	t.Fatalf("no commit in effects %#v", effects)
	return CommitRequest{}
}

func TestDragScenario_ClampsToFarCorner(t *testing.T) {
	a := placedAt("A", ShapeRectangle, 100, 100)
	a.Position.Rotation = 90
	env := envFor(a)

	// Canvas sits at (50,20) in the viewport; pointers below are local + rect.
	grab := PointerInput{Viewport: Point{X: 160, Y: 135}, Rect: CanvasRect{Left: 50, Top: 20}}
	s, effects := step(t, State{}, Event{Kind: EventPress, EntityID: "A", Pointer: grab}, env)
	if !s.Dragging() || len(effects) != 1 {
		t.Fatalf("press did not start a drag: %+v %#v", s, effects)
	}
	if s.Drag.Grab != (Point{X: 10, Y: 15}) {
		t.Fatalf("grab offset = %+v, want (10,15)", s.Drag.Grab)
	}
	if *s.Drag.Live != (Point{X: 100, Y: 100}) {
		t.Fatalf("initial live = %+v, want committed position", *s.Drag.Live)
	}

	far := PointerInput{Viewport: Point{X: 840, Y: 810}, Rect: CanvasRect{Left: 50, Top: 20}}
	s, _ = step(t, s, Event{Kind: EventMove, Pointer: far}, env)
	if *s.Drag.Live != (Point{X: 720, Y: 680}) {
		t.Fatalf("live = %+v, want (720,680)", *s.Drag.Live)
	}

	s, effects = step(t, s, Event{Kind: EventRelease}, env)
	if s.Dragging() {
		t.Fatal("release should clear the session")
	}
	got := commitOf(t, effects)
	want := CommitRequest{EntityID: "A", X: 720, Y: 680, Rotation: 90}
	if got != want {
		t.Errorf("commit = %+v, want %+v", got, want)
	}
}

func TestDrag_NoDrift(t *testing.T) {
	env := envFor(placedAt("A", ShapeSquare, 200, 200))
	s, _ := step(t, State{}, Event{Kind: EventPress, EntityID: "A", Pointer: at(230, 240)}, env)

	var first Point
	for i := 0; i < 50; i++ {
		s, _ = step(t, s, Event{Kind: EventMove, Pointer: at(300, 310)}, env)
		if i == 0 {
			first = *s.Drag.Live
			continue
		}
		if *s.Drag.Live != first {
			t.Fatalf("move %d drifted: %+v != %+v", i, *s.Drag.Live, first)
		}
	}
	if first != (Point{X: 270, Y: 270}) {
		t.Errorf("live = %+v, want (270,270)", first)
	}
}

func TestDrag_RoundsOnCommit(t *testing.T) {
	env := envFor(placedAt("A", ShapeRound, 100, 100))
	s, _ := step(t, State{}, Event{Kind: EventPress, EntityID: "A", Pointer: at(100, 100)}, env)
	s, _ = step(t, s, Event{Kind: EventMove, Pointer: at(123.7, 45.2)}, env)
	_, effects := step(t, s, Event{Kind: EventRelease}, env)

	got := commitOf(t, effects)
	if got.X != 124 || got.Y != 45 {
		t.Errorf("commit = (%d,%d), want (124,45)", got.X, got.Y)
	}
}

func TestDrag_RoundingStaysInsideFractionalBound(t *testing.T) {
	w := 80.5
	e := placedAt("A", ShapeSquare, 0, 0)
	e.Position.Width = &w
	env := envFor(e)

	s, _ := step(t, State{}, Event{Kind: EventPress, EntityID: "A", Pointer: at(0, 0)}, env)
	s, _ = step(t, s, Event{Kind: EventMove, Pointer: at(2000, 0)}, env)
	if s.Drag.Live.X != 719.5 {
		t.Fatalf("live x = %g, want 719.5", s.Drag.Live.X)
	}
	_, effects := step(t, s, Event{Kind: EventRelease}, env)
	got := commitOf(t, effects)
	if got.X != 719 {
		t.Errorf("commit x = %d, want 719", got.X)
	}
	if err := env.Canvas.ValidatePlacement(e, got.X, got.Y); err != nil {
		t.Errorf("committed position invalid: %v", err)
	}
}

func TestPress_UnplacedIsNoop(t *testing.T) {
	env := envFor(Entity{ID: "U", Shape: ShapeRound})
	s, effects := step(t, State{}, Event{Kind: EventPress, EntityID: "U", Pointer: at(10, 10)}, env)
	if s.Dragging() || len(effects) != 0 {
		t.Errorf("unplaced entity became draggable: %+v %#v", s, effects)
	}

	s, effects = step(t, State{}, Event{Kind: EventPress, EntityID: "missing", Pointer: at(10, 10)}, env)
	if s.Dragging() || len(effects) != 0 {
		t.Errorf("unknown entity became draggable: %+v %#v", s, effects)
	}
}

func TestPress_WhileDraggingIsIgnored(t *testing.T) {
	env := envFor(placedAt("A", ShapeRound, 0, 0), placedAt("B", ShapeRound, 200, 200))
	s, _ := step(t, State{}, Event{Kind: EventPress, EntityID: "A", Pointer: at(5, 5)}, env)
	s, _ = step(t, s, Event{Kind: EventPress, EntityID: "B", Pointer: at(205, 205)}, env)
	if s.DraggingID() != "A" {
		t.Errorf("dragging %q, want A", s.DraggingID())
	}
}

func TestMove_NonFiniteKeepsLivePosition(t *testing.T) {
	env := envFor(placedAt("A", ShapeRound, 0, 0))
	s, _ := step(t, State{}, Event{Kind: EventPress, EntityID: "A", Pointer: at(0, 0)}, env)
	s, _ = step(t, s, Event{Kind: EventMove, Pointer: at(50, 60)}, env)

	s, _ = step(t, s, Event{Kind: EventMove, Pointer: at(math.NaN(), 60)}, env)
	if *s.Drag.Live != (Point{X: 50, Y: 60}) {
		t.Errorf("live = %+v, want previous (50,60)", *s.Drag.Live)
	}
	s, _ = step(t, s, Event{Kind: EventMove, Pointer: PointerInput{Viewport: Point{X: 1, Y: 1}, Scroll: ScrollOffset{Top: math.Inf(1)}}}, env)
	if *s.Drag.Live != (Point{X: 50, Y: 60}) {
		t.Errorf("live = %+v, want previous (50,60)", *s.Drag.Live)
	}
}

func TestMove_ReadsFootprintFromCurrentData(t *testing.T) {
	a := placedAt("A", ShapeSquare, 0, 0)
	env := envFor(a)
	s, _ := step(t, State{}, Event{Kind: EventPress, EntityID: "A", Pointer: at(0, 0)}, env)

	// Someone turns the table into a rectangle while it is being dragged.
	changed := a
	changed.Shape = ShapeRectangle
	env.Lookup = Index([]Entity{changed})

	s, _ = step(t, s, Event{Kind: EventMove, Pointer: at(0, 790)}, env)
	if s.Drag.Live.Y != 680 {
		t.Errorf("live y = %g, want 680 for rectangle footprint", s.Drag.Live.Y)
	}
}

func TestMove_EntityRemovedAbandonsSession(t *testing.T) {
	env := envFor(placedAt("A", ShapeRound, 0, 0))
	s, _ := step(t, State{}, Event{Kind: EventPress, EntityID: "A", Pointer: at(0, 0)}, env)

	env.Lookup = Index(nil)
	s, effects := step(t, s, Event{Kind: EventMove, Pointer: at(100, 100)}, env)
	if s.Dragging() {
		t.Fatal("session should be abandoned")
	}
	if len(effects) != 1 {
		t.Fatalf("effects = %#v", effects)
	}
	if _, ok := effects[0].(Abandoned); !ok {
		t.Errorf("effect = %#v, want Abandoned", effects[0])
	}
}

func TestRelease_EntityRemovedDoesNotCommit(t *testing.T) {
	env := envFor(placedAt("A", ShapeRound, 0, 0))
	s, _ := step(t, State{}, Event{Kind: EventPress, EntityID: "A", Pointer: at(0, 0)}, env)
	s, _ = step(t, s, Event{Kind: EventMove, Pointer: at(100, 100)}, env)

	env.Lookup = Index(nil)
	_, effects := step(t, s, Event{Kind: EventRelease}, env)
	for _, eff := range effects {
		if _, ok := eff.(CommitRequested); ok {
			t.Fatal("commit emitted for vanished entity")
		}
	}
}

func TestLeave_Policies(t *testing.T) {
	env := envFor(placedAt("A", ShapeRound, 0, 0))
	s, _ := step(t, State{}, Event{Kind: EventPress, EntityID: "A", Pointer: at(0, 0)}, env)
	s, _ = step(t, s, Event{Kind: EventMove, Pointer: at(200, 100)}, env)

	after, effects := step(t, s, Event{Kind: EventLeave}, env)
	if after.Dragging() {
		t.Fatal("leave should end the session")
	}
	if got := commitOf(t, effects); got.X != 200 || got.Y != 100 {
		t.Errorf("commit = %+v, want (200,100)", got)
	}

	env.Leave = LeaveCancel
	after, effects = step(t, s, Event{Kind: EventLeave}, env)
	if after.Dragging() {
		t.Fatal("cancel should end the session")
	}
	if len(effects) != 1 {
		t.Fatalf("effects = %#v", effects)
	}
	if _, ok := effects[0].(Abandoned); !ok {
		t.Errorf("effect = %#v, want Abandoned", effects[0])
	}
}

func TestClickWithoutMovementSelects(t *testing.T) {
	env := envFor(placedAt("A", ShapeRound, 0, 0))
	s, _ := step(t, State{}, Event{Kind: EventPress, EntityID: "A", Pointer: at(10, 10)}, env)
	s, _ = step(t, s, Event{Kind: EventMove, Pointer: at(12, 11)}, env)
	s, effects := step(t, s, Event{Kind: EventRelease}, env)

	if s.SelectedID != "A" {
		t.Errorf("selected = %q, want A", s.SelectedID)
	}
	if len(effects) != 1 || effects[0] != (Selected{EntityID: "A"}) {
		t.Errorf("effects = %#v, want Selected", effects)
	}
}

func TestClickAfterRelease_SelectsOnce(t *testing.T) {
	env := envFor(placedAt("A", ShapeRound, 0, 0), placedAt("B", ShapeRound, 300, 300))
	s, _ := step(t, State{}, Event{Kind: EventPress, EntityID: "A", Pointer: at(10, 10)}, env)
	s, effects := step(t, s, Event{Kind: EventRelease}, env)
	if len(effects) != 1 || effects[0] != (Selected{EntityID: "A"}) {
		t.Fatalf("release effects = %#v, want one Selected", effects)
	}

	// The click the browser fires after the release is the same gesture.
	s, effects = step(t, s, Event{Kind: EventClick, EntityID: "A"}, env)
	if len(effects) != 0 {
		t.Errorf("trailing click effects = %#v, want none", effects)
	}
	if s.SelectedID != "A" {
		t.Errorf("selected = %q, want A", s.SelectedID)
	}

	// A later click is a new gesture.
	s, effects = step(t, s, Event{Kind: EventClick, EntityID: "A"}, env)
	if len(effects) != 1 {
		t.Errorf("second click effects = %#v, want Selected", effects)
	}

	// A trailing click on another entity still selects it.
	s, _ = step(t, s, Event{Kind: EventPress, EntityID: "A", Pointer: at(10, 10)}, env)
	s, _ = step(t, s, Event{Kind: EventRelease}, env)
	s, effects = step(t, s, Event{Kind: EventClick, EntityID: "B"}, env)
	if s.SelectedID != "B" || len(effects) != 1 {
		t.Errorf("click on B after releasing A: %+v %#v", s, effects)
	}
}

func TestClickAfterDrag_DoesNotSelect(t *testing.T) {
	env := envFor(placedAt("A", ShapeRound, 0, 0))
	s, _ := step(t, State{}, Event{Kind: EventPress, EntityID: "A", Pointer: at(10, 10)}, env)
	s, _ = step(t, s, Event{Kind: EventMove, Pointer: at(200, 200)}, env)
	s, _ = step(t, s, Event{Kind: EventRelease}, env)

	s, effects := step(t, s, Event{Kind: EventClick, EntityID: "A"}, env)
	if s.SelectedID != "" || len(effects) != 0 {
		t.Errorf("click ending a drag selected: %+v %#v", s, effects)
	}
}

func TestClick_OnlyWhenIdle(t *testing.T) {
	env := envFor(placedAt("A", ShapeRound, 0, 0), placedAt("B", ShapeRound, 300, 300), Entity{ID: "U"})

	s, effects := step(t, State{}, Event{Kind: EventClick, EntityID: "B"}, env)
	if s.SelectedID != "B" || len(effects) != 1 {
		t.Fatalf("idle click did not select: %+v %#v", s, effects)
	}

	s, _ = step(t, s, Event{Kind: EventPress, EntityID: "A", Pointer: at(0, 0)}, env)
	s, effects = step(t, s, Event{Kind: EventClick, EntityID: "A"}, env)
	if s.SelectedID != "B" || len(effects) != 0 {
		t.Errorf("click during drag changed selection: %+v %#v", s, effects)
	}

	s, _ = step(t, State{}, Event{Kind: EventClick, EntityID: "U"}, env)
	if s.SelectedID != "" {
		t.Errorf("unplaced entity selected from canvas")
	}
}

func TestListSelect_IndependentOfDrag(t *testing.T) {
	env := envFor(placedAt("A", ShapeRound, 0, 0), Entity{ID: "U"})
	s, _ := step(t, State{}, Event{Kind: EventPress, EntityID: "A", Pointer: at(0, 0)}, env)

	s, effects := step(t, s, Event{Kind: EventListSelect, EntityID: "U"}, env)
	if s.SelectedID != "U" || len(effects) != 1 {
		t.Errorf("list select: %+v %#v", s, effects)
	}
	if s.DraggingID() != "A" {
		t.Error("list select must not touch the drag session")
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	env := envFor(placedAt("A", ShapeRound, 0, 0))
	s, _ := step(t, State{}, Event{Kind: EventPress, EntityID: "A", Pointer: at(0, 0)}, env)
	before := *s.Drag.Live

	_, _ = step(t, s, Event{Kind: EventMove, Pointer: at(100, 100)}, env)
	if *s.Drag.Live != before {
		t.Errorf("input state mutated: %+v", *s.Drag.Live)
	}
}
