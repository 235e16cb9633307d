package floorplan

import (
	"errors"
	"testing"
)

func placedAt(id string, shape Shape, x, y float64) Entity {
	return Entity{
		ID:       id,
		Shape:    shape,
		Capacity: 4,
		Status:   StatusAvailable,
		Position: &Position{X: x, Y: y},
	}
}

func TestResolveFootprint_ByShape(t *testing.T) {
	c := DefaultCanvas()
	for _, shape := range []Shape{ShapeRound, ShapeOval, ShapeSquare, ShapeOther} {
		fp := c.ResolveFootprint(placedAt("t", shape, 0, 0))
		if fp.Width != 80 || fp.Height != 80 {
			t.Errorf("%s: footprint = %+v, want 80x80", shape, fp)
		}
	}

	fp := c.ResolveFootprint(placedAt("t", ShapeRectangle, 0, 0))
	if fp.Width != 80 || fp.Height != 120 {
		t.Errorf("rectangle: footprint = %+v, want 80x120", fp)
	}
}

func TestResolveFootprint_Overrides(t *testing.T) {
	c := DefaultCanvas()
	w, h := 160.0, 60.0
	e := placedAt("t", ShapeRectangle, 0, 0)
	e.Position.Width = &w
	e.Position.Height = &h

	fp := c.ResolveFootprint(e)
	if fp.Width != 160 || fp.Height != 60 {
		t.Errorf("footprint = %+v, want 160x60", fp)
	}

	// Unplaced entities still get the shape default.
	unplaced := Entity{ID: "u", Shape: ShapeRectangle}
	if fp := c.ResolveFootprint(unplaced); fp.Height != 120 {
		t.Errorf("unplaced rectangle height = %g, want 120", fp.Height)
	}
}

func TestClamp_RangeAndIdempotence(t *testing.T) {
	extent := Size{Width: 800, Height: 800}
	footprints := []Size{{80, 80}, {80, 120}, {800, 800}, {0, 0}, {333.3, 12.5}}
	values := []float64{-1e6, -80, -0.5, 0, 0.25, 100, 399.9, 680, 719.99, 720, 720.01, 800, 5000}

	for _, fp := range footprints {
		for _, x := range values {
			for _, y := range values {
				p := Clamp(Point{X: x, Y: y}, fp, extent)
				if p.X < 0 || p.X > extent.Width-fp.Width {
					t.Fatalf("fp=%+v x=%g: clamped x %g out of range", fp, x, p.X)
				}
				if p.Y < 0 || p.Y > extent.Height-fp.Height {
					t.Fatalf("fp=%+v y=%g: clamped y %g out of range", fp, y, p.Y)
				}
				if again := Clamp(p, fp, extent); again != p {
					t.Fatalf("clamp not idempotent: %+v -> %+v", p, again)
				}
			}
		}
	}
}

func TestClamp_FootprintLargerThanCanvas(t *testing.T) {
	extent := Size{Width: 800, Height: 800}
	fp := Size{Width: 900, Height: 1000}

	for _, p := range []Point{{-10, -10}, {0, 0}, {50, 75}, {900, 900}} {
		got := Clamp(p, fp, extent)
		if got != (Point{}) {
			t.Errorf("Clamp(%+v) = %+v, want origin", p, got)
		}
	}
}

func TestValidatePlacement(t *testing.T) {
	c := DefaultCanvas()
	rect := placedAt("a", ShapeRectangle, 0, 0)

	if err := c.ValidatePlacement(rect, 720, 680); err != nil {
		t.Errorf("edge placement rejected: %v", err)
	}
	if err := c.ValidatePlacement(rect, 721, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("x=721: got %v, want ErrOutOfBounds", err)
	}
	if err := c.ValidatePlacement(rect, 0, 681); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("y=681: got %v, want ErrOutOfBounds", err)
	}
	if err := c.ValidatePlacement(rect, -1, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("x=-1: got %v, want ErrOutOfBounds", err)
	}
}

func TestParseShapeAndStatus(t *testing.T) {
	if ParseShape(" Rectangle ") != ShapeRectangle {
		t.Error("expected rectangle")
	}
	if ParseShape("hexagon") != ShapeOther {
		t.Error("unknown shape should map to other")
	}
	if ParseStatus("OCCUPIED") != StatusOccupied {
		t.Error("expected occupied")
	}
	if ParseStatus("cleaning") != StatusUnknown {
		t.Error("unknown status should map to unknown")
	}
}
