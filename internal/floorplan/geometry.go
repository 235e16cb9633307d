package floorplan

import "math"

// Point is a coordinate pair. Which space it lives in (viewport or
// canvas) depends on where it came from.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Finite reports whether both coordinates are real numbers.
func (p Point) Finite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// Size is a width/height pair in logical canvas units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CanvasRect is the on-screen bounding rectangle of the canvas element.
// Only the top-left corner matters for the transform.
type CanvasRect struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// ScrollOffset is the scroll position of the nearest scrollable ancestor.
type ScrollOffset struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// PointerInput is everything needed to place one pointer sample on the
// canvas. The integrating UI supplies live rect and scroll values with
// every sample.
type PointerInput struct {
	Viewport Point        `json:"pointer"`
	Rect     CanvasRect   `json:"canvasRect"`
	Scroll   ScrollOffset `json:"scroll"`
}

// ToCanvas converts viewport coordinates into logical canvas coordinates.
// ok is false when any input is not finite.
func ToCanvas(in PointerInput) (Point, bool) {
	local := Point{
		X: in.Viewport.X - in.Rect.Left + in.Scroll.Left,
		Y: in.Viewport.Y - in.Rect.Top + in.Scroll.Top,
	}
	if !local.Finite() {
		return Point{}, false
	}
	return local, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
