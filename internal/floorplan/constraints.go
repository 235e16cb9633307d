package floorplan

import (
	"errors"
	"fmt"
	"math"
)

const (
	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 800
	DefaultBaseSize     = 80

	// RectangleHeightFactor stretches rectangular tables vertically.
	RectangleHeightFactor = 1.5
)

var (
	ErrOutOfBounds = errors.New("position outside canvas bounds")
	ErrNotPlaced   = errors.New("entity has no position")
)

// Canvas describes the fixed logical drawing surface. The extent is the
// full scrollable canvas, not the visible viewport.
type Canvas struct {
	Extent   Size    `json:"extent"`
	BaseSize float64 `json:"baseSize"`
}

// DefaultCanvas returns the 800x800 canvas with 80-unit tables.
func DefaultCanvas() Canvas {
	return Canvas{
		Extent:   Size{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight},
		BaseSize: DefaultBaseSize,
	}
}

// ResolveFootprint derives the rendered size of an entity. Explicit
// overrides on the position win over the shape default.
func (c Canvas) ResolveFootprint(e Entity) Size {
	fp := Size{Width: c.BaseSize, Height: c.BaseSize}
	if e.Shape == ShapeRectangle {
		fp.Height = c.BaseSize * RectangleHeightFactor
	}
	if e.Position != nil {
		if w := e.Position.Width; w != nil && isFinite(*w) && *w > 0 {
			fp.Width = *w
		}
		if h := e.Position.Height; h != nil && isFinite(*h) && *h > 0 {
			fp.Height = *h
		}
	}
	return fp
}

// Clamp keeps the whole footprint inside the extent. When the footprint
// is larger than the extent the upper bound goes negative and every
// proposal collapses to 0.
func Clamp(proposed Point, footprint, extent Size) Point {
	maxX := extent.Width - footprint.Width
	maxY := extent.Height - footprint.Height
	return Point{
		X: math.Max(0, math.Min(maxX, proposed.X)),
		Y: math.Max(0, math.Min(maxY, proposed.Y)),
	}
}

// Clamp keeps p inside this canvas for the given footprint.
func (c Canvas) Clamp(p Point, footprint Size) Point {
	return Clamp(p, footprint, c.Extent)
}

// ValidatePlacement checks a position about to be persisted.
func (c Canvas) ValidatePlacement(e Entity, x, y int) error {
	fp := c.ResolveFootprint(e)
	maxX := c.Extent.Width - fp.Width
	maxY := c.Extent.Height - fp.Height
	fx, fy := float64(x), float64(y)
	if fx < 0 || fy < 0 || fx > math.Max(0, maxX) || fy > math.Max(0, maxY) {
		return fmt.Errorf("%w: (%d,%d) not in [0,%g]x[0,%g]", ErrOutOfBounds, x, y, math.Max(0, maxX), math.Max(0, maxY))
	}
	return nil
}
