// Package floorplan implements the interactive table positioning engine:
// coordinate conversion, drag sessions, boundary clamping, preview
// rendering and the commit boundary towards persistent storage.
//
// Everything in this package is pure or confined to a single owner; the
// only asynchronous piece is the Committer, which dispatches writes
// without blocking the caller.
package floorplan

import "strings"

// Shape is the table outline. It drives the default footprint.
type Shape string

const (
	ShapeRound     Shape = "round"
	ShapeOval      Shape = "oval"
	ShapeSquare    Shape = "square"
	ShapeRectangle Shape = "rectangle"
	ShapeOther     Shape = "other"
)

// ParseShape maps a stored shape string onto a known Shape.
// Unrecognised values become ShapeOther.
func ParseShape(s string) Shape {
	switch Shape(strings.ToLower(strings.TrimSpace(s))) {
	case ShapeRound:
		return ShapeRound
	case ShapeOval:
		return ShapeOval
	case ShapeSquare:
		return ShapeSquare
	case ShapeRectangle:
		return ShapeRectangle
	default:
		return ShapeOther
	}
}

// Status is display-only for the engine.
type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
	StatusReserved  Status = "reserved"
	StatusInactive  Status = "inactive"
	StatusUnknown   Status = "unknown"
)

// ParseStatus maps a stored status string onto a known Status.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusAvailable:
		return StatusAvailable
	case StatusOccupied:
		return StatusOccupied
	case StatusReserved:
		return StatusReserved
	case StatusInactive:
		return StatusInactive
	default:
		return StatusUnknown
	}
}

// Position is a committed placement on the canvas.
// Width and Height are optional footprint overrides.
type Position struct {
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Rotation float64  `json:"rotation"`
}

// Point returns the top-left corner of the placement.
func (p Position) Point() Point {
	return Point{X: p.X, Y: p.Y}
}

// Entity is a positionable table as seen by the engine.
// A nil Position means the table has not been placed yet.
type Entity struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	Shape    Shape     `json:"shape"`
	Capacity int       `json:"capacity"`
	Status   Status    `json:"status"`
	Position *Position `json:"position,omitempty"`
}

// Placed reports whether the entity has a committed position.
func (e Entity) Placed() bool {
	return e.Position != nil
}

// Lookup resolves an entity by id against current data.
type Lookup func(id string) (Entity, bool)

// Index builds a Lookup over a slice of entities.
func Index(entities []Entity) Lookup {
	byID := make(map[string]Entity, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
	}
	return func(id string) (Entity, bool) {
		e, ok := byID[id]
		return e, ok
	}
}

// SplitPlaced separates entities that can be drawn from those that cannot.
func SplitPlaced(entities []Entity) (placed []Entity, unplaced int) {
	placed = make([]Entity, 0, len(entities))
	for _, e := range entities {
		if e.Placed() {
			placed = append(placed, e)
			continue
		}
		unplaced++
	}
	return placed, unplaced
}
