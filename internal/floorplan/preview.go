package floorplan

import (
	"encoding/json"
	"fmt"
)

// Displayed is the position a table is drawn at: either its committed
// record or the live preview of an active drag.
type Displayed interface {
	Point() Point
	isDisplayed()
}

// Committed is the authoritative stored position.
type Committed struct{ Pos Point }

// Live is the uncommitted drag preview.
type Live struct{ Pos Point }

func (c Committed) Point() Point { return c.Pos }
func (l Live) Point() Point      { return l.Pos }
func (Committed) isDisplayed()   {}
func (Live) isDisplayed()        {}

func (c Committed) MarshalJSON() ([]byte, error) {
	return marshalDisplayed("committed", c.Pos)
}

func (l Live) MarshalJSON() ([]byte, error) {
	return marshalDisplayed("live", l.Pos)
}

func marshalDisplayed(source string, p Point) ([]byte, error) {
	return json.Marshal(struct {
		Source string  `json:"source"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
	}{source, p.X, p.Y})
}

// StatusStyle is the colour and label for a table status.
type StatusStyle struct {
	Fill   string `json:"fill"`
	Stroke string `json:"stroke"`
	Label  string `json:"label"`
}

var statusStyles = map[Status]StatusStyle{
	StatusAvailable: {Fill: "#dcfce7", Stroke: "#16a34a", Label: "Available"},
	StatusOccupied:  {Fill: "#fee2e2", Stroke: "#dc2626", Label: "Occupied"},
	StatusReserved:  {Fill: "#fef9c3", Stroke: "#ca8a04", Label: "Reserved"},
	StatusInactive:  {Fill: "#f3f4f6", Stroke: "#9ca3af", Label: "Inactive"},
}

// NeutralStyle is used for any status without an entry.
var NeutralStyle = StatusStyle{Fill: "#e5e7eb", Stroke: "#6b7280", Label: "Unknown"}

// StyleFor never fails; unknown statuses degrade to NeutralStyle.
func StyleFor(s Status) StatusStyle {
	if st, ok := statusStyles[s]; ok {
		return st
	}
	return NeutralStyle
}

// Visual is the interaction-dependent part of how an item is drawn.
type Visual struct {
	ZIndex      int     `json:"zIndex"`
	Opacity     float64 `json:"opacity"`
	StrokeWidth float64 `json:"strokeWidth"`
	Ring        bool    `json:"ring"`
}

var (
	visualNormal   = Visual{ZIndex: 1, Opacity: 1, StrokeWidth: 1}
	visualDragging = Visual{ZIndex: 10, Opacity: 0.8, StrokeWidth: 3}
)

// SceneItem is one drawable table.
type SceneItem struct {
	ID        string      `json:"id"`
	Name      string      `json:"name,omitempty"`
	Shape     Shape       `json:"shape"`
	Capacity  int         `json:"capacity"`
	Status    Status      `json:"status"`
	Displayed Displayed   `json:"displayed"`
	Size      Size        `json:"size"`
	Rotation  float64     `json:"rotation"`
	Selected  bool        `json:"selected"`
	Dragging  bool        `json:"dragging"`
	Style     StatusStyle `json:"style"`
	Visual    Visual      `json:"visual"`
}

// Scene is everything needed to draw the canvas.
type Scene struct {
	Canvas        Canvas      `json:"canvas"`
	Items         []SceneItem `json:"items"`
	UnplacedCount int         `json:"unplacedCount"`
	Warning       string      `json:"warning,omitempty"`
}

// Render resolves what to draw for every placed entity.
func Render(entities []Entity, st State, canvas Canvas) Scene {
	placed, unplaced := SplitPlaced(entities)
	scene := Scene{
		Canvas:        canvas,
		Items:         make([]SceneItem, 0, len(placed)),
		UnplacedCount: unplaced,
		Warning:       UnplacedWarning(unplaced),
	}

	dragID := st.DraggingID()
	for _, e := range placed {
		item := SceneItem{
			ID:        e.ID,
			Name:      e.Name,
			Shape:     e.Shape,
			Capacity:  e.Capacity,
			Status:    e.Status,
			Displayed: Committed{Pos: e.Position.Point()},
			Size:      canvas.ResolveFootprint(e),
			Rotation:  e.Position.Rotation,
			Selected:  e.ID == st.SelectedID,
			Style:     StyleFor(e.Status),
			Visual:    visualNormal,
		}
		if e.ID == dragID {
			item.Dragging = true
			item.Visual = visualDragging
			if live := st.Drag.Live; live != nil {
				item.Displayed = Live{Pos: *live}
			}
		}
		item.Visual.Ring = item.Selected
		if item.Selected && !item.Dragging {
			item.Visual.StrokeWidth = 2
		}
		scene.Items = append(scene.Items, item)
	}
	return scene
}

// UnplacedWarning is the non-blocking notice for tables without a position.
func UnplacedWarning(n int) string {
	switch {
	case n <= 0:
		return ""
	case n == 1:
		return "1 table has no position and is not shown on the floor plan"
	default:
		return fmt.Sprintf("%d tables have no position and are not shown on the floor plan", n)
	}
}
