package websocket

import (
	"github.com/xelth-com/ecktables/internal/floorplan"
)

// Inbound message types
const (
	TypeJoinHall     = "JOIN_HALL"
	TypePointerDown  = "POINTER_DOWN"
	TypePointerMove  = "POINTER_MOVE"
	TypePointerUp    = "POINTER_UP"
	TypePointerLeave = "POINTER_LEAVE"
	TypeClick        = "CLICK"
	TypeListSelect   = "LIST_SELECT"
)

// Outbound message types
const (
	TypeAck          = "ACK"
	TypeFrame        = "FRAME"
	TypeSelected     = "SELECTED"
	TypeNotification = "NOTIFICATION"
	TypeTableMoved   = "TABLE_MOVED"
)

// InboundMessage is one event from the floor plan UI. Pointer fields are
// required on every pointer message: the UI sends the live canvas rect
// and scroll offset with each sample.
type InboundMessage struct {
	Type     string `json:"type"`
	MsgID    string `json:"msgId,omitempty"`
	HallID   string `json:"hallId,omitempty"`
	EntityID string `json:"entityId,omitempty"`
	floorplan.PointerInput
}

// AckMessage confirms a JOIN_HALL.
type AckMessage struct {
	Type   string `json:"type"`
	MsgID  string `json:"msgId,omitempty"`
	Status string `json:"status"`
}

// FrameMessage carries everything the UI draws.
type FrameMessage struct {
	Type       string              `json:"type"`
	HallID     string              `json:"hallId"`
	Scene      floorplan.Scene     `json:"scene"`
	List       []floorplan.ListRow `json:"list"`
	SelectedID string              `json:"selectedId,omitempty"`
	DraggingID string              `json:"draggingId,omitempty"`
}

// SelectedMessage is the selection callback.
type SelectedMessage struct {
	Type   string           `json:"type"`
	Entity floorplan.Entity `json:"entity"`
}

// NotificationMessage is a non-blocking notice (toast) for the user.
type NotificationMessage struct {
	Type     string `json:"type"`
	Level    string `json:"level"` // info, warning, error
	Message  string `json:"message"`
	EntityID string `json:"entityId,omitempty"`
}

// TableMovedMessage tells the UI a table was repositioned by anyone.
type TableMovedMessage struct {
	Type     string  `json:"type"`
	HallID   string  `json:"hallId"`
	TableID  string  `json:"tableId"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Rotation float64 `json:"rotation"`
}
