package websocket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xelth-com/ecktables/internal/events"
	"github.com/xelth-com/ecktables/internal/floorplan"
	"github.com/xelth-com/ecktables/internal/metrics"
	"github.com/xelth-com/ecktables/internal/models"
	"github.com/xelth-com/ecktables/internal/store"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// HallSource loads halls and their tables for the editor.
type HallSource interface {
	floorplan.EntitySource
	GetHall(ctx context.Context, id string) (models.DiningHall, error)
}

// EditorConfig is the engine configuration shared by all connections.
type EditorConfig struct {
	Canvas    floorplan.Canvas
	Threshold float64
	Leave     floorplan.LeavePolicy
}

// Editor runs the positioning engine for one connection. All methods
// must be called from the owning connection's loop goroutine; post
// schedules work back onto that loop.
type Editor struct {
	cfg       EditorConfig
	source    HallSource
	committer *floorplan.Committer
	bus       events.Bus
	log       *zap.Logger

	send func(v interface{})
	post func(fn func())

	// tenantID restricts which halls may be joined; "" allows all
	tenantID string

	hallID   string
	entities []floorplan.Entity
	state    floorplan.State
}

// NewEditor wires an editor to its collaborators.
func NewEditor(cfg EditorConfig, tenantID string, source HallSource, committer *floorplan.Committer, bus events.Bus, log *zap.Logger, send func(v interface{}), post func(fn func())) *Editor {
	return &Editor{
		cfg:       cfg,
		tenantID:  tenantID,
		source:    source,
		committer: committer,
		bus:       bus,
		log:       log,
		send:      send,
		post:      post,
	}
}

// HallID returns the joined hall or "".
func (e *Editor) HallID() string { return e.hallID }

// State exposes the current engine state.
func (e *Editor) State() floorplan.State { return e.state }

func (e *Editor) env() floorplan.Env {
	return floorplan.Env{
		Canvas:    e.cfg.Canvas,
		Lookup:    floorplan.Index(e.entities),
		Threshold: e.cfg.Threshold,
		Leave:     e.cfg.Leave,
	}
}

// Join loads a hall and resets the engine state. Halls of other tenants
// are reported as store.ErrHallNotFound.
func (e *Editor) Join(ctx context.Context, hallID, msgID string) error {
	hall, err := e.source.GetHall(ctx, hallID)
	if err != nil {
		return err
	}
	if e.tenantID != "" && hall.TenantID != e.tenantID {
		return store.ErrHallNotFound
	}
	entities, err := e.source.ListEntities(ctx, hall.ID)
	if err != nil {
		return err
	}
	e.hallID = hall.ID
	e.entities = entities
	e.state = floorplan.State{}

	e.send(AckMessage{Type: TypeAck, MsgID: msgID, Status: "joined"})
	e.sendFrame()
	return nil
}

// Handle processes one inbound UI message.
func (e *Editor) Handle(ctx context.Context, msg InboundMessage) {
	if msg.Type == TypeJoinHall {
		if msg.HallID == "" {
			e.notify("error", "hallId is required", "")
			return
		}
		err := e.Join(ctx, msg.HallID, msg.MsgID)
		switch {
		case errors.Is(err, store.ErrHallNotFound):
			e.notify("error", "Hall not found", "")
		case err != nil:
			e.log.Warn("join hall failed", zap.String("hall_id", msg.HallID), zap.Error(err))
			e.notify("error", "Could not load floor plan", "")
		}
		return
	}

	if e.hallID == "" {
		e.notify("error", "Join a hall first", "")
		return
	}

	ev, ok := toEvent(msg)
	if !ok {
		e.notify("error", fmt.Sprintf("unknown message type %q", msg.Type), "")
		return
	}
	e.apply(ev)
}

func toEvent(msg InboundMessage) (floorplan.Event, bool) {
	ev := floorplan.Event{EntityID: msg.EntityID, Pointer: msg.PointerInput}
	switch msg.Type {
	case TypePointerDown:
		ev.Kind = floorplan.EventPress
	case TypePointerMove:
		ev.Kind = floorplan.EventMove
	case TypePointerUp:
		ev.Kind = floorplan.EventRelease
	case TypePointerLeave:
		ev.Kind = floorplan.EventLeave
	case TypeClick:
		ev.Kind = floorplan.EventClick
	case TypeListSelect:
		ev.Kind = floorplan.EventListSelect
	default:
		return ev, false
	}
	return ev, true
}

func (e *Editor) apply(ev floorplan.Event) {
	prev := e.state
	next, effects := floorplan.Reduce(prev, ev, e.env())
	e.state = next

	for _, eff := range effects {
		switch eff := eff.(type) {
		case floorplan.DragStarted:
			metrics.RecordDragStarted()
		case floorplan.Abandoned:
			metrics.RecordDragAbandoned()
			e.log.Debug("drag abandoned", zap.String("table_id", eff.EntityID), zap.String("reason", eff.Reason))
		case floorplan.Selected:
			if entity, ok := floorplan.Index(e.entities)(eff.EntityID); ok {
				e.send(SelectedMessage{Type: TypeSelected, Entity: entity})
			}
		case floorplan.CommitRequested:
			e.commit(eff.Request)
		}
	}

	if next.Drag != prev.Drag || next.SelectedID != prev.SelectedID || len(effects) > 0 {
		e.sendFrame()
	}
}

// commit hands the request to the committer and updates the local copy
// of the data so the released table does not flash back to its old
// position while the write is in flight.
func (e *Editor) commit(req floorplan.CommitRequest) {
	hallID := e.hallID
	e.applyMove(req.EntityID, req.X, req.Y, req.Rotation)

	e.committer.Dispatch(req, func(res floorplan.CommitResult) {
		metrics.RecordCommit(res.Err)
		if res.Err == nil {
			ev := events.TableMoved{HallID: hallID, TableID: req.EntityID, X: req.X, Y: req.Y, Rotation: req.Rotation}
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()
			if err := e.bus.Publish(ctx, ev); err != nil {
				e.log.Warn("publish table move failed", zap.String("table_id", req.EntityID), zap.Error(err))
			}
		}
		e.post(func() { e.OnCommitResult(res, hallID) })
	})
}

// OnCommitResult reconciles after a write. Failures are reported and the
// hall is re-read so the table returns to its stored position.
func (e *Editor) OnCommitResult(res floorplan.CommitResult, hallID string) {
	if res.Err == nil || hallID != e.hallID {
		return
	}
	e.notify("error", "Could not save table position", res.Request.EntityID)
	e.Reload(context.Background())
}

// OnTableMoved applies a committed move from any client or instance.
func (e *Editor) OnTableMoved(ev events.TableMoved) {
	if ev.HallID != e.hallID {
		return
	}
	e.send(TableMovedMessage{
		Type:     TypeTableMoved,
		HallID:   ev.HallID,
		TableID:  ev.TableID,
		X:        ev.X,
		Y:        ev.Y,
		Rotation: ev.Rotation,
	})
	if !e.applyMove(ev.TableID, ev.X, ev.Y, ev.Rotation) {
		e.Reload(context.Background())
		return
	}
	e.sendFrame()
}

// Reload re-reads the hall from the source and redraws.
func (e *Editor) Reload(ctx context.Context) {
	if e.hallID == "" {
		return
	}
	entities, err := e.source.ListEntities(ctx, e.hallID)
	if err != nil {
		e.log.Warn("reload floor plan failed", zap.String("hall_id", e.hallID), zap.Error(err))
		return
	}
	e.entities = entities
	e.sendFrame()
}

// applyMove updates the cached copy of one table; false if unknown.
func (e *Editor) applyMove(id string, x, y int, rotation float64) bool {
	for i := range e.entities {
		if e.entities[i].ID != id {
			continue
		}
		pos := floorplan.Position{X: float64(x), Y: float64(y), Rotation: rotation}
		if old := e.entities[i].Position; old != nil {
			pos.Width, pos.Height = old.Width, old.Height
		}
		e.entities[i].Position = &pos
		return true
	}
	return false
}

func (e *Editor) sendFrame() {
	e.send(FrameMessage{
		Type:       TypeFrame,
		HallID:     e.hallID,
		Scene:      floorplan.Render(e.entities, e.state, e.cfg.Canvas),
		List:       floorplan.SideList(e.entities, e.state.SelectedID),
		SelectedID: e.state.SelectedID,
		DraggingID: e.state.DraggingID(),
	})
}

func (e *Editor) notify(level, message, entityID string) {
	e.send(NotificationMessage{Type: TypeNotification, Level: level, Message: message, EntityID: entityID})
}
