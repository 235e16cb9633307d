package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xelth-com/ecktables/internal/events"
	"github.com/xelth-com/ecktables/internal/floorplan"
	"github.com/xelth-com/ecktables/internal/metrics"
	"github.com/xelth-com/ecktables/internal/middleware"
	"github.com/xelth-com/ecktables/internal/models"
	"github.com/xelth-com/ecktables/internal/store"
	"go.uber.org/zap"
)

// PositionRequest is the body of PUT /api/tables/{id}/position.
// Rotation is optional and keeps the stored value when omitted.
type PositionRequest struct {
	X        *int     `json:"x"`
	Y        *int     `json:"y"`
	Rotation *float64 `json:"rotation,omitempty"`
}

// getConstants returns the geometry clients need to draw and clamp
func (r *Router) getConstants(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"canvasWidth":           r.deps.Canvas.Extent.Width,
		"canvasHeight":          r.deps.Canvas.Extent.Height,
		"baseSize":              r.deps.Canvas.BaseSize,
		"rectangleHeightFactor": floorplan.RectangleHeightFactor,
	})
}

func (r *Router) listHalls(w http.ResponseWriter, req *http.Request) {
	halls, err := r.deps.Tables.ListHalls(req.Context(), middleware.TenantID(req.Context()))
	if err != nil {
		r.log.Error("list halls failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to load halls")
		return
	}
	if halls == nil {
		halls = []models.DiningHall{}
	}
	respondJSON(w, http.StatusOK, halls)
}

// loadHall resolves {hallId} and enforces tenant ownership. It writes the
// error response itself and returns false on failure.
func (r *Router) loadHall(w http.ResponseWriter, req *http.Request, hallID string) (models.DiningHall, bool) {
	hall, err := r.deps.Tables.GetHall(req.Context(), hallID)
	if errors.Is(err, store.ErrHallNotFound) {
		respondError(w, http.StatusNotFound, "Hall not found")
		return hall, false
	}
	if err != nil {
		r.log.Error("load hall failed", zap.String("hall_id", hallID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to load hall")
		return hall, false
	}
	if tenant := middleware.TenantID(req.Context()); tenant != "" && hall.TenantID != tenant {
		respondError(w, http.StatusNotFound, "Hall not found")
		return hall, false
	}
	return hall, true
}

func (r *Router) hallEntities(w http.ResponseWriter, req *http.Request) (models.DiningHall, []floorplan.Entity, bool) {
	hall, ok := r.loadHall(w, req, mux.Vars(req)["hallId"])
	if !ok {
		return hall, nil, false
	}
	entities, err := r.deps.Tables.ListEntities(req.Context(), hall.ID)
	if err != nil {
		r.log.Error("list tables failed", zap.String("hall_id", hall.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to load tables")
		return hall, nil, false
	}
	if entities == nil {
		entities = []floorplan.Entity{}
	}
	return hall, entities, true
}

// listTables returns every table of a hall plus the placed subset
func (r *Router) listTables(w http.ResponseWriter, req *http.Request) {
	_, entities, ok := r.hallEntities(w, req)
	if !ok {
		return
	}
	placed, unplaced := floorplan.SplitPlaced(entities)
	if placed == nil {
		placed = []floorplan.Entity{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tables":        entities,
		"placed":        placed,
		"unplacedCount": unplaced,
		"warning":       floorplan.UnplacedWarning(unplaced),
	})
}

// getScene renders committed positions, optionally with a selection
func (r *Router) getScene(w http.ResponseWriter, req *http.Request) {
	_, entities, ok := r.hallEntities(w, req)
	if !ok {
		return
	}
	st := floorplan.State{}
	if selected := req.URL.Query().Get("selected"); selected != "" {
		if _, known := floorplan.Index(entities)(selected); known {
			st.SelectedID = selected
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"scene": floorplan.Render(entities, st, r.deps.Canvas),
		"list":  floorplan.SideList(entities, st.SelectedID),
	})
}

// updatePosition persists a table position. Positions that would put the
// footprint outside the canvas are rejected, never clamped.
func (r *Router) updatePosition(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	var body PositionRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.X == nil || body.Y == nil {
		respondError(w, http.StatusBadRequest, "x and y are required")
		return
	}

	ctx := req.Context()
	table, err := r.deps.Tables.GetTable(ctx, id)
	if errors.Is(err, store.ErrTableNotFound) {
		respondError(w, http.StatusNotFound, "Table not found")
		return
	}
	if err != nil {
		r.log.Error("load table failed", zap.String("table_id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to load table")
		return
	}
	if _, ok := r.loadHall(w, req, table.HallID); !ok {
		return
	}

	update := floorplan.PositionUpdate{X: *body.X, Y: *body.Y, Rotation: table.Rotation}
	if body.Rotation != nil {
		update.Rotation = *body.Rotation
	}

	if err := r.deps.Canvas.ValidatePlacement(store.ToEntity(table), update.X, update.Y); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	err = r.deps.Tables.UpdatePosition(ctx, id, update)
	metrics.RecordCommit(err)
	if errors.Is(err, store.ErrTableNotFound) {
		respondError(w, http.StatusNotFound, "Table not found")
		return
	}
	if err != nil {
		r.log.Error("update position failed", zap.String("table_id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to save position")
		return
	}

	if r.deps.Bus != nil {
		ev := events.TableMoved{HallID: table.HallID, TableID: id, X: update.X, Y: update.Y, Rotation: update.Rotation}
		if err := r.deps.Bus.Publish(ctx, ev); err != nil {
			r.log.Warn("publish table move failed", zap.String("table_id", id), zap.Error(err))
		}
	}

	table.PosX, table.PosY, table.Rotation = &update.X, &update.Y, update.Rotation
	respondJSON(w, http.StatusOK, store.ToEntity(table))
}
