// Package store is the gorm-backed table repository behind the floor plan.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/xelth-com/ecktables/internal/floorplan"
	"github.com/xelth-com/ecktables/internal/models"
	"gorm.io/gorm"
)

var (
	ErrTableNotFound = errors.New("table not found")
	ErrHallNotFound  = errors.New("hall not found")
)

// TableStore reads and positions restaurant tables.
type TableStore struct {
	db *gorm.DB
}

// NewTableStore creates a store on top of an open gorm connection.
func NewTableStore(db *gorm.DB) *TableStore {
	return &TableStore{db: db}
}

// ListEntities returns every table of a hall, placed or not.
func (s *TableStore) ListEntities(ctx context.Context, hallID string) ([]floorplan.Entity, error) {
	var rows []models.RestaurantTable
	if err := s.db.WithContext(ctx).Where("hall_id = ?", hallID).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tables for hall %s: %w", hallID, err)
	}

	entities := make([]floorplan.Entity, 0, len(rows))
	for _, row := range rows {
		entities = append(entities, ToEntity(row))
	}
	return entities, nil
}

// GetTable loads a single table.
func (s *TableStore) GetTable(ctx context.Context, id string) (models.RestaurantTable, error) {
	var row models.RestaurantTable
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, ErrTableNotFound
	}
	if err != nil {
		return row, fmt.Errorf("get table %s: %w", id, err)
	}
	return row, nil
}

// UpdatePosition stores a committed position. Only x, y and rotation are
// written; footprint overrides stay untouched.
func (s *TableStore) UpdatePosition(ctx context.Context, id string, u floorplan.PositionUpdate) error {
	res := s.db.WithContext(ctx).
		Model(&models.RestaurantTable{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"pos_x":    u.X,
			"pos_y":    u.Y,
			"rotation": u.Rotation,
		})
	if res.Error != nil {
		return fmt.Errorf("update position of table %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTableNotFound
	}
	return nil
}

// ListHalls returns the halls of a tenant. An empty tenant lists all halls.
func (s *TableStore) ListHalls(ctx context.Context, tenantID string) ([]models.DiningHall, error) {
	q := s.db.WithContext(ctx).Order("sort_order, name")
	if tenantID != "" {
		q = q.Where("tenant_id = ?", tenantID)
	}
	var halls []models.DiningHall
	if err := q.Find(&halls).Error; err != nil {
		return nil, fmt.Errorf("list halls: %w", err)
	}
	return halls, nil
}

// GetHall loads a single hall.
func (s *TableStore) GetHall(ctx context.Context, id string) (models.DiningHall, error) {
	var hall models.DiningHall
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&hall).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return hall, ErrHallNotFound
	}
	if err != nil {
		return hall, fmt.Errorf("get hall %s: %w", id, err)
	}
	return hall, nil
}

// ToEntity converts a stored row into the engine's view of a table.
func ToEntity(t models.RestaurantTable) floorplan.Entity {
	e := floorplan.Entity{
		ID:       t.ID,
		Name:     t.Name,
		Shape:    floorplan.ParseShape(t.Shape),
		Capacity: t.Capacity,
		Status:   floorplan.ParseStatus(t.Status),
	}
	if t.Placed() {
		e.Position = &floorplan.Position{
			X:        float64(*t.PosX),
			Y:        float64(*t.PosY),
			Width:    t.VisualWidth,
			Height:   t.VisualHeight,
			Rotation: t.Rotation,
		}
	}
	return e
}
