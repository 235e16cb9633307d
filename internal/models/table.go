package models

import "time"

// RestaurantTable is a table on the visual floor plan of a dining hall.
// A table without PosX/PosY has not been placed yet.
type RestaurantTable struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	HallID   string `gorm:"type:uuid;index;not null" json:"hallId"`
	Name     string `gorm:"type:varchar(100);not null" json:"name"`
	Shape    string `gorm:"type:varchar(20);not null;default:'square'" json:"shape"`
	Capacity int    `gorm:"not null;default:2" json:"capacity"`
	Status   string `gorm:"type:varchar(20);not null;default:'available'" json:"status"`

	// Visual positioning for the floor plan editor
	PosX         *int     `json:"posX,omitempty"`
	PosY         *int     `json:"posY,omitempty"`
	Rotation     float64  `gorm:"default:0" json:"rotation"` // degrees
	VisualWidth  *float64 `json:"visualWidth,omitempty"`     // Override width in canvas units
	VisualHeight *float64 `json:"visualHeight,omitempty"`    // Override height in canvas units

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Hall *DiningHall `gorm:"foreignKey:HallID" json:"hall,omitempty"`
}

func (RestaurantTable) TableName() string { return "restaurant_tables" }

// Placed reports whether both coordinates are stored.
func (t RestaurantTable) Placed() bool {
	return t.PosX != nil && t.PosY != nil
}
