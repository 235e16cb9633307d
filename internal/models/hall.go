package models

import "time"

// DiningHall groups the tables drawn on one floor plan.
type DiningHall struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	TenantID  string `gorm:"type:varchar(64);index;not null" json:"tenantId"`
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
	SortOrder int    `gorm:"default:0" json:"sortOrder"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Tables []RestaurantTable `gorm:"foreignKey:HallID" json:"tables,omitempty"`
}

func (DiningHall) TableName() string { return "dining_halls" }
