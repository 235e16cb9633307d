package main

import (
	"fmt"
	"log"

	"github.com/xelth-com/ecktables/internal/config"
	"github.com/xelth-com/ecktables/internal/database"
	"github.com/xelth-com/ecktables/internal/logger"
	"github.com/xelth-com/ecktables/internal/models"
)

func intPtr(v int) *int { return &v }

func main() {
	fmt.Println("🌱 ecktables Demo Data Seeder")

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	zlog, err := logger.NewLogger("warn", "console", "ecktables-seed")
	if err != nil {
		log.Fatalf("❌ Failed to create logger: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database, zlog)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations first
	if err := db.Migrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	// Check if data already exists
	var hallCount int64
	db.Model(&models.DiningHall{}).Count(&hallCount)
	if hallCount > 0 {
		fmt.Printf("⚠️  Database already has %d halls. Clear it first? (y/N): ", hallCount)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}
		db.Exec("TRUNCATE TABLE restaurant_tables CASCADE")
		db.Exec("TRUNCATE TABLE dining_halls CASCADE")
		fmt.Println("✅ Data cleared")
	}

	halls := []models.DiningHall{
		{TenantID: "demo", Name: "Main hall", SortOrder: 1},
		{TenantID: "demo", Name: "Terrace", SortOrder: 2},
	}
	for i := range halls {
		if err := db.Create(&halls[i]).Error; err != nil {
			log.Fatalf("❌ Failed to create hall %s: %v", halls[i].Name, err)
		}
	}

	bar := 240.0
	tables := []models.RestaurantTable{
		{HallID: halls[0].ID, Name: "T1", Shape: "round", Capacity: 2, Status: "available", PosX: intPtr(40), PosY: intPtr(40)},
		{HallID: halls[0].ID, Name: "T2", Shape: "round", Capacity: 2, Status: "occupied", PosX: intPtr(160), PosY: intPtr(40)},
		{HallID: halls[0].ID, Name: "T3", Shape: "square", Capacity: 4, Status: "reserved", PosX: intPtr(280), PosY: intPtr(40)},
		{HallID: halls[0].ID, Name: "T4", Shape: "rectangle", Capacity: 6, Status: "available", PosX: intPtr(40), PosY: intPtr(200), Rotation: 90},
		{HallID: halls[0].ID, Name: "Bar", Shape: "rectangle", Capacity: 8, Status: "available", PosX: intPtr(500), PosY: intPtr(600), VisualWidth: &bar},
		{HallID: halls[0].ID, Name: "T6", Shape: "oval", Capacity: 4, Status: "inactive"},
		{HallID: halls[1].ID, Name: "P1", Shape: "square", Capacity: 4, Status: "available", PosX: intPtr(100), PosY: intPtr(100)},
		{HallID: halls[1].ID, Name: "P2", Shape: "square", Capacity: 4, Status: "available"},
	}
	if err := db.Create(&tables).Error; err != nil {
		log.Fatalf("❌ Failed to create tables: %v", err)
	}

	fmt.Printf("✅ Created %d halls and %d tables\n", len(halls), len(tables))
	for _, h := range halls {
		fmt.Printf("   %s  %s\n", h.ID, h.Name)
	}
}
