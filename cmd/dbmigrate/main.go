package main

import (
	"flag"
	"fmt"
	"log"

	"tg-anonpost/internal/config"
	"tg-anonpost/internal/models"
	"tg-anonpost/internal/storage"

	"gorm.io/gorm"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	action := flag.String("action", "migrate", "Action to perform (migrate, reset, status)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := storage.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	db := storage.GetDB()
	if db == nil {
		log.Fatalf("Failed to get database connection")
	}

	switch *action {
	case "migrate":
		if err := migrateDatabase(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migration completed successfully")
	case "reset":
		if err := resetDatabase(db); err != nil {
			log.Fatalf("Reset failed: %v", err)
		}
		log.Println("Database reset completed successfully")
	case "status":
		if err := checkStatus(db); err != nil {
			log.Fatalf("Status check failed: %v", err)
		}
	default:
		log.Fatalf("Unknown action: %s", *action)
	}
}

// migrateDatabase performs database migration
func migrateDatabase(db *gorm.DB) error {
	fmt.Println("Migrating database...")

	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		return fmt.Errorf("failed to migrate Setting model: %w", err)
	}
	if err := db.AutoMigrate(&models.BanRecord{}); err != nil {
		return fmt.Errorf("failed to migrate BanRecord model: %w", err)
	}
	if err := db.AutoMigrate(&models.Submission{}); err != nil {
		return fmt.Errorf("failed to migrate Submission model: %w", err)
	}

	return nil
}

// resetDatabase drops tables and recreates them
func resetDatabase(db *gorm.DB) error {
	fmt.Println("Resetting database...")

	fmt.Print("WARNING: This will delete all data! Are you sure? (y/N): ")
	var confirmation string
	fmt.Scanln(&confirmation)

	if confirmation != "y" && confirmation != "Y" {
		return fmt.Errorf("operation cancelled by user")
	}

	if err := db.Migrator().DropTable(&models.Submission{}, &models.BanRecord{}, &models.Setting{}); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}

	return migrateDatabase(db)
}

// checkStatus checks the database status
func checkStatus(db *gorm.DB) error {
	fmt.Println("Checking database status...")

	tables := map[string]interface{}{
		"Setting":    &models.Setting{},
		"BanRecord":  &models.BanRecord{},
		"Submission": &models.Submission{},
	}

	for name, model := range tables {
		if db.Migrator().HasTable(model) {
			var count int64
			db.Model(model).Count(&count)
			fmt.Printf("✅ %s table exists (%d records)\n", name, count)
		} else {
			fmt.Printf("❌ %s table does not exist\n", name)
		}
	}

	return nil
}
