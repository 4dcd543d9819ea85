package db

import (
	"log"
	"time"

	"github.com/bocm-app/bocm-api/internal/config"
	"github.com/bocm-app/bocm-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Barber{},
		&models.Client{},
		&models.Service{},
		&models.ServiceAddon{},
		&models.WorkingHours{},
		&models.Booking{},
		&models.BookingAddon{},
		&models.Conversation{},
		&models.Message{},
		&models.Review{},
		&models.Notification{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	db.Exec(`
        UPDATE barbers
        SET timezone = 'America/New_York'
        WHERE timezone IS NULL OR timezone = ''
    `)

	return db
}
