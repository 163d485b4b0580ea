package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hackcampus/apply-backend/internal/models"
)

func Connect(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	return db
}

// Migrate creates or updates the schema. The uniqueIndex on
// applications.user_id is what makes the lazy find-or-create safe under
// concurrent first writes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Application{},
		&models.TechPreference{},
		&models.ApplicationEvent{},
		&models.Company{},
		&models.CompanyPreference{},
	)
}
