package models

import (
	"log"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Hospital{},
		&HospitalConfig{},
		&BusinessHour{},
		&Department{},
		&DepartmentConfig{},
		&Doctor{},
		&Patient{},
		&Staff{},
		&Appointment{},
		&Visit{},
		&VisitHistory{},
		&TokenSequence{},
	)
	if err != nil {
		return err
	}

	log.Println("✅ Database migrated successfully")
	return nil
}
