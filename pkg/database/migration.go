package database

import (
	"github.com/Payphone-Digital/customer-service/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Admin{},
		&model.CustomerProfile{},
		&model.Address{},
		&model.OTP{},
		&model.Setting{},
	)
}
