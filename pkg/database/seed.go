package database

import (
	"errors"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultAdmin defines the default admin credentials
type DefaultAdmin struct {
	Name     string
	Email    string
	Password string
}

func GetDefaultAdmin() DefaultAdmin {
	return DefaultAdmin{
		Name:     "Admin",
		Email:    "admin@customer.local",
		Password: "Admin@123", // Change this in production!
	}
}

// Seed creates the default admin and any missing default settings.
func Seed(db *gorm.DB) error {
	if err := SeedAdmins(db); err != nil {
		return err
	}
	return SeedSettings(db)
}

func SeedAdmins(db *gorm.DB) error {
	admin := GetDefaultAdmin()

	var existing model.Admin
	result := db.Where("email = ?", admin.Email).First(&existing)
	if result.Error == nil {
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Create(&model.Admin{
		Name:         admin.Name,
		Email:        admin.Email,
		Password:     string(hashedPassword),
		Role:         constants.RoleAdmin,
		TokenVersion: 1,
	}).Error
}

// SeedSettings inserts default settings; existing values are never overwritten.
func SeedSettings(db *gorm.DB) error {
	rows := make([]model.Setting, 0, len(constants.DefaultSettings))
	for name, value := range constants.DefaultSettings {
		rows = append(rows, model.Setting{Name: name, Value: value})
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rows).Error
}
