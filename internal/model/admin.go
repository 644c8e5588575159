package model

import (
	"time"

	"gorm.io/gorm"
)

// Admin is a back-office operator allowed to manage settings.
type Admin struct {
	gorm.Model
	Name         string     `gorm:"column:name;not null"`
	Email        string     `gorm:"column:email;uniqueIndex;not null"`
	Password     string     `gorm:"column:password;not null"`
	Role         string     `gorm:"column:role;not null;default:admin"`
	LastLogin    *time.Time `gorm:"column:last_login"`
	TokenVersion int        `gorm:"column:token_version;default:1;not null"`
}

func (Admin) TableName() string { return "admins" }
