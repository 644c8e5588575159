package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CustomerProfile is the identity record of one customer. Phone is unique;
// email is unique when present.
type CustomerProfile struct {
	ID              uint            `gorm:"primaryKey"`
	Phone           string          `gorm:"column:phone;size:20;uniqueIndex;not null"`
	Email           *string         `gorm:"column:email;size:255;uniqueIndex"`
	Name            string          `gorm:"column:name;size:100;not null"`
	DateOfBirth     *datatypes.Date `gorm:"column:date_of_birth"`
	Gender          string          `gorm:"column:gender;size:10"`
	Password        string          `gorm:"column:password"`
	EmailVerifiedAt *time.Time      `gorm:"column:email_verified_at"`
	PhoneVerifiedAt *time.Time      `gorm:"column:phone_verified_at"`
	SSOID           *string         `gorm:"column:sso_id;size:64;index"`
	ReferralCode    string          `gorm:"column:referral_code;size:20"`
	IsActive        bool            `gorm:"column:is_active;not null;default:true"`
	TokenVersion    int             `gorm:"column:token_version;not null;default:1"`
	LastLoginAt     *time.Time      `gorm:"column:last_login_at"`
	CreatedAt       time.Time       `gorm:"column:created_at;index"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;index"`
	DeletedAt       gorm.DeletedAt  `gorm:"column:deleted_at;index"`

	Addresses []Address `gorm:"foreignKey:CustomerID"`
}

func (CustomerProfile) TableName() string { return "customer_profiles" }

// EmailValue returns the email or "".
func (c *CustomerProfile) EmailValue() string {
	if c.Email == nil {
		return ""
	}
	return *c.Email
}

// SSOIDValue returns the linked SSO id or "".
func (c *CustomerProfile) SSOIDValue() string {
	if c.SSOID == nil {
		return ""
	}
	return *c.SSOID
}
