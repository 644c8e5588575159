package model

import "time"

// OTP is a short-lived phone verification code. One live row per phone is
// expected; the OTP service replaces expired rows instead of stacking them.
type OTP struct {
	ID           uint      `gorm:"primaryKey"`
	Phone        string    `gorm:"column:phone;size:20;not null;index"`
	Code         string    `gorm:"column:code;size:8;not null"`
	ReferralCode string    `gorm:"column:referral_code;size:20"`
	Validated    bool      `gorm:"column:validated;not null;default:false"`
	Attempts     int       `gorm:"column:attempts;not null;default:0"`
	ExpiresAt    time.Time `gorm:"column:expires_at;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (OTP) TableName() string { return "customer_otps" }

// Expired reports whether the code is past its expiry at now.
func (o *OTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
