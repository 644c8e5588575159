package dto

import "time"

type CreateOTPRequest struct {
	Phone        string `json:"phone" binding:"required,numeric,min=10,max=15"`
	ReferralCode string `json:"referral_code" binding:"omitempty,alphanum,max=20"`
}

type ValidateOTPRequest struct {
	Phone string `json:"phone" binding:"required,numeric,min=10,max=15"`
	Code  string `json:"code" binding:"required,numeric,len=4"`
}

type ResendOTPRequest struct {
	Phone string `json:"phone" binding:"required,numeric,min=10,max=15"`
}

// OTPResponse never carries the code itself.
type OTPResponse struct {
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expires_at"`
	Validated bool      `json:"validated"`
}

type VerificationCodeRequest struct {
	Code string `json:"code" binding:"required,min=4,max=8"`
}
