package dto

import "time"

type RegisterRequest struct {
	Phone        string `json:"phone" binding:"required,numeric,min=10,max=15"`
	Email        string `json:"email" binding:"omitempty,email,max=255"`
	Name         string `json:"name" binding:"required,min=2,max=100"`
	DateOfBirth  string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Gender       string `json:"gender" binding:"omitempty,oneof=male female"`
	Password     string `json:"password" binding:"required,min=8,max=100"`
	ReferralCode string `json:"referral_code" binding:"omitempty,alphanum,max=20"`
}

// LoginRequest accepts a phone number or an email as Username.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest uses pointers so absent fields are left unchanged.
// An empty email removes it.
type UpdateProfileRequest struct {
	Phone       *string `json:"phone" binding:"omitempty,numeric,min=10,max=15"`
	Email       *string `json:"email" binding:"omitempty,max=255"`
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	DateOfBirth *string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Gender      *string `json:"gender" binding:"omitempty,oneof=male female"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=100"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type CheckAvailabilityRequest struct {
	Phone string `json:"phone" binding:"required_without=Email,omitempty,numeric"`
	Email string `json:"email" binding:"required_without=Phone,omitempty,email"`
}

type CheckAvailabilityResponse struct {
	PhoneAvailable *bool `json:"phone_available,omitempty"`
	EmailAvailable *bool `json:"email_available,omitempty"`
}

type CustomerResponse struct {
	ID              uint       `json:"id"`
	Phone           string     `json:"phone"`
	Email           *string    `json:"email"`
	Name            string     `json:"name"`
	DateOfBirth     *string    `json:"date_of_birth"`
	Gender          string     `json:"gender"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	PhoneVerifiedAt *time.Time `json:"phone_verified_at"`
	SSOID           *string    `json:"sso_id"`
	ReferralCode    string     `json:"referral_code"`
	IsActive        bool       `json:"is_active"`
	LastLoginAt     *time.Time `json:"last_login_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // seconds
}

type AuthResponse struct {
	TokenPair
	Customer CustomerResponse `json:"customer"`
}

// UpdateStatusRequest toggles a customer's active flag.
type UpdateStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
