package dto

import "time"

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AdminResponse struct {
	ID        uint       `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	LastLogin *time.Time `json:"last_login"`
}

type AdminLoginResponse struct {
	Token     string        `json:"token"`
	ExpiresIn int           `json:"expires_in"` // seconds
	Admin     AdminResponse `json:"admin"`
}
