package client

import (
	"context"
	"net/http"

	"github.com/Payphone-Digital/customer-service/internal/constants"
)

// SSOUser is the auth service's view of an identity.
type SSOUser struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type SSOTokens struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	User         *SSOUser `json:"user,omitempty"`
}

// SyncUserRequest is one customer row pushed by the sync loop.
type SyncUserRequest struct {
	CustomerID    uint    `json:"customer_id"`
	SSOID         *string `json:"sso_id"`
	Phone         string  `json:"phone"`
	Email         *string `json:"email"`
	Name          string  `json:"name"`
	IsActive      bool    `json:"is_active"`
	Deleted       bool    `json:"deleted"`
	EmailVerified bool    `json:"email_verified"`
	PhoneVerified bool    `json:"phone_verified"`
	UpdatedAt     string  `json:"updated_at"`
	PasswordHash  string  `json:"password_hash,omitempty"`
	ReferralCode  string  `json:"referral_code,omitempty"`
}

type SyncUserResponse struct {
	SSOID string `json:"sso_id"`
}

type AuthClient struct {
	up *Upstream
}

func NewAuthClient(up *Upstream) *AuthClient {
	return &AuthClient{up: up}
}

func (c *AuthClient) Login(ctx context.Context, username, password string) (*SSOTokens, error) {
	var out SSOTokens
	err := c.up.Do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &out, nil)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyToken introspects an SSO access token.
func (c *AuthClient) VerifyToken(ctx context.Context, token string) (*SSOUser, error) {
	var out SSOUser
	err := c.up.Do(ctx, http.MethodPost, "/auth/verify", map[string]string{"token": token}, &out,
		map[string]string{constants.HeaderAuthorization: "Bearer " + token})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (*SSOTokens, error) {
	var out SSOTokens
	err := c.up.Do(ctx, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": refreshToken}, &out, nil)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AuthClient) RequestEmailOTP(ctx context.Context, customerID uint, email string) error {
	return c.up.Do(ctx, http.MethodPost, "/otp/email/request", map[string]any{
		"customer_id": customerID,
		"email":       email,
	}, nil, nil)
}

func (c *AuthClient) ValidateEmailOTP(ctx context.Context, customerID uint, email, code string) error {
	return c.up.Do(ctx, http.MethodPost, "/otp/email/validate", map[string]any{
		"customer_id": customerID,
		"email":       email,
		"code":        code,
	}, nil, nil)
}

func (c *AuthClient) RequestPhoneOTP(ctx context.Context, customerID uint, phone string) error {
	return c.up.Do(ctx, http.MethodPost, "/otp/phone/request", map[string]any{
		"customer_id": customerID,
		"phone":       phone,
	}, nil, nil)
}

func (c *AuthClient) ValidatePhoneOTP(ctx context.Context, customerID uint, phone, code string) error {
	return c.up.Do(ctx, http.MethodPost, "/otp/phone/validate", map[string]any{
		"customer_id": customerID,
		"phone":       phone,
		"code":        code,
	}, nil, nil)
}

// SyncUser pushes one customer to the identity provider and returns its id there.
func (c *AuthClient) SyncUser(ctx context.Context, req SyncUserRequest) (*SyncUserResponse, error) {
	var out SyncUserResponse
	if err := c.up.Do(ctx, http.MethodPost, "/users/sync", req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AuthClient) Health(ctx context.Context) error {
	return c.up.Health(ctx)
}
