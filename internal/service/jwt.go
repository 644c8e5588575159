package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/Payphone-Digital/customer-service/pkg/clock"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	tokenTypeAdmin   = "admin"
)

var (
	errTokenType       = errors.New("unexpected token type")
	errTokenVersion    = errors.New("token version mismatch")
	errSigningMethod   = errors.New("invalid signing method")
	errMalformedClaims = errors.New("invalid token")
)

// CustomerClaims is carried by customer access and refresh tokens.
type CustomerClaims struct {
	CustomerID   uint   `json:"customer_id"`
	Phone        string `json:"phone"`
	TokenVersion int    `json:"token_version"`
	Type         string `json:"typ"`
	jwt.RegisteredClaims
}

// AdminClaims is carried by admin tokens, signed with their own secret.
type AdminClaims struct {
	AdminID      uint   `json:"admin_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion int    `json:"token_version"`
	Type         string `json:"typ"`
	jwt.RegisteredClaims
}

type JWTConfig struct {
	Secret          string
	AdminSecret     string
	AccessDuration  time.Duration
	RefreshDuration time.Duration
}

type JWTService struct {
	cfg   JWTConfig
	clock clock.Clock
}

func NewJWTService(cfg JWTConfig, c clock.Clock) *JWTService {
	if c == nil {
		c = clock.System
	}
	return &JWTService{cfg: cfg, clock: c}
}

// AccessDuration is the lifetime of access tokens.
func (s *JWTService) AccessDuration() time.Duration {
	return s.cfg.AccessDuration
}

// GenerateTokenPair issues an access and a refresh token bound to tokenVersion.
func (s *JWTService) GenerateTokenPair(customerID uint, phone string, tokenVersion int) (access, refresh string, err error) {
	access, err = s.customerToken(customerID, phone, tokenVersion, tokenTypeAccess, s.cfg.AccessDuration)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.customerToken(customerID, phone, tokenVersion, tokenTypeRefresh, s.cfg.RefreshDuration)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *JWTService) customerToken(customerID uint, phone string, version int, typ string, ttl time.Duration) (string, error) {
	now := s.clock.Now()
	claims := CustomerClaims{
		CustomerID:   customerID,
		Phone:        phone,
		TokenVersion: version,
		Type:         typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(customerID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
}

// ValidateAccessToken checks signature, expiry and type. The caller compares
// TokenVersion with the stored one.
func (s *JWTService) ValidateAccessToken(token string) (*CustomerClaims, error) {
	return s.validateCustomer(token, tokenTypeAccess)
}

func (s *JWTService) ValidateRefreshToken(token string) (*CustomerClaims, error) {
	return s.validateCustomer(token, tokenTypeRefresh)
}

func (s *JWTService) validateCustomer(tokenString, typ string) (*CustomerClaims, error) {
	claims := &CustomerClaims{}
	if err := s.parse(tokenString, s.cfg.Secret, claims); err != nil {
		return nil, err
	}
	if claims.Type != typ {
		return nil, errTokenType
	}
	if claims.CustomerID == 0 {
		return nil, errMalformedClaims
	}
	return claims, nil
}

// GenerateAdminToken issues a token for the back office.
func (s *JWTService) GenerateAdminToken(adminID uint, email, role string, tokenVersion int) (string, error) {
	now := s.clock.Now()
	claims := AdminClaims{
		AdminID:      adminID,
		Email:        email,
		Role:         role,
		TokenVersion: tokenVersion,
		Type:         tokenTypeAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(adminID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessDuration)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.AdminSecret))
}

func (s *JWTService) ValidateAdminToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := s.parse(tokenString, s.cfg.AdminSecret, claims); err != nil {
		return nil, err
	}
	if claims.Type != tokenTypeAdmin {
		return nil, errTokenType
	}
	if claims.AdminID == 0 {
		return nil, errMalformedClaims
	}
	return claims, nil
}

// CheckVersion fails when a token was issued before the last version bump.
func CheckVersion(tokenVersion, stored int) error {
	if tokenVersion != stored {
		return errTokenVersion
	}
	return nil
}

func (s *JWTService) parse(tokenString, secret string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errSigningMethod
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(s.clock.Now), jwt.WithExpirationRequired())
	if err != nil {
		return err
	}
	if !token.Valid {
		return errMalformedClaims
	}
	return nil
}

// IsExpired reports whether err came from an expired token.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
