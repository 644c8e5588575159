package service

import (
	"errors"
	"strings"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// normalizeName trims, collapses inner whitespace and title-cases.
// Casers keep state, so each call gets its own.
func normalizeName(name string) string {
	return cases.Title(language.Indonesian).String(strings.Join(strings.Fields(name), " "))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// repoError turns a repository error into a domain error.
func repoError(err error, notFound *apperrors.DomainError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return apperrors.WrapError(apperrors.ErrInternal, err)
}

func toCustomerResponse(c *model.CustomerProfile) dto.CustomerResponse {
	resp := dto.CustomerResponse{
		ID:              c.ID,
		Phone:           c.Phone,
		Email:           c.Email,
		Name:            c.Name,
		Gender:          c.Gender,
		EmailVerifiedAt: c.EmailVerifiedAt,
		PhoneVerifiedAt: c.PhoneVerifiedAt,
		SSOID:           c.SSOID,
		ReferralCode:    c.ReferralCode,
		IsActive:        c.IsActive,
		LastLoginAt:     c.LastLoginAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.DateOfBirth != nil {
		dob := time.Time(*c.DateOfBirth).Format(constants.DateLayout)
		resp.DateOfBirth = &dob
	}
	if c.DeletedAt.Valid {
		deleted := c.DeletedAt.Time
		resp.DeletedAt = &deleted
	}
	return resp
}

func toAddressResponse(a *model.Address, city *dto.CityResponse) dto.AddressResponse {
	return dto.AddressResponse{
		ID:            a.ID,
		Name:          a.Name,
		ReceiverName:  a.ReceiverName,
		ReceiverPhone: a.ReceiverPhone,
		Address:       a.Address,
		Latitude:      a.Latitude,
		Longitude:     a.Longitude,
		PostalCode:    a.PostalCode,
		CityID:        a.CityID,
		City:          city,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
