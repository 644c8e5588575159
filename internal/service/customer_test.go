package service

import (
	"context"
	"testing"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCustomerService(f *fixture) *CustomerService {
	return NewCustomerService(f.customers, f.otps, f.jwt, f.notify, f.clock)
}

func (f *fixture) validatedOTP(t *testing.T, phone string) {
	t.Helper()
	require.NoError(t, f.otps.Create(context.Background(), &model.OTP{
		Phone:        phone,
		Code:         "1234",
		ReferralCode: "PROMO1",
		Validated:    true,
		ExpiresAt:    f.clock.Now().Add(5 * time.Minute),
	}))
}

func TestCustomerService_RegisterRequiresValidatedOTP(t *testing.T) {
	f := newFixture(t)
	svc := newCustomerService(f)
	ctx := context.Background()
	req := &dto.RegisterRequest{Phone: "081234567890", Name: "  budi   santoso ", Password: "Rahasia123", Email: "Budi@Example.com"}

	_, err := svc.Register(ctx, req)
	requireKind(t, err, apperrors.KindOTPNotValidated)

	require.NoError(t, f.otps.Create(ctx, &model.OTP{Phone: req.Phone, Code: "1111", ExpiresAt: f.clock.Now().Add(time.Minute)}))
	_, err = svc.Register(ctx, req)
	requireKind(t, err, apperrors.KindOTPNotValidated)

	f.validatedOTP(t, req.Phone)
	resp, err := svc.Register(ctx, req)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Budi Santoso", resp.Customer.Name)
	assert.Equal(t, "budi@example.com", *resp.Customer.Email)
	assert.Equal(t, "PROMO1", resp.Customer.ReferralCode)
	require.NotNil(t, resp.Customer.PhoneVerifiedAt)
	assert.Nil(t, resp.Customer.EmailVerifiedAt)

	_, err = f.otps.GetLatestByPhone(ctx, req.Phone)
	assert.Error(t, err, "OTP rows are consumed")

	require.Len(t, f.notify.emails, 1)
	assert.Equal(t, "budi@example.com", f.notify.emails[0].To)
	assert.Contains(t, f.notify.emails[0].Body, req.Phone)
	assert.Contains(t, f.notify.emails[0].Subject, "Budi Santoso")
}

func TestCustomerService_RegisterRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	svc := newCustomerService(f)
	f.seedCustomer(t, "081200000001", "ada@example.com")

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Phone: "081200000001", Name: "Ada", Password: "Rahasia123"})
	requireKind(t, err, apperrors.KindPhoneRegistered)
	assert.Equal(t, 400, apperrors.ToHTTPStatus(err))

	_, err = svc.Register(context.Background(), &dto.RegisterRequest{Phone: "081200000002", Email: "ADA@example.com", Name: "Ada", Password: "Rahasia123"})
	requireKind(t, err, apperrors.KindEmailRegistered)
}

// claimPhoneBeforeInsert makes the next customer insert lose a race for
// phone: the row appears after the service's own duplicate check.
func claimPhoneBeforeInsert(t *testing.T, db *gorm.DB, phone string) {
	t.Helper()
	done := false
	err := db.Callback().Create().Before("gorm:create").Register("test:claim_phone", func(tx *gorm.DB) {
		if done || tx.Statement.Table != "customer_profiles" {
			return
		}
		done = true
		now := time.Now().UTC()
		tx.AddError(tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO customer_profiles (phone, name, is_active, token_version, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			phone, "Pemenang", true, 1, now, now,
		).Error)
	})
	require.NoError(t, err)
}

func TestCustomerService_RegisterLosesPhoneRace(t *testing.T) {
	f := newFixture(t)
	svc := newCustomerService(f)
	f.validatedOTP(t, "081299990000")
	claimPhoneBeforeInsert(t, f.db, "081299990000")

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Phone: "081299990000", Name: "Tono", Password: "Rahasia123"})
	requireKind(t, err, apperrors.KindPhoneRegistered)
	assert.Equal(t, 400, apperrors.ToHTTPStatus(err))
	assert.Equal(t, "phone", apperrors.GetDomainError(err).Property)
}

func TestCustomerService_RegisterExpiredOTP(t *testing.T) {
	f := newFixture(t)
	svc := newCustomerService(f)
	f.validatedOTP(t, "081233334444")
	f.clock.Advance(6 * time.Minute)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Phone: "081233334444", Name: "Eka", Password: "Rahasia123"})
	requireKind(t, err, apperrors.KindOTPExpired)
}

func TestCustomerService_Login(t *testing.T) {
	f := newFixture(t)
	svc := newCustomerService(f)
	ctx := context.Background()
	c := f.seedCustomer(t, "081255556666", "dewi@example.com")

	byPhone, err := svc.Login(ctx, &dto.LoginRequest{Username: "081255556666", Password: "Rahasia123"})
	require.NoError(t, err)
	assert.Equal(t, c.ID, byPhone.Customer.ID)
	assert.NotNil(t, byPhone.Customer.LastLoginAt)
	assert.Equal(t, "Bearer", byPhone.TokenType)
	assert.Equal(t, 900, byPhone.ExpiresIn)

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "DEWI@example.com", Password: "Rahasia123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "081255556666", Password: "salah"})
	requireKind(t, err, apperrors.KindInvalidCredentials)
	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "089999999999", Password: "Rahasia123"})
	requireKind(t, err, apperrors.KindInvalidCredentials)

	require.NoError(t, f.customers.Update(ctx, c.ID, map[string]any{"is_active": false}))
	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "081255556666", Password: "Rahasia123"})
	requireKind(t, err, apperrors.KindCustomerInactive)
}

func TestCustomerService_RefreshRotatesAndLogoutRevokes(t *testing.T) {
	f := newFixture(t)
	svc := newCustomerService(f)
	ctx := context.Background()
	f.seedCustomer(t, "081277778888", "")

	login, err := svc.Login(ctx, &dto.LoginRequest{Username: "081277778888", Password: "Rahasia123"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, login.AccessToken)
	requireKind(t, err, apperrors.KindInvalidToken)

	rotated, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, login.RefreshToken)
	requireKind(t, err, apperrors.KindInvalidToken)

	claims, err := f.jwt.ValidateAccessToken(rotated.AccessToken)
	require.NoError(t, err)
	version, err := svc.TokenVersion(ctx, claims.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, claims.TokenVersion, version)

	require.NoError(t, svc.Logout(ctx, claims.CustomerID))
	version, err = svc.TokenVersion(ctx, claims.CustomerID)
	require.NoError(t, err)
	assert.NotEqual(t, claims.TokenVersion, version)

	f.clock.Advance(25 * time.Hour)
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	requireKind(t, err, apperrors.KindTokenExpired)
}

func TestCustomerService_UpdateProfileClearsVerification(t *testing.T) {
	f := newFixture(t)
	svc := newCustomerService(f)
	ctx := context.Background()
	c := f.seedCustomer(t, "081211112222", "lama@example.com")
	f.seedCustomer(t, "081233334444", "dipakai@example.com")
	now := f.clock.Now()
	require.NoError(t, f.customers.Update(ctx, c.ID, map[string]any{"email_verified_at": now, "phone_verified_at": now}))

	name := "sri   wahyuni"
	resp, err := svc.UpdateProfile(ctx, c.ID, &dto.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Sri Wahyuni", resp.Name)
	assert.NotNil(t, resp.EmailVerifiedAt)
	assert.NotNil(t, resp.PhoneVerifiedAt)

	sameEmail := "LAMA@example.com"
	resp, err = svc.UpdateProfile(ctx, c.ID, &dto.UpdateProfileRequest{Email: &sameEmail})
	require.NoError(t, err)
	assert.NotNil(t, resp.EmailVerifiedAt, "same email must not reset verification")

	taken := "dipakai@example.com"
	_, err = svc.UpdateProfile(ctx, c.ID, &dto.UpdateProfileRequest{Email: &taken})
	requireKind(t, err, apperrors.KindEmailRegistered)

	bad := "bukan-email"
	_, err = svc.UpdateProfile(ctx, c.ID, &dto.UpdateProfileRequest{Email: &bad})
	requireKind(t, err, apperrors.KindEmailInvalid)
	assert.Equal(t, "invalid email address", apperrors.GetErrorMessage(err))

	newEmail := "baru@example.com"
	resp, err = svc.UpdateProfile(ctx, c.ID, &dto.UpdateProfileRequest{Email: &newEmail})
	require.NoError(t, err)
	assert.Equal(t, newEmail, *resp.Email)
	assert.Nil(t, resp.EmailVerifiedAt)
	assert.NotNil(t, resp.PhoneVerifiedAt)

	takenPhone := "081233334444"
	_, err = svc.UpdateProfile(ctx, c.ID, &dto.UpdateProfileRequest{Phone: &takenPhone})
	requireKind(t, err, apperrors.KindPhoneRegistered)

	newPhone := "081299990000"
	dob := "1990-02-03"
	resp, err = svc.UpdateProfile(ctx, c.ID, &dto.UpdateProfileRequest{Phone: &newPhone, DateOfBirth: &dob})
	require.NoError(t, err)
	assert.Equal(t, newPhone, resp.Phone)
	assert.Nil(t, resp.PhoneVerifiedAt)
	require.NotNil(t, resp.DateOfBirth)
	assert.Equal(t, dob, *resp.DateOfBirth)

	empty := ""
	resp, err = svc.UpdateProfile(ctx, c.ID, &dto.UpdateProfileRequest{Email: &empty})
	require.NoError(t, err)
	assert.Nil(t, resp.Email)
}

func TestCustomerService_UpdatePasswordAndDelete(t *testing.T) {
	f := newFixture(t)
	svc := newCustomerService(f)
	ctx := context.Background()
	c := f.seedCustomer(t, "081244445555", "")

	err := svc.UpdatePassword(ctx, c.ID, &dto.UpdatePasswordRequest{CurrentPassword: "Rahasia123", NewPassword: "BaruSekali1", ConfirmPassword: "Beda"})
	requireKind(t, err, apperrors.KindPasswordMismatch)
	err = svc.UpdatePassword(ctx, c.ID, &dto.UpdatePasswordRequest{CurrentPassword: "salah", NewPassword: "BaruSekali1", ConfirmPassword: "BaruSekali1"})
	requireKind(t, err, apperrors.KindIncorrectPassword)
	require.NoError(t, svc.UpdatePassword(ctx, c.ID, &dto.UpdatePasswordRequest{CurrentPassword: "Rahasia123", NewPassword: "BaruSekali1", ConfirmPassword: "BaruSekali1"}))

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: c.Phone, Password: "BaruSekali1"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProfile(ctx, c.ID))
	_, err = svc.GetProfile(ctx, c.ID)
	requireKind(t, err, apperrors.KindCustomerNotFound)
}

func TestCustomerService_CheckAvailability(t *testing.T) {
	f := newFixture(t)
	svc := newCustomerService(f)
	f.seedCustomer(t, "081266667777", "ada@example.com")

	resp, err := svc.CheckAvailability(context.Background(), &dto.CheckAvailabilityRequest{Phone: "081266667777", Email: "baru@example.com"})
	require.NoError(t, err)
	assert.False(t, *resp.PhoneAvailable)
	assert.True(t, *resp.EmailAvailable)

	resp, err = svc.CheckAvailability(context.Background(), &dto.CheckAvailabilityRequest{Email: "ADA@example.com"})
	require.NoError(t, err)
	assert.Nil(t, resp.PhoneAvailable)
	assert.False(t, *resp.EmailAvailable)
}
