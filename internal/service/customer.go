package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/jobs"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	"github.com/Payphone-Digital/customer-service/pkg/clock"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/Payphone-Digital/customer-service/pkg/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// fieldValidator checks single values the binding tags cannot express.
var fieldValidator = validation.New()

type CustomerService struct {
	customers *repository.CustomerRepository
	otps      *repository.OTPRepository
	jwt       *JWTService
	notify    jobs.Dispatcher
	clock     clock.Clock
}

// NewCustomerService wires the profile service. notify may be nil, which
// disables the welcome email.
func NewCustomerService(
	customers *repository.CustomerRepository,
	otps *repository.OTPRepository,
	jwt *JWTService,
	notify jobs.Dispatcher,
	c clock.Clock,
) *CustomerService {
	if c == nil {
		c = clock.System
	}
	return &CustomerService{customers: customers, otps: otps, jwt: jwt, notify: notify, clock: c}
}

// Register creates a customer whose phone passed OTP validation, then
// consumes the OTP rows of that phone.
func (s *CustomerService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Customer.Register")
	logger.InfoWithContext(ctx, "Registering customer").String("phone", req.Phone).Log()

	if err := s.ensurePhoneFree(ctx, req.Phone, 0); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)
	if email != "" {
		if err := s.ensureEmailFree(ctx, email, 0); err != nil {
			return nil, err
		}
	}

	otp, err := s.otps.GetLatestByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOTPNotValidated.WithField("phone", req.Phone)
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	now := s.clock.Now()
	if !otp.Validated {
		return nil, apperrors.ErrOTPNotValidated.WithField("phone", req.Phone)
	}
	if otp.Expired(now) {
		return nil, apperrors.ErrOTPExpired.WithField("phone", req.Phone)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to hash password").Err(err).Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	customer := &model.CustomerProfile{
		Phone:           req.Phone,
		Name:            normalizeName(req.Name),
		Gender:          req.Gender,
		Password:        hash,
		PhoneVerifiedAt: &now,
		ReferralCode:    req.ReferralCode,
		IsActive:        true,
		TokenVersion:    1,
	}
	if customer.ReferralCode == "" {
		customer.ReferralCode = otp.ReferralCode
	}
	if email != "" {
		customer.Email = &email
	}
	if req.DateOfBirth != "" {
		dob, err := parseDate(req.DateOfBirth)
		if err != nil {
			return nil, apperrors.ErrValidation.WithField("date_of_birth", req.DateOfBirth)
		}
		customer.DateOfBirth = dob
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateError(ctx, req.Phone, email, 0)
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.otps.DeleteByPhone(ctx, req.Phone); err != nil {
		logger.WarnWithContext(ctx, "Failed to consume OTP after registration").String("phone", req.Phone).Err(err).Log()
	}

	logger.InfoWithContext(ctx, "Customer registered").Uint("customer_id", customer.ID).Log()
	s.sendWelcome(ctx, customer)
	return s.issue(ctx, customer)
}

// Login accepts a phone number or an email.
func (s *CustomerService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Customer.Login")

	username := strings.TrimSpace(req.Username)
	var (
		customer *model.CustomerProfile
		err      error
	)
	if strings.Contains(username, "@") {
		customer, err = s.customers.GetByEmail(ctx, username)
	} else {
		customer, err = s.customers.GetByPhone(ctx, username)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WarnWithContext(ctx, "Login for unknown customer").String("username", username).Log()
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !checkPassword(customer.Password, req.Password) {
		logger.WarnWithContext(ctx, "Login with wrong password").Uint("customer_id", customer.ID).Log()
		return nil, apperrors.ErrInvalidCredentials
	}
	if !customer.IsActive {
		return nil, apperrors.ErrCustomerInactive
	}

	now := s.clock.Now()
	if err := s.customers.UpdateLastLogin(ctx, customer.ID, now); err != nil {
		logger.WarnWithContext(ctx, "Failed to record last login").Uint("customer_id", customer.ID).Err(err).Log()
	} else {
		customer.LastLoginAt = &now
	}

	logger.InfoWithContext(ctx, "Customer logged in").Uint("customer_id", customer.ID).Log()
	return s.issue(ctx, customer)
}

// Refresh rotates the pair: the token version is bumped so the presented
// refresh token cannot be used twice.
func (s *CustomerService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Customer.Refresh")

	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		logger.WarnWithContext(ctx, "Invalid refresh token").Err(err).Log()
		if IsExpired(err) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	customer, err := s.customers.GetByID(ctx, claims.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if err := CheckVersion(claims.TokenVersion, customer.TokenVersion); err != nil {
		logger.WarnWithContext(ctx, "Refresh token revoked").Uint("customer_id", customer.ID).Log()
		return nil, apperrors.ErrInvalidToken
	}
	if !customer.IsActive {
		return nil, apperrors.ErrCustomerInactive
	}

	if err := s.customers.UpdateTokenVersion(ctx, customer.ID); err != nil {
		return nil, repoError(err, apperrors.ErrCustomerNotFound)
	}
	customer.TokenVersion++

	return s.issue(ctx, customer)
}

// Logout revokes every token issued so far.
func (s *CustomerService) Logout(ctx context.Context, customerID uint) error {
	ctx = ctxutil.WithFunction(ctx, "service", "Customer.Logout")
	if err := s.customers.UpdateTokenVersion(ctx, customerID); err != nil {
		return repoError(err, apperrors.ErrCustomerNotFound)
	}
	logger.InfoWithContext(ctx, "Customer logged out").Uint("customer_id", customerID).Log()
	return nil
}

// TokenVersion returns the stored version of an active customer. Used by
// the auth middleware.
func (s *CustomerService) TokenVersion(ctx context.Context, customerID uint) (int, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Customer.TokenVersion")
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return 0, repoError(err, apperrors.ErrUnauthorized)
	}
	if !customer.IsActive {
		return 0, apperrors.ErrCustomerInactive
	}
	return customer.TokenVersion, nil
}

func (s *CustomerService) GetProfile(ctx context.Context, customerID uint) (*dto.CustomerResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Customer.GetProfile")
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, repoError(err, apperrors.ErrCustomerNotFound)
	}
	resp := toCustomerResponse(customer)
	return &resp, nil
}

// UpdateProfile applies the present fields. A changed phone or email clears
// its verification timestamp.
func (s *CustomerService) UpdateProfile(ctx context.Context, customerID uint, req *dto.UpdateProfileRequest) (*dto.CustomerResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Customer.UpdateProfile")

	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, repoError(err, apperrors.ErrCustomerNotFound)
	}

	updates := map[string]any{}

	if req.Phone != nil && *req.Phone != customer.Phone {
		if err := s.ensurePhoneFree(ctx, *req.Phone, customerID); err != nil {
			return nil, err
		}
		updates["phone"] = *req.Phone
		updates["phone_verified_at"] = nil
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		switch {
		case email == "" && customer.Email != nil:
			updates["email"] = nil
			updates["email_verified_at"] = nil
		case email != "" && email != normalizeEmail(customer.EmailValue()):
			if fieldValidator.Engine().Var(email, "email") != nil {
				return nil, apperrors.ErrEmailInvalid.WithField("email", *req.Email)
			}
			if err := s.ensureEmailFree(ctx, email, customerID); err != nil {
				return nil, err
			}
			updates["email"] = email
			updates["email_verified_at"] = nil
		}
	}

	if req.Name != nil {
		updates["name"] = normalizeName(*req.Name)
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.DateOfBirth != nil {
		if *req.DateOfBirth == "" {
			updates["date_of_birth"] = nil
		} else {
			dob, err := parseDate(*req.DateOfBirth)
			if err != nil {
				return nil, apperrors.ErrValidation.WithField("date_of_birth", *req.DateOfBirth)
			}
			updates["date_of_birth"] = dob
		}
	}

	if len(updates) > 0 {
		if err := s.customers.Update(ctx, customerID, updates); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				phone, _ := updates["phone"].(string)
				email, _ := updates["email"].(string)
				return nil, s.duplicateError(ctx, phone, email, customerID)
			}
			return nil, repoError(err, apperrors.ErrCustomerNotFound)
		}
		logger.InfoWithContext(ctx, "Profile updated").Uint("customer_id", customerID).Int("fields", len(updates)).Log()
	}

	return s.GetProfile(ctx, customerID)
}

func (s *CustomerService) UpdatePassword(ctx context.Context, customerID uint, req *dto.UpdatePasswordRequest) error {
	ctx = ctxutil.WithFunction(ctx, "service", "Customer.UpdatePassword")

	if req.NewPassword != req.ConfirmPassword {
		return apperrors.ErrPasswordMismatch.WithField("confirm_password", "")
	}
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return repoError(err, apperrors.ErrCustomerNotFound)
	}
	if !checkPassword(customer.Password, req.CurrentPassword) {
		return apperrors.ErrIncorrectPassword.WithField("current_password", "")
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if err := s.customers.UpdatePassword(ctx, customerID, hash); err != nil {
		return repoError(err, apperrors.ErrCustomerNotFound)
	}
	logger.InfoWithContext(ctx, "Password updated").Uint("customer_id", customerID).Log()
	return nil
}

// DeleteProfile soft-deletes the caller and revokes their tokens.
func (s *CustomerService) DeleteProfile(ctx context.Context, customerID uint) error {
	ctx = ctxutil.WithFunction(ctx, "service", "Customer.DeleteProfile")
	if err := s.customers.SoftDelete(ctx, customerID); err != nil {
		return repoError(err, apperrors.ErrCustomerNotFound)
	}
	if err := s.customers.UpdateTokenVersion(ctx, customerID); err != nil {
		logger.WarnWithContext(ctx, "Failed to revoke tokens of deleted customer").Uint("customer_id", customerID).Err(err).Log()
	}
	return nil
}

// CheckAvailability reports whether phone and email are still free.
func (s *CustomerService) CheckAvailability(ctx context.Context, req *dto.CheckAvailabilityRequest) (*dto.CheckAvailabilityResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Customer.CheckAvailability")

	resp := &dto.CheckAvailabilityResponse{}
	if req.Phone != "" {
		taken, err := s.customers.PhoneTaken(ctx, req.Phone, 0)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		available := !taken
		resp.PhoneAvailable = &available
	}
	if req.Email != "" {
		taken, err := s.customers.EmailTaken(ctx, normalizeEmail(req.Email), 0)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		available := !taken
		resp.EmailAvailable = &available
	}
	return resp, nil
}

// sendWelcome is best effort; registration never fails on it.
func (s *CustomerService) sendWelcome(ctx context.Context, customer *model.CustomerProfile) {
	if s.notify == nil || customer.Email == nil {
		return
	}
	data := map[string]any{
		"AppName":      constants.AppName,
		"Name":         customer.Name,
		"Phone":        customer.Phone,
		"ReferralCode": customer.ReferralCode,
		"RegisteredAt": customer.CreatedAt.In(clock.WIB),
	}
	subject, err := renderTemplate(templateWelcomeTitle, data)
	if err == nil {
		var body string
		if body, err = renderTemplate(templateWelcomeBody, data); err == nil {
			err = s.notify.DispatchEmail(ctx, jobs.SendEmailPayload{To: *customer.Email, Subject: subject, Body: body})
		}
	}
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to send welcome email").Uint("customer_id", customer.ID).Err(err).Log()
	}
}

func (s *CustomerService) ensurePhoneFree(ctx context.Context, phone string, excludeID uint) error {
	taken, err := s.customers.PhoneTaken(ctx, phone, excludeID)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if taken {
		return apperrors.ErrPhoneRegistered.WithField("phone", phone)
	}
	return nil
}

func (s *CustomerService) ensureEmailFree(ctx context.Context, email string, excludeID uint) error {
	taken, err := s.customers.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if taken {
		return apperrors.ErrEmailRegistered.WithField("email", email)
	}
	return nil
}

// duplicateError names the field behind a unique index violation, which
// happens when a concurrent write claims the value after the pre-check.
func (s *CustomerService) duplicateError(ctx context.Context, phone, email string, excludeID uint) error {
	logger.WarnWithContext(ctx, "Unique constraint violated on customer write").
		String("phone", phone).
		String("email", email).
		Log()
	if phone != "" {
		if err := s.ensurePhoneFree(ctx, phone, excludeID); err != nil {
			return err
		}
	}
	if email != "" {
		if err := s.ensureEmailFree(ctx, email, excludeID); err != nil {
			return err
		}
	}
	if phone == "" && email != "" {
		return apperrors.ErrEmailRegistered.WithField("email", email)
	}
	return apperrors.ErrPhoneRegistered.WithField("phone", phone)
}

func (s *CustomerService) issue(ctx context.Context, customer *model.CustomerProfile) (*dto.AuthResponse, error) {
	pair, err := issuePair(s.jwt, customer)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to sign tokens").Uint("customer_id", customer.ID).Err(err).Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return &dto.AuthResponse{TokenPair: *pair, Customer: toCustomerResponse(customer)}, nil
}

func issuePair(j *JWTService, customer *model.CustomerProfile) (*dto.TokenPair, error) {
	access, refresh, err := j.GenerateTokenPair(customer.ID, customer.Phone, customer.TokenVersion)
	if err != nil {
		return nil, err
	}
	return &dto.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(j.AccessDuration() / time.Second),
	}, nil
}

func parseDate(s string) (*datatypes.Date, error) {
	t, err := time.Parse(constants.DateLayout, s)
	if err != nil {
		return nil, err
	}
	d := datatypes.Date(t)
	return &d, nil
}
