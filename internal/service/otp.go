package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/jobs"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	"github.com/Payphone-Digital/customer-service/pkg/cache"
	"github.com/Payphone-Digital/customer-service/pkg/clock"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"gorm.io/gorm"
)

// CodeGenerator returns a numeric code of the given length.
type CodeGenerator func(length int) (string, error)

// RandomCode draws each digit from crypto/rand.
func RandomCode(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}

type OTPService struct {
	otps       *repository.OTPRepository
	customers  *repository.CustomerRepository
	throttle   cache.Store
	dispatcher jobs.Dispatcher
	clock      clock.Clock
	generate   CodeGenerator
}

func NewOTPService(
	otps *repository.OTPRepository,
	customers *repository.CustomerRepository,
	throttle cache.Store,
	dispatcher jobs.Dispatcher,
	c clock.Clock,
	generate CodeGenerator,
) *OTPService {
	if c == nil {
		c = clock.System
	}
	if generate == nil {
		generate = RandomCode
	}
	return &OTPService{
		otps:       otps,
		customers:  customers,
		throttle:   throttle,
		dispatcher: dispatcher,
		clock:      c,
		generate:   generate,
	}
}

// Create issues a code for an unregistered phone. A live unvalidated code
// blocks a second one; expired or validated rows are replaced.
func (s *OTPService) Create(ctx context.Context, req *dto.CreateOTPRequest) (*dto.OTPResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "OTP.Create")
	logger.InfoWithContext(ctx, "OTP requested").String("phone", req.Phone).Log()

	taken, err := s.customers.PhoneTaken(ctx, req.Phone, 0)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if taken {
		return nil, apperrors.ErrPhoneRegistered.WithField("phone", req.Phone)
	}

	now := s.clock.Now()
	latest, err := s.otps.GetLatestByPhone(ctx, req.Phone)
	switch {
	case err == nil:
		if !latest.Validated && !latest.Expired(now) {
			return nil, apperrors.ErrOTPPhoneExists.WithField("phone", req.Phone)
		}
		if err := s.otps.DeleteByPhone(ctx, req.Phone); err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	code, err := s.generate(constants.OTPLength)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	otp := &model.OTP{
		Phone:        req.Phone,
		Code:         code,
		ReferralCode: req.ReferralCode,
		ExpiresAt:    now.Add(constants.OTPExpiry),
	}
	if err := s.otps.Create(ctx, otp); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.markSent(ctx, req.Phone)
	if err := s.send(ctx, otp); err != nil {
		// Without a delivered code the row would only block the phone.
		if derr := s.otps.DeleteByPhone(ctx, req.Phone); derr != nil {
			logger.WarnWithContext(ctx, "Failed to drop undelivered OTP").String("phone", req.Phone).Err(derr).Log()
		}
		return nil, err
	}

	logger.InfoWithContext(ctx, "OTP created").String("phone", req.Phone).Uint("otp_id", otp.ID).Log()
	return toOTPResponse(otp), nil
}

// Validate checks code against the newest row of phone.
func (s *OTPService) Validate(ctx context.Context, req *dto.ValidateOTPRequest) (*dto.OTPResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "OTP.Validate")

	otp, err := s.otps.GetLatestByPhone(ctx, req.Phone)
	if err != nil {
		return nil, repoError(err, apperrors.ErrOTPNotFound)
	}
	now := s.clock.Now()

	if otp.Validated {
		return nil, apperrors.ErrOTPAlreadyValidated.WithField("code", req.Code)
	}
	if otp.Expired(now) || otp.Attempts >= constants.OTPMaxAttempts {
		return nil, apperrors.ErrOTPExpired.WithField("code", req.Code)
	}
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(req.Code)) != 1 {
		if err := s.otps.IncrementAttempts(ctx, otp.ID); err != nil {
			logger.WarnWithContext(ctx, "Failed to count OTP attempt").Uint("otp_id", otp.ID).Err(err).Log()
		}
		logger.WarnWithContext(ctx, "Wrong OTP code").String("phone", req.Phone).Int("attempts", otp.Attempts+1).Log()
		return nil, apperrors.ErrOTPInvalid.WithField("code", req.Code)
	}

	// A validated code stays usable for registration for one more expiry window.
	expiresAt := now.Add(constants.OTPExpiry)
	if err := s.otps.Update(ctx, otp.ID, map[string]any{"validated": true, "expires_at": expiresAt}); err != nil {
		return nil, repoError(err, apperrors.ErrOTPNotFound)
	}
	otp.Validated = true
	otp.ExpiresAt = expiresAt

	logger.InfoWithContext(ctx, "OTP validated").String("phone", req.Phone).Log()
	return toOTPResponse(otp), nil
}

// Resend replaces the code of an unvalidated row, at most once per interval.
func (s *OTPService) Resend(ctx context.Context, req *dto.ResendOTPRequest) (*dto.OTPResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "OTP.Resend")

	otp, err := s.otps.GetLatestByPhone(ctx, req.Phone)
	if err != nil {
		return nil, repoError(err, apperrors.ErrOTPNotFound)
	}
	if otp.Validated {
		return nil, apperrors.ErrOTPAlreadyValidated.WithField("phone", req.Phone)
	}

	ok, err := s.throttle.SetIfAbsent(ctx, constants.CacheKeyOTPResend+req.Phone, []byte("1"), constants.OTPResendInterval)
	if err != nil {
		logger.ErrorWithContext(ctx, "OTP throttle unavailable").Err(err).Log()
		return nil, apperrors.WrapError(apperrors.ErrServiceUnavailable, err)
	}
	if !ok {
		return nil, apperrors.ErrOTPResendTooSoon.WithField("phone", req.Phone)
	}

	code, err := s.generate(constants.OTPLength)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	expiresAt := s.clock.Now().Add(constants.OTPExpiry)
	if err := s.otps.Update(ctx, otp.ID, map[string]any{"code": code, "expires_at": expiresAt, "attempts": 0}); err != nil {
		return nil, repoError(err, apperrors.ErrOTPNotFound)
	}
	otp.Code = code
	otp.ExpiresAt = expiresAt
	otp.Attempts = 0

	if err := s.send(ctx, otp); err != nil {
		return nil, err
	}
	logger.InfoWithContext(ctx, "OTP resent").String("phone", req.Phone).Log()
	return toOTPResponse(otp), nil
}

func (s *OTPService) markSent(ctx context.Context, phone string) {
	if _, err := s.throttle.SetIfAbsent(ctx, constants.CacheKeyOTPResend+phone, []byte("1"), constants.OTPResendInterval); err != nil {
		logger.WarnWithContext(ctx, "Failed to set OTP throttle").String("phone", phone).Err(err).Log()
	}
}

func (s *OTPService) send(ctx context.Context, otp *model.OTP) error {
	message, err := renderTemplate(templateOTPSMS, map[string]any{
		"AppName": constants.AppName,
		"Code":    otp.Code,
		"Minutes": int(constants.OTPExpiry / time.Minute),
	})
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if err := s.dispatcher.DispatchSMS(ctx, jobs.SendSMSPayload{Phone: otp.Phone, Message: message}); err != nil {
		logger.ErrorWithContext(ctx, "Failed to dispatch OTP SMS").String("phone", otp.Phone).Err(err).Log()
		return apperrors.WrapError(apperrors.ErrServiceUnavailable, fmt.Errorf("send otp: %w", err))
	}
	return nil
}

func toOTPResponse(otp *model.OTP) *dto.OTPResponse {
	return &dto.OTPResponse{Phone: otp.Phone, ExpiresAt: otp.ExpiresAt, Validated: otp.Validated}
}
