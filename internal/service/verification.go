package service

import (
	"context"

	"github.com/Payphone-Digital/customer-service/internal/client"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	"github.com/Payphone-Digital/customer-service/pkg/clock"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
)

// VerificationAPI is the part of the auth service that delivers and checks
// email and phone codes.
type VerificationAPI interface {
	RequestEmailOTP(ctx context.Context, customerID uint, email string) error
	ValidateEmailOTP(ctx context.Context, customerID uint, email, code string) error
	RequestPhoneOTP(ctx context.Context, customerID uint, phone string) error
	ValidatePhoneOTP(ctx context.Context, customerID uint, phone, code string) error
}

type VerificationService struct {
	customers *repository.CustomerRepository
	auth      VerificationAPI
	clock     clock.Clock
}

func NewVerificationService(customers *repository.CustomerRepository, auth VerificationAPI, c clock.Clock) *VerificationService {
	if c == nil {
		c = clock.System
	}
	return &VerificationService{customers: customers, auth: auth, clock: c}
}

func (s *VerificationService) RequestEmail(ctx context.Context, customerID uint) error {
	ctx = ctxutil.WithFunction(ctx, "service", "Verification.RequestEmail")

	customer, err := s.emailCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if err := s.auth.RequestEmailOTP(ctx, customer.ID, *customer.Email); err != nil {
		logger.WarnWithContext(ctx, "Email code request rejected").Uint("customer_id", customerID).Err(err).Log()
		return client.ToDomain(err)
	}
	logger.InfoWithContext(ctx, "Email verification requested").Uint("customer_id", customerID).Log()
	return nil
}

func (s *VerificationService) ValidateEmail(ctx context.Context, customerID uint, req *dto.VerificationCodeRequest) (*dto.CustomerResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Verification.ValidateEmail")

	customer, err := s.emailCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.ValidateEmailOTP(ctx, customer.ID, *customer.Email, req.Code); err != nil {
		logger.WarnWithContext(ctx, "Email code rejected").Uint("customer_id", customerID).Err(err).Log()
		return nil, client.ToDomain(err)
	}
	return s.markVerified(ctx, customer, "email_verified_at")
}

func (s *VerificationService) RequestPhone(ctx context.Context, customerID uint) error {
	ctx = ctxutil.WithFunction(ctx, "service", "Verification.RequestPhone")

	customer, err := s.phoneCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if err := s.auth.RequestPhoneOTP(ctx, customer.ID, customer.Phone); err != nil {
		logger.WarnWithContext(ctx, "Phone code request rejected").Uint("customer_id", customerID).Err(err).Log()
		return client.ToDomain(err)
	}
	logger.InfoWithContext(ctx, "Phone verification requested").Uint("customer_id", customerID).Log()
	return nil
}

func (s *VerificationService) ValidatePhone(ctx context.Context, customerID uint, req *dto.VerificationCodeRequest) (*dto.CustomerResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Verification.ValidatePhone")

	customer, err := s.phoneCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.ValidatePhoneOTP(ctx, customer.ID, customer.Phone, req.Code); err != nil {
		logger.WarnWithContext(ctx, "Phone code rejected").Uint("customer_id", customerID).Err(err).Log()
		return nil, client.ToDomain(err)
	}
	return s.markVerified(ctx, customer, "phone_verified_at")
}

func (s *VerificationService) emailCustomer(ctx context.Context, customerID uint) (*model.CustomerProfile, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, repoError(err, apperrors.ErrCustomerNotFound)
	}
	if customer.Email == nil || *customer.Email == "" {
		return nil, apperrors.ErrEmailNotSet.WithField("email", nil)
	}
	if customer.EmailVerifiedAt != nil {
		return nil, apperrors.ErrAlreadyVerified.WithField("email", *customer.Email)
	}
	return customer, nil
}

func (s *VerificationService) phoneCustomer(ctx context.Context, customerID uint) (*model.CustomerProfile, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, repoError(err, apperrors.ErrCustomerNotFound)
	}
	if customer.PhoneVerifiedAt != nil {
		return nil, apperrors.ErrAlreadyVerified.WithField("phone", customer.Phone)
	}
	return customer, nil
}

func (s *VerificationService) markVerified(ctx context.Context, customer *model.CustomerProfile, column string) (*dto.CustomerResponse, error) {
	now := s.clock.Now()
	if err := s.customers.Update(ctx, customer.ID, map[string]any{column: now}); err != nil {
		return nil, repoError(err, apperrors.ErrCustomerNotFound)
	}
	switch column {
	case "email_verified_at":
		customer.EmailVerifiedAt = &now
	case "phone_verified_at":
		customer.PhoneVerifiedAt = &now
	}
	logger.InfoWithContext(ctx, "Contact verified").Uint("customer_id", customer.ID).String("column", column).Log()
	resp := toCustomerResponse(customer)
	return &resp, nil
}
