package service

import (
	"context"
	"errors"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"gorm.io/gorm"
)

// AdminService authenticates back-office operators.
type AdminService struct {
	admins *repository.AdminRepository
	jwt    *JWTService
}

func NewAdminService(admins *repository.AdminRepository, jwt *JWTService) *AdminService {
	return &AdminService{admins: admins, jwt: jwt}
}

func (s *AdminService) Login(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Admin.Login")
	logger.InfoWithContext(ctx, "Admin login attempt").String("email", req.Email).Log()

	admin, err := s.admins.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !checkPassword(admin.Password, req.Password) {
		logger.WarnWithContext(ctx, "Admin login with wrong password").Uint("admin_id", admin.ID).Log()
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateAdminToken(admin.ID, admin.Email, admin.Role, admin.TokenVersion)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to sign admin token").Uint("admin_id", admin.ID).Err(err).Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if err := s.admins.UpdateLastLogin(ctx, admin.ID); err != nil {
		logger.WarnWithContext(ctx, "Failed to record admin login").Uint("admin_id", admin.ID).Err(err).Log()
	}

	logger.InfoWithContext(ctx, "Admin logged in").Uint("admin_id", admin.ID).Log()
	return &dto.AdminLoginResponse{
		Token:     token,
		ExpiresIn: int(s.jwt.AccessDuration() / time.Second),
		Admin:     toAdminResponse(admin),
	}, nil
}

func (s *AdminService) Logout(ctx context.Context, adminID uint) error {
	ctx = ctxutil.WithFunction(ctx, "service", "Admin.Logout")
	if err := s.admins.IncrementTokenVersion(ctx, adminID); err != nil {
		return repoError(err, apperrors.ErrUnauthorized)
	}
	return nil
}

func (s *AdminService) Me(ctx context.Context, adminID uint) (*dto.AdminResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Admin.Me")
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return nil, repoError(err, apperrors.ErrUnauthorized)
	}
	resp := toAdminResponse(admin)
	return &resp, nil
}

// TokenVersion is used by the admin auth middleware.
func (s *AdminService) TokenVersion(ctx context.Context, adminID uint) (int, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return 0, repoError(err, apperrors.ErrUnauthorized)
	}
	return admin.TokenVersion, nil
}

func toAdminResponse(a *model.Admin) dto.AdminResponse {
	return dto.AdminResponse{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role, LastLogin: a.LastLogin}
}
