package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/model"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"gorm.io/gorm"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetByID(ctx context.Context, id uint) (*model.Admin, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Admin.GetByID")

	if err := ctx.Err(); err != nil {
		logger.WarnWithContext(ctx, "Context cancelled before query").Err(err).Log()
		return nil, err
	}

	var admin model.Admin
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&admin).Error; err != nil {
		logger.DebugWithContext(ctx, "Admin lookup failed").Uint("admin_id", id).Err(err).Log()
		return nil, err
	}
	return &admin, nil
}

// GetByEmail finds an admin by email, case-insensitively.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Admin.GetByEmail")

	start := time.Now()
	var admin model.Admin
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&admin).Error
	if err != nil {
		logger.DebugWithContext(ctx, "Admin lookup by email failed").String("email", email).Duration(time.Since(start)).Err(err).Log()
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) UpdateLastLogin(ctx context.Context, id uint) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "Admin.UpdateLastLogin")

	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Model(&model.Admin{}).Where("id = ?", id).Update("last_login", &now).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to update admin last login").Uint("admin_id", id).Err(err).Log()
	}
	return err
}

// IncrementTokenVersion invalidates every token issued to the admin.
func (r *AdminRepository) IncrementTokenVersion(ctx context.Context, id uint) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "Admin.IncrementTokenVersion")

	result := r.db.WithContext(ctx).Model(&model.Admin{}).Where("id = ?", id).
		UpdateColumn("token_version", gorm.Expr("token_version + 1"))
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update admin token version").Uint("admin_id", id).Err(result.Error).Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
