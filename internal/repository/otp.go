package repository

import (
	"context"

	"github.com/Payphone-Digital/customer-service/internal/model"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"gorm.io/gorm"
)

type OTPRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// GetLatestByPhone returns the newest OTP row for phone.
func (r *OTPRepository) GetLatestByPhone(ctx context.Context, phone string) (*model.OTP, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "OTP.GetLatestByPhone")
	var otp model.OTP
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).Order("id DESC").First(&otp).Error; err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *OTPRepository) Create(ctx context.Context, otp *model.OTP) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "OTP.Create")
	if err := r.db.WithContext(ctx).Create(otp).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to create OTP").String("phone", otp.Phone).Err(err).Log()
		return err
	}
	return nil
}

func (r *OTPRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "OTP.Update")
	result := r.db.WithContext(ctx).Model(&model.OTP{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update OTP").Uint("otp_id", id).Err(result.Error).Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *OTPRepository) IncrementAttempts(ctx context.Context, id uint) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "OTP.IncrementAttempts")
	return r.db.WithContext(ctx).Model(&model.OTP{}).Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

// DeleteByPhone removes every OTP row of phone.
func (r *OTPRepository) DeleteByPhone(ctx context.Context, phone string) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "OTP.DeleteByPhone")
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).Delete(&model.OTP{}).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to delete OTP rows").String("phone", phone).Err(err).Log()
		return err
	}
	return nil
}
