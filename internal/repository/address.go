package repository

import (
	"context"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/model"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AddressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

// ListByCustomer returns the customer's addresses, active first.
func (r *AddressRepository) ListByCustomer(ctx context.Context, customerID uint) ([]model.Address, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Address.ListByCustomer")
	var addresses []model.Address
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("is_active DESC, id ASC").
		Find(&addresses).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to list addresses").Uint("customer_id", customerID).Err(err).Log()
	}
	return addresses, err
}

// GetByID scopes the lookup to the owning customer.
func (r *AddressRepository) GetByID(ctx context.Context, customerID, id uint) (*model.Address, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Address.GetByID")
	var address model.Address
	err := r.db.WithContext(ctx).Where("id = ? AND customer_id = ?", id, customerID).First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// lockCustomer takes a row lock on the owning profile so address writes
// of one customer run one at a time. SQLite ignores the clause and
// serializes writers anyway.
func lockCustomer(tx *gorm.DB, customerID uint) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", customerID).
		Take(&model.CustomerProfile{}).Error
}

// CreateForCustomer stores address, making it active when it is the
// customer's first one. Count and insert share the customer lock.
func (r *AddressRepository) CreateForCustomer(ctx context.Context, address *model.Address) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "Address.CreateForCustomer")
	start := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCustomer(tx, address.CustomerID); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&model.Address{}).Where("customer_id = ?", address.CustomerID).Count(&count).Error; err != nil {
			return err
		}
		address.IsActive = count == 0
		return tx.Create(address).Error
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to create address").Uint("customer_id", address.CustomerID).Err(err).Log()
		return err
	}
	logger.InfoWithContext(ctx, "Address created").
		Uint("customer_id", address.CustomerID).
		Uint("address_id", address.ID).
		Bool("is_active", address.IsActive).
		Duration(time.Since(start)).
		Log()
	return nil
}

func (r *AddressRepository) Update(ctx context.Context, customerID, id uint, updates map[string]any) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "Address.Update")
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&model.Address{}).
		Where("id = ? AND customer_id = ?", id, customerID).
		Updates(updates)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update address").Uint("address_id", id).Err(result.Error).Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *AddressRepository) Delete(ctx context.Context, customerID, id uint) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "Address.Delete")
	result := r.db.WithContext(ctx).Where("id = ? AND customer_id = ?", id, customerID).Delete(&model.Address{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete address").Uint("address_id", id).Err(result.Error).Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ActivateExclusive deactivates every address of the customer and then
// activates id, in one transaction holding the customer lock. Other
// customers' rows are not touched.
func (r *AddressRepository) ActivateExclusive(ctx context.Context, customerID, id uint) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "Address.ActivateExclusive")
	start := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCustomer(tx, customerID); err != nil {
			return err
		}
		var target model.Address
		if err := tx.Where("id = ? AND customer_id = ?", id, customerID).First(&target).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Address{}).
			Where("customer_id = ? AND is_active = ?", customerID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&model.Address{}).
			Where("id = ? AND customer_id = ?", id, customerID).
			Update("is_active", true).Error
	})
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to activate address").
			Uint("customer_id", customerID).
			Uint("address_id", id).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Address activated").
		Uint("customer_id", customerID).
		Uint("address_id", id).
		Duration(time.Since(start)).
		Log()
	return nil
}
