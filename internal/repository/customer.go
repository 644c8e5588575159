package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/model"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"gorm.io/gorm"
)

// CustomerFilter narrows List and Export queries.
type CustomerFilter struct {
	Search      string
	IsActive    *bool
	WithDeleted bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// CustomerSummary aggregates the report counters.
type CustomerSummary struct {
	Total         int64
	Active        int64
	Inactive      int64
	Deleted       int64
	EmailVerified int64
	PhoneVerified int64
	SSOLinked     int64
}

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uint) (*model.CustomerProfile, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.GetByID")
	return r.first(ctx, r.db.WithContext(ctx).Where("id = ?", id))
}

// GetByIDWithDeleted also returns soft-deleted customers.
func (r *CustomerRepository) GetByIDWithDeleted(ctx context.Context, id uint) (*model.CustomerProfile, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.GetByIDWithDeleted")
	return r.first(ctx, r.db.WithContext(ctx).Unscoped().Where("id = ?", id))
}

func (r *CustomerRepository) GetByPhone(ctx context.Context, phone string) (*model.CustomerProfile, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.GetByPhone")
	return r.first(ctx, r.db.WithContext(ctx).Where("phone = ?", phone))
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*model.CustomerProfile, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.GetByEmail")
	return r.first(ctx, r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)))
}

func (r *CustomerRepository) GetBySSOID(ctx context.Context, ssoID string) (*model.CustomerProfile, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.GetBySSOID")
	return r.first(ctx, r.db.WithContext(ctx).Where("sso_id = ?", ssoID))
}

func (r *CustomerRepository) first(ctx context.Context, query *gorm.DB) (*model.CustomerProfile, error) {
	start := time.Now()
	var customer model.CustomerProfile
	err := query.First(&customer).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.ErrorWithContext(ctx, "Failed to get customer").Duration(time.Since(start)).Err(err).Log()
		}
		return nil, err
	}
	logger.DebugWithContext(ctx, "Customer retrieved").Uint("customer_id", customer.ID).Duration(time.Since(start)).Log()
	return &customer, nil
}

// PhoneTaken reports whether another live customer uses phone.
// Soft-deleted rows still hold the unique index, so they count too.
func (r *CustomerRepository) PhoneTaken(ctx context.Context, phone string, excludeID uint) (bool, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.PhoneTaken")
	var count int64
	query := r.db.WithContext(ctx).Unscoped().Model(&model.CustomerProfile{}).Where("phone = ?", phone)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *CustomerRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.EmailTaken")
	var count int64
	query := r.db.WithContext(ctx).Unscoped().Model(&model.CustomerProfile{}).Where("LOWER(email) = ?", strings.ToLower(email))
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *CustomerRepository) filtered(ctx context.Context, f CustomerFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.CustomerProfile{})
	if f.WithDeleted {
		query = query.Unscoped()
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\' OR phone LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern,
		)
	}
	if f.IsActive != nil {
		query = query.Where("is_active = ?", *f.IsActive)
	}
	if f.CreatedFrom != nil {
		query = query.Where("created_at >= ?", f.CreatedFrom.UTC())
	}
	if f.CreatedTo != nil {
		query = query.Where("created_at < ?", f.CreatedTo.UTC())
	}
	return query
}

// List returns one page of customers and the filtered total.
func (r *CustomerRepository) List(ctx context.Context, f CustomerFilter) ([]model.CustomerProfile, int64, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.List")

	logger.DebugWithContext(ctx, "Listing customers").
		String("search", f.Search).
		Bool("with_deleted", f.WithDeleted).
		Int("limit", f.Limit).
		Int("offset", f.Offset).
		Log()

	start := time.Now()
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count customers").Err(err).Log()
		return nil, 0, err
	}

	var customers []model.CustomerProfile
	query := r.filtered(ctx, f).Order("id DESC")
	if f.Limit > 0 {
		query = query.Limit(f.Limit).Offset(f.Offset)
	}
	if err := query.Find(&customers).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to list customers").Duration(time.Since(start)).Err(err).Log()
		return nil, 0, err
	}

	logger.InfoWithContext(ctx, "Customers listed").
		Int64("total", total).
		Int("returned_count", len(customers)).
		Duration(time.Since(start)).
		Log()
	return customers, total, nil
}

func (r *CustomerRepository) Create(ctx context.Context, customer *model.CustomerProfile) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.Create")
	start := time.Now()
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to create customer").String("phone", customer.Phone).Duration(time.Since(start)).Err(err).Log()
		return err
	}
	logger.InfoWithContext(ctx, "Customer created").Uint("customer_id", customer.ID).Duration(time.Since(start)).Log()
	return nil
}

// Update applies column updates; nil values write NULL.
func (r *CustomerRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.Update")
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&model.CustomerProfile{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update customer").Uint("customer_id", id).Err(result.Error).Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CustomerRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.Update(ctx, id, map[string]any{"password": hash})
}

func (r *CustomerRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.Update(ctx, id, map[string]any{"last_login_at": at})
}

// UpdateTokenVersion increments token_version, invalidating issued tokens.
func (r *CustomerRepository) UpdateTokenVersion(ctx context.Context, id uint) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.UpdateTokenVersion")
	result := r.db.WithContext(ctx).Unscoped().Model(&model.CustomerProfile{}).
		Where("id = ?", id).
		UpdateColumn("token_version", gorm.Expr("token_version + 1"))
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to bump token version").Uint("customer_id", id).Err(result.Error).Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetSSOID links the customer to an identity provider id. It leaves
// updated_at untouched so the link does not re-trigger a sync.
func (r *CustomerRepository) SetSSOID(ctx context.Context, id uint, ssoID string) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.SetSSOID")
	err := r.db.WithContext(ctx).Unscoped().Model(&model.CustomerProfile{}).
		Where("id = ?", id).
		UpdateColumn("sso_id", ssoID).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to set sso id").Uint("customer_id", id).Err(err).Log()
	}
	return err
}

func (r *CustomerRepository) SoftDelete(ctx context.Context, id uint) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.SoftDelete")
	result := r.db.WithContext(ctx).Delete(&model.CustomerProfile{}, id)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete customer").Uint("customer_id", id).Err(result.Error).Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	logger.InfoWithContext(ctx, "Customer soft-deleted").Uint("customer_id", id).Log()
	return nil
}

func (r *CustomerRepository) Restore(ctx context.Context, id uint) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.Restore")
	result := r.db.WithContext(ctx).Unscoped().Model(&model.CustomerProfile{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Updates(map[string]any{"deleted_at": nil, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to restore customer").Uint("customer_id", id).Err(result.Error).Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	logger.InfoWithContext(ctx, "Customer restored").Uint("customer_id", id).Log()
	return nil
}

// syncScope selects rows changed after watermark or never linked, deleted rows included.
func (r *CustomerRepository) syncScope(ctx context.Context, watermark time.Time) *gorm.DB {
	// Stored timestamps are UTC; sqlite compares them as text.
	watermark = watermark.UTC()
	return r.db.WithContext(ctx).Unscoped().Model(&model.CustomerProfile{}).
		Where("updated_at > ? OR created_at > ? OR deleted_at > ? OR sso_id IS NULL", watermark, watermark, watermark)
}

func (r *CustomerRepository) CountForSync(ctx context.Context, watermark time.Time) (int64, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.CountForSync")
	var total int64
	if err := r.syncScope(ctx, watermark).Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count customers for sync").Err(err).Log()
		return 0, err
	}
	return total, nil
}

// FindForSync returns one page ordered by id.
func (r *CustomerRepository) FindForSync(ctx context.Context, watermark time.Time, offset, limit int) ([]model.CustomerProfile, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.FindForSync")
	var customers []model.CustomerProfile
	err := r.syncScope(ctx, watermark).Order("id ASC").Offset(offset).Limit(limit).Find(&customers).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch customers for sync").Int("offset", offset).Int("limit", limit).Err(err).Log()
		return nil, err
	}
	return customers, nil
}

// Summary counts customers created in [from, to); nil bounds are open.
func (r *CustomerRepository) Summary(ctx context.Context, from, to *time.Time) (*CustomerSummary, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.Summary")

	base := func() *gorm.DB {
		return r.filtered(ctx, CustomerFilter{WithDeleted: true, CreatedFrom: from, CreatedTo: to})
	}

	var s CustomerSummary
	counts := []struct {
		dest  *int64
		where string
	}{
		{&s.Total, "deleted_at IS NULL"},
		{&s.Active, "deleted_at IS NULL AND is_active = true"},
		{&s.Inactive, "deleted_at IS NULL AND is_active = false"},
		{&s.Deleted, "deleted_at IS NOT NULL"},
		{&s.EmailVerified, "deleted_at IS NULL AND email_verified_at IS NOT NULL"},
		{&s.PhoneVerified, "deleted_at IS NULL AND phone_verified_at IS NOT NULL"},
		{&s.SSOLinked, "deleted_at IS NULL AND sso_id IS NOT NULL"},
	}
	for _, c := range counts {
		if err := base().Where(c.where).Count(c.dest).Error; err != nil {
			logger.ErrorWithContext(ctx, "Failed to count report metric").String("where", c.where).Err(err).Log()
			return nil, err
		}
	}
	return &s, nil
}

// CreatedTimes returns created_at of live customers in [from, to) for bucketing.
func (r *CustomerRepository) CreatedTimes(ctx context.Context, from, to *time.Time) ([]time.Time, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Customer.CreatedTimes")
	var times []time.Time
	err := r.filtered(ctx, CustomerFilter{CreatedFrom: from, CreatedTo: to}).
		Order("created_at").
		Pluck("created_at", &times).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to load registration times").Err(err).Log()
	}
	return times, err
}
