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

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) GetByName(ctx context.Context, name string) (*model.Setting, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Setting.GetByName")

	var setting model.Setting
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&setting).Error; err != nil {
		logger.DebugWithContext(ctx, "Setting lookup failed").String("name", name).Err(err).Log()
		return nil, err
	}
	return &setting, nil
}

// GetByNames returns the rows that exist; missing names are simply absent.
func (r *SettingRepository) GetByNames(ctx context.Context, names []string) ([]model.Setting, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Setting.GetByNames")

	var settings []model.Setting
	if len(names) == 0 {
		return settings, nil
	}
	err := r.db.WithContext(ctx).Where("name IN ?", names).Order("name").Find(&settings).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to load settings").Int("count", len(names)).Err(err).Log()
	}
	return settings, err
}

// FindByPattern returns settings whose name starts with prefix.
func (r *SettingRepository) FindByPattern(ctx context.Context, prefix string) ([]model.Setting, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Setting.FindByPattern")

	var settings []model.Setting
	query := r.db.WithContext(ctx).Order("name")
	if prefix != "" {
		query = query.Where("name LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%")
	}
	if err := query.Find(&settings).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to find settings by pattern").String("prefix", prefix).Err(err).Log()
		return nil, err
	}
	return settings, nil
}

func (r *SettingRepository) Upsert(ctx context.Context, name, value string) error {
	return r.UpsertMany(ctx, map[string]string{name: value})
}

// UpsertMany writes every pair in one statement.
func (r *SettingRepository) UpsertMany(ctx context.Context, values map[string]string) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "Setting.UpsertMany")
	if len(values) == 0 {
		return nil
	}

	start := time.Now()
	rows := make([]model.Setting, 0, len(values))
	for name, value := range values {
		rows = append(rows, model.Setting{Name: name, Value: value})
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to upsert settings").Int("count", len(rows)).Duration(time.Since(start)).Err(err).Log()
		return err
	}

	logger.DebugWithContext(ctx, "Settings upserted").Int("count", len(rows)).Duration(time.Since(start)).Log()
	return nil
}

// GetValues is GetByNames keyed by name.
func (r *SettingRepository) GetValues(ctx context.Context, names []string) (map[string]string, error) {
	settings, err := r.GetByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(settings))
	for _, s := range settings {
		values[s.Name] = s.Value
	}
	return values, nil
}

func (r *SettingRepository) SetValue(ctx context.Context, name, value string) error {
	return r.Upsert(ctx, name, value)
}
