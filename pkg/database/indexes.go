package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// postgresIndexes are partial indexes gorm tags cannot express.
var postgresIndexes = []string{
	// SSO sync page query: watermark filter plus unlinked rows.
	"CREATE INDEX IF NOT EXISTS idx_customer_profiles_sso_unlinked ON customer_profiles(id) WHERE sso_id IS NULL;",
	"CREATE INDEX IF NOT EXISTS idx_customer_profiles_deleted_at_not_null ON customer_profiles(deleted_at) WHERE deleted_at IS NOT NULL;",

	// At most one live active address per customer.
	"DROP INDEX IF EXISTS idx_customer_addresses_active;",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_customer_addresses_one_active ON customer_addresses(customer_id) WHERE is_active = true AND deleted_at IS NULL;",

	// Live OTP lookup.
	"CREATE INDEX IF NOT EXISTS idx_customer_otps_phone_live ON customer_otps(phone, expires_at) WHERE validated = false;",

	// Case-insensitive login by email.
	"CREATE INDEX IF NOT EXISTS idx_customer_profiles_lower_email ON customer_profiles(lower(email)) WHERE email IS NOT NULL;",
}

// CreateIndexes creates the extra indexes. It is a no-op on non-postgres
// dialects and logs, rather than fails, on individual index errors.
func CreateIndexes(db *gorm.DB, logger *zap.Logger) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, indexSQL := range postgresIndexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			logger.Warn("Failed to create index", zap.String("sql", indexSQL), zap.Error(err))
		}
	}

	logger.Info("Indexes ensured", zap.Int("count", len(postgresIndexes)))
	return nil
}
