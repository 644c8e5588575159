package constants

const (
	AppName    = "Customer Service"
	AppVersion = "1.0.0"
)

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Cache Key Prefixes
const (
	CacheKeyPrefix     = "customer:"
	CacheKeyCity       = CacheKeyPrefix + "city:"
	CacheKeyCitySearch = CacheKeyPrefix + "city_search:"
	CacheKeyOTPResend  = CacheKeyPrefix + "otp_resend:"
)

// Roles carried in admin tokens.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// Report export
const (
	ReportFilePrefix    = "customer-report-"
	ReportFileTimestamp = "20060102150405"
	ReportSheetName     = "Customers"
	ContentTypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)
