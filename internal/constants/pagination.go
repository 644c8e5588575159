package constants

// Pagination Query Parameters
const (
	QueryParamPage        = "page"
	QueryParamLimit       = "limit"
	QueryParamSearch      = "search"
	QueryParamIsActive    = "is_active"
	QueryParamWithDeleted = "with_deleted"
	QueryParamStartDate   = "start_date"
	QueryParamEndDate     = "end_date"
)

// Default Pagination Values (as strings for query parsing)
const (
	DefaultPage  = "1"
	DefaultLimit = "10"
)

// Pagination Limits
const (
	MinPage  = 1
	MinLimit = 1
	MaxLimit = 100
)

// DateLayout is the layout of date query parameters and date_of_birth.
const DateLayout = "2006-01-02"
