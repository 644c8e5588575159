package constants

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Standard Response Field Keys
const (
	ResponseFieldTotal     = "total"
	ResponseFieldPage      = "page"
	ResponseFieldPageTotal = "page_total"
	ResponseFieldItems     = "items"
	ResponseFieldData      = "data"

	ResponseFieldSuccess    = "success"
	ResponseFieldMessage    = "message"
	ResponseFieldStatusCode = "statusCode"
	ResponseFieldErrors     = "errors"
)

// ErrorDetail is one entry of the error envelope's errors array.
type ErrorDetail struct {
	Value      any      `json:"value"`
	Property   string   `json:"property"`
	Constraint []string `json:"constraint"`
}

type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePaginationParams reads page and limit from the query string and clamps them.
func ParsePaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery(QueryParamPage, DefaultPage))
	limit, _ := strconv.Atoi(c.DefaultQuery(QueryParamLimit, DefaultLimit))

	if page < MinPage {
		page = MinPage
	}
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// PageTotal is ceil(total/limit).
func PageTotal(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func BuildListResponse(total int64, page int, pageTotal int, items any) map[string]any {
	return map[string]any{
		ResponseFieldTotal:     total,
		ResponseFieldPage:      page,
		ResponseFieldPageTotal: pageTotal,
		ResponseFieldItems:     items,
	}
}

// BuildSuccessResponse is the success envelope: {success, message, data}.
func BuildSuccessResponse(message string, data any) map[string]any {
	return map[string]any{
		ResponseFieldSuccess: true,
		ResponseFieldMessage: message,
		ResponseFieldData:    data,
	}
}

// BuildErrorResponse is the error envelope: {statusCode, message, errors}.
func BuildErrorResponse(statusCode int, message string, details []ErrorDetail) map[string]any {
	if details == nil {
		details = []ErrorDetail{}
	}
	return map[string]any{
		ResponseFieldStatusCode: statusCode,
		ResponseFieldMessage:    message,
		ResponseFieldErrors:     details,
	}
}
