package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/Payphone-Digital/customer-service/pkg/validation"
	"github.com/gin-gonic/gin"
)

func respondSuccess(c *gin.Context, status int, message string, data any) {
	c.JSON(status, constants.BuildSuccessResponse(message, data))
}

// respondError renders err as the error envelope. Domain errors carrying a
// property become a single errors[] entry.
func respondError(ctx context.Context, c *gin.Context, err error) {
	status := apperrors.ToHTTPStatus(err)
	var details []constants.ErrorDetail
	if d := apperrors.GetDomainError(err); d != nil && d.Property != "" {
		details = []constants.ErrorDetail{{Value: d.Value, Property: d.Property, Constraint: []string{d.Message}}}
	}

	entry := logger.WarnWithContext(ctx, "Request failed")
	if status >= http.StatusInternalServerError {
		entry = logger.ErrorWithContext(ctx, "Request failed")
	}
	entry.Int("http_status", status).Err(err).Log()

	c.JSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err), details))
}

// respondBindError maps a bind failure: validator errors list every failed
// constraint per property, anything else is malformed JSON.
func respondBindError(ctx context.Context, c *gin.Context, err error) {
	var fields validation.Errors
	if errors.As(validation.Translate(err), &fields) {
		details := make([]constants.ErrorDetail, 0, len(fields))
		for _, f := range fields {
			details = append(details, constants.ErrorDetail{Value: f.Value, Property: f.Property, Constraint: f.Constraints})
		}
		logger.WarnWithContext(ctx, "Request validation failed").Int("fields", len(details)).Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(http.StatusBadRequest, constants.MsgValidation, details))
		return
	}
	logger.WarnWithContext(ctx, "Malformed request body").Err(err).Log()
	c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(http.StatusBadRequest, constants.MsgInvalidJSON, nil))
}

// pathID parses a positive numeric path parameter.
func pathID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ErrInvalidParameter.WithField(name, raw)
	}
	return uint(id), nil
}

func customerID(c *gin.Context) uint {
	return c.GetUint(constants.GinKeyCustomerID)
}

func adminID(c *gin.Context) uint {
	return c.GetUint(constants.GinKeyAdminID)
}
