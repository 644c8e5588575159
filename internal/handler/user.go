package handler

import (
	"net/http"
	"strconv"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/service"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

// UserHandler serves customer management to internal callers.
type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) List(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "User.List")

	params := service.UserListParams{
		Search:     c.Query(constants.QueryParamSearch),
		Pagination: constants.ParsePaginationParams(c),
	}
	if raw := c.Query(constants.QueryParamIsActive); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(ctx, c, apperrors.ErrValidation.WithField(constants.QueryParamIsActive, raw))
			return
		}
		params.IsActive = &active
	}
	if raw := c.Query(constants.QueryParamWithDeleted); raw != "" {
		withDeleted, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(ctx, c, apperrors.ErrValidation.WithField(constants.QueryParamWithDeleted, raw))
			return
		}
		params.WithDeleted = withDeleted
	}

	res, err := h.userService.List(ctx, params)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	logger.InfoWithContext(ctx, "Customers fetched successfully").
		Int("page", res.Page).
		Int64("total", res.Total).
		Int("page_total", res.PageTotal).
		Int("returned_count", len(res.Items)).
		Log()
	respondSuccess(c, http.StatusOK, constants.MsgSuccess,
		constants.BuildListResponse(res.Total, res.Page, res.PageTotal, res.Items))
}

func (h *UserHandler) Get(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "User.Get")
	id, err := pathID(c, "id")
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	resp, err := h.userService.Get(ctx, id)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgSuccess, resp)
}

func (h *UserHandler) UpdateStatus(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "User.UpdateStatus")
	id, err := pathID(c, "id")
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, c, err)
		return
	}
	resp, err := h.userService.UpdateStatus(ctx, id, *req.IsActive)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgUpdated, resp)
}

func (h *UserHandler) Delete(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "User.Delete")
	id, err := pathID(c, "id")
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	if err := h.userService.Delete(ctx, id); err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgDeleted, nil)
}

func (h *UserHandler) Restore(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "User.Restore")
	id, err := pathID(c, "id")
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	resp, err := h.userService.Restore(ctx, id)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgRestored, resp)
}
