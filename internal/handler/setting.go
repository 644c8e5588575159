package handler

import (
	"net/http"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	"github.com/Payphone-Digital/customer-service/internal/service"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type SettingHandler struct {
	settings *service.SettingService
}

func NewSettingHandler(settings *service.SettingService) *SettingHandler {
	return &SettingHandler{settings: settings}
}

func (h *SettingHandler) List(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Setting.List")
	resp, err := h.settings.List(ctx, c.Query("prefix"))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgSuccess, resp)
}

func (h *SettingHandler) Get(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Setting.Get")
	resp, err := h.settings.Get(ctx, c.Param("name"))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgSuccess, resp)
}

func (h *SettingHandler) BulkUpdate(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Setting.BulkUpdate")
	var req dto.BulkUpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, c, err)
		return
	}
	resp, err := h.settings.BulkUpdate(ctx, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	logger.InfoWithContext(ctx, "Settings changed by admin").Uint("admin_id", adminID(c)).Int("count", len(resp)).Log()
	respondSuccess(c, http.StatusOK, constants.MsgUpdated, resp)
}

func (h *SettingHandler) SSOConfig(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Setting.SSOConfig")
	resp, err := h.settings.SSOConfig(ctx)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgSuccess, resp)
}

func (h *SettingHandler) UpdateSSOConfig(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Setting.UpdateSSOConfig")
	var req dto.UpdateSSOSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, c, err)
		return
	}
	resp, err := h.settings.UpdateSSOConfig(ctx, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgUpdated, resp)
}

// Public serves the contact and legal settings without authentication.
func (h *SettingHandler) Public(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Setting.Public")
	resp, err := h.settings.Public(ctx)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgSuccess, resp)
}
