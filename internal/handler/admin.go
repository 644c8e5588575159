package handler

import (
	"net/http"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	"github.com/Payphone-Digital/customer-service/internal/service"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	admins *service.AdminService
}

func NewAdminHandler(admins *service.AdminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

func (h *AdminHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Admin.Login")
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, c, err)
		return
	}
	resp, err := h.admins.Login(ctx, &req)
	if err != nil {
		logger.LogAuth(req.Email, "admin_login", false, zap.String("client_ip", c.ClientIP()))
		respondError(ctx, c, err)
		return
	}
	logger.LogAuth(req.Email, "admin_login", true, zap.Uint("admin_id", resp.Admin.ID))
	respondSuccess(c, http.StatusOK, constants.MsgLoggedIn, resp)
}

func (h *AdminHandler) Logout(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Admin.Logout")
	if err := h.admins.Logout(ctx, adminID(c)); err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgLoggedOut, nil)
}

func (h *AdminHandler) Me(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Admin.Me")
	resp, err := h.admins.Me(ctx, adminID(c))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgSuccess, resp)
}
