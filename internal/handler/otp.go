package handler

import (
	"net/http"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	"github.com/Payphone-Digital/customer-service/internal/service"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/gin-gonic/gin"
)

type OTPHandler struct {
	otps *service.OTPService
}

func NewOTPHandler(otps *service.OTPService) *OTPHandler {
	return &OTPHandler{otps: otps}
}

func (h *OTPHandler) Create(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "OTP.Create")

	var req dto.CreateOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, c, err)
		return
	}
	resp, err := h.otps.Create(ctx, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, constants.MsgOTPSent, resp)
}

func (h *OTPHandler) Validate(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "OTP.Validate")

	var req dto.ValidateOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, c, err)
		return
	}
	resp, err := h.otps.Validate(ctx, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgOTPValid, resp)
}

func (h *OTPHandler) Resend(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "OTP.Resend")

	var req dto.ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, c, err)
		return
	}
	resp, err := h.otps.Resend(ctx, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgOTPSent, resp)
}
