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

type CustomerHandler struct {
	customers *service.CustomerService
}

func NewCustomerHandler(customers *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

func (h *CustomerHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Customer.Register")

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, c, err)
		return
	}

	resp, err := h.customers.Register(ctx, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	logger.InfoWithContext(ctx, "Customer registered").Uint("customer_id", resp.Customer.ID).Log()
	respondSuccess(c, http.StatusCreated, constants.MsgCreated, resp)
}

func (h *CustomerHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Customer.Login")

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, c, err)
		return
	}
	resp, err := h.customers.Login(ctx, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgLoggedIn, resp)
}

func (h *CustomerHandler) Refresh(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Customer.Refresh")

	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, c, err)
		return
	}
	resp, err := h.customers.Refresh(ctx, req.RefreshToken)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgSuccess, resp)
}

func (h *CustomerHandler) Logout(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Customer.Logout")
	if err := h.customers.Logout(ctx, customerID(c)); err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgLoggedOut, nil)
}

func (h *CustomerHandler) GetProfile(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Customer.GetProfile")
	resp, err := h.customers.GetProfile(ctx, customerID(c))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgSuccess, resp)
}

func (h *CustomerHandler) UpdateProfile(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Customer.UpdateProfile")

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, c, err)
		return
	}
	resp, err := h.customers.UpdateProfile(ctx, customerID(c), &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgUpdated, resp)
}

func (h *CustomerHandler) UpdatePassword(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Customer.UpdatePassword")

	var req dto.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, c, err)
		return
	}
	if err := h.customers.UpdatePassword(ctx, customerID(c), &req); err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgUpdated, nil)
}

func (h *CustomerHandler) DeleteProfile(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Customer.DeleteProfile")
	if err := h.customers.DeleteProfile(ctx, customerID(c)); err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgDeleted, nil)
}

func (h *CustomerHandler) CheckAvailability(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Customer.CheckAvailability")

	var req dto.CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, c, err)
		return
	}
	resp, err := h.customers.CheckAvailability(ctx, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgSuccess, resp)
}
