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

type AddressHandler struct {
	addresses *service.AddressService
}

func NewAddressHandler(addresses *service.AddressService) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

func (h *AddressHandler) List(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Address.List")
	resp, err := h.addresses.List(ctx, customerID(c))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgSuccess, resp)
}

func (h *AddressHandler) Get(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Address.Get")
	id, err := pathID(c, "id")
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	resp, err := h.addresses.Get(ctx, customerID(c), id)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgSuccess, resp)
}

func (h *AddressHandler) Create(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Address.Create")

	var req dto.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, c, err)
		return
	}
	resp, err := h.addresses.Create(ctx, customerID(c), &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	logger.InfoWithContext(ctx, "Address created").Uint("address_id", resp.ID).Bool("is_active", resp.IsActive).Log()
	respondSuccess(c, http.StatusCreated, constants.MsgCreated, resp)
}

func (h *AddressHandler) Update(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Address.Update")
	id, err := pathID(c, "id")
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	var req dto.UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, c, err)
		return
	}
	resp, err := h.addresses.Update(ctx, customerID(c), id, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgUpdated, resp)
}

func (h *AddressHandler) Delete(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Address.Delete")
	id, err := pathID(c, "id")
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	if err := h.addresses.Delete(ctx, customerID(c), id); err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgDeleted, nil)
}

func (h *AddressHandler) Activate(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Address.Activate")
	id, err := pathID(c, "id")
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	resp, err := h.addresses.Activate(ctx, customerID(c), id)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgActivated, resp)
}

// SearchCities proxies the admin service city search.
func (h *AddressHandler) SearchCities(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Address.SearchCities")
	resp, err := h.addresses.SearchCities(ctx, c.Query(constants.QueryParamSearch))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgSuccess, resp)
}
