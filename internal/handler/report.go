package handler

import (
	"fmt"
	"net/http"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/service"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reports *service.ReportService
}

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func reportRange(c *gin.Context) service.ReportRange {
	return service.ReportRange{
		StartDate: c.Query(constants.QueryParamStartDate),
		EndDate:   c.Query(constants.QueryParamEndDate),
	}
}

func (h *ReportHandler) CustomerSummary(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Report.CustomerSummary")
	resp, err := h.reports.CustomerSummary(ctx, reportRange(c))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondSuccess(c, http.StatusOK, constants.MsgSuccess, resp)
}

// ExportCustomers streams the workbook as an attachment.
func (h *ReportHandler) ExportCustomers(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Report.ExportCustomers")
	content, name, err := h.reports.ExportCustomers(ctx, reportRange(c))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.Header(constants.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, constants.ContentTypeXLSX, content)
}
