package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appbilling "github.com/turtacn/MRM-Billing/internal/application/billing"
	"github.com/turtacn/MRM-Billing/internal/application/reporting"
	domainbilling "github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// ReportHandler serves summaries, client reports and CSV exports.
type ReportHandler struct {
	billing appbilling.Service
	exports reporting.ExportService
	logger  logging.Logger
}

func NewReportHandler(billing appbilling.Service, exports reporting.ExportService, logger logging.Logger) *ReportHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ReportHandler{billing: billing, exports: exports, logger: logger}
}

// Summary handles GET /billing/reports/summary. A blank month folds the whole
// financial year.
func (h *ReportHandler) Summary(c *gin.Context) {
	fy, err := financialYear(c)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	month := domainbilling.Month(strings.ToLower(strings.TrimSpace(c.Query("month"))))
	sum, err := h.billing.Summary(c.Request.Context(), month, fy)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sum})
}

// ClientReport handles GET /billing/reports/client/:clientId.
func (h *ReportHandler) ClientReport(c *gin.Context) {
	fy, err := financialYear(c)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	report, err := h.billing.ClientReport(c.Request.Context(), c.Param("clientId"), fy)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

// Download handles GET /billing/exports/:kind and streams the CSV.
func (h *ReportHandler) Download(c *gin.Context) {
	kind, month, fy, ok := h.exportParams(c)
	if !ok {
		return
	}
	exp, err := h.exports.Render(c.Request.Context(), kind, month, fy)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+exp.Filename+`"`)
	c.Data(http.StatusOK, reporting.ContentTypeCSV, exp.Data)
}

// Publish handles POST /billing/exports/:kind and archives the CSV.
func (h *ReportHandler) Publish(c *gin.Context) {
	kind, month, fy, ok := h.exportParams(c)
	if !ok {
		return
	}
	res, err := h.exports.Publish(c.Request.Context(), kind, month, fy)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": res})
}

func (h *ReportHandler) exportParams(c *gin.Context) (reporting.Kind, domainbilling.Month, int, bool) {
	if h.exports == nil {
		writeAppError(c, h.logger, errors.New(errors.ErrCodeServiceUnavailable, "exports are not configured"))
		return "", "", 0, false
	}
	kind, err := reporting.ParseKind(c.Param("kind"))
	if err != nil {
		writeAppError(c, h.logger, err)
		return "", "", 0, false
	}
	fy, err := financialYear(c)
	if err != nil {
		writeAppError(c, h.logger, err)
		return "", "", 0, false
	}
	month := domainbilling.Month(strings.ToLower(strings.TrimSpace(c.Query("month"))))
	return kind, month, fy, true
}

//Personal.AI order the ending
