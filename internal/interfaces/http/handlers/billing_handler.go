package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appbilling "github.com/turtacn/MRM-Billing/internal/application/billing"
	domainbilling "github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
)

// BillingHandler serves the billing entry resources.
type BillingHandler struct {
	svc    appbilling.Service
	logger logging.Logger
}

func NewBillingHandler(svc appbilling.Service, logger logging.Logger) *BillingHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &BillingHandler{svc: svc, logger: logger}
}

// StatusRequest is the body of PUT /billing/:clientId/:month/status. Blank
// fields are left unchanged.
type StatusRequest struct {
	Status        string `json:"status"`
	InvoiceStatus string `json:"invoice_status"`
}

// CarryInResponse reports the balance a new entry would start from.
type CarryInResponse struct {
	ClientID            string              `json:"client_id"`
	Month               domainbilling.Month `json:"month"`
	FinancialYear       int                 `json:"financial_year"`
	PreviousOutstanding string              `json:"previous_outstanding"`
}

// List handles GET /billing.
func (h *BillingHandler) List(c *gin.Context) {
	fy, err := financialYear(c)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	filter := domainbilling.EntryFilter{
		Month:    domainbilling.Month(strings.ToLower(c.Query("month"))),
		ClientID: strings.TrimSpace(c.Query("clientId")),
		Status:   domainbilling.Status(strings.ToLower(c.Query("status"))),
		FYStart:  fy,
	}
	entries, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	if entries == nil {
		entries = []*domainbilling.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"data": entries, "count": len(entries)})
}

// Get handles GET /billing/:clientId/:month.
func (h *BillingHandler) Get(c *gin.Context) {
	key, err := h.resolveKey(c)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	e, err := h.svc.Get(c.Request.Context(), key)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": e})
}

// CarryIn handles GET /billing/:clientId/:month/carry-in.
func (h *BillingHandler) CarryIn(c *gin.Context) {
	key, err := h.resolveKey(c)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	prev, err := h.svc.CarryIn(c.Request.Context(), key)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, CarryInResponse{
		ClientID:            key.ClientID,
		Month:               key.Month,
		FinancialYear:       key.FYStart,
		PreviousOutstanding: prev.String(),
	})
}

// Save handles POST /billing. It creates or replaces the entry of the key.
func (h *BillingHandler) Save(c *gin.Context) {
	var in appbilling.SaveEntryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, "request body is not a valid billing entry")
		return
	}
	res, err := h.svc.Save(c.Request.Context(), &in)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": res.Entry, "replaced": res.Replaced})
}

// UpdateStatus handles PUT /billing/:clientId/:month/status.
func (h *BillingHandler) UpdateStatus(c *gin.Context) {
	key, err := h.resolveKey(c)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "request body is not a valid status update")
		return
	}

	var update domainbilling.StatusUpdate
	if s := strings.TrimSpace(req.Status); s != "" {
		st := domainbilling.Status(strings.ToLower(s))
		update.Status = &st
	}
	if s := strings.TrimSpace(req.InvoiceStatus); s != "" {
		st := domainbilling.InvoiceStatus(strings.ToLower(s))
		update.InvoiceStatus = &st
	}

	e, err := h.svc.UpdateStatus(c.Request.Context(), key, update)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": e})
}

// Delete handles DELETE /billing/:clientId/:month.
func (h *BillingHandler) Delete(c *gin.Context) {
	key, err := h.resolveKey(c)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), key); err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BillingHandler) resolveKey(c *gin.Context) (domainbilling.Key, error) {
	key, err := entryKey(c)
	if err != nil {
		return key, err
	}
	key.FYStart, err = resolveFY(c.Request.Context(), h.svc, key.FYStart)
	return key, err
}

func resolveFY(ctx context.Context, svc appbilling.Service, fyStart int) (int, error) {
	if fyStart != 0 {
		return fyStart, nil
	}
	fy, err := svc.CurrentFinancialYear(ctx)
	if err != nil {
		return 0, err
	}
	return fy.StartYear, nil
}

//Personal.AI order the ending
