package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domainbilling "github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeAppError maps err to its HTTP status. Server-side failures are logged
// and masked.
func writeAppError(c *gin.Context, log logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	_ = c.Error(err)

	if status >= http.StatusInternalServerError && status != http.StatusBadGateway && status != http.StatusServiceUnavailable {
		log.Error("request failed", logging.String("path", c.FullPath()), logging.Err(err))
		c.AbortWithStatusJSON(status, ErrorResponse{
			Code:    string(errors.ErrCodeInternal),
			Message: "internal server error",
		})
		return
	}

	resp := ErrorResponse{Code: string(code), Message: err.Error()}
	var ae *errors.AppError
	if errors.As(err, &ae) {
		resp.Message = ae.Message
		resp.Detail = ae.Detail
	}
	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, log logging.Logger, message string) {
	writeAppError(c, log, errors.NewValidationError(message))
}

// financialYear reads the financialYear query parameter. Blank means the year
// in settings (0); "2025" and "2025-26" are both accepted.
func financialYear(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("financialYear"))
	if raw == "" {
		return 0, nil
	}
	if i := strings.IndexByte(raw, '-'); i > 0 {
		raw = raw[:i]
	}
	fy, err := strconv.Atoi(raw)
	if err != nil || fy <= 0 {
		return 0, errors.Newf(errors.ErrCodeValidation, "financialYear %q is not a start year", c.Query("financialYear"))
	}
	return fy, nil
}

// entryKey builds the key addressed by /:clientId/:month?financialYear=.
// A zero FYStart is resolved by the caller.
func entryKey(c *gin.Context) (domainbilling.Key, error) {
	fy, err := financialYear(c)
	if err != nil {
		return domainbilling.Key{}, err
	}
	month := domainbilling.Month(strings.ToLower(strings.TrimSpace(c.Param("month"))))
	if !month.Valid() {
		return domainbilling.Key{}, errors.Newf(errors.ErrCodeInvalidMonth, "unrecognised month code %q", c.Param("month"))
	}
	clientID := strings.TrimSpace(c.Param("clientId"))
	if clientID == "" {
		return domainbilling.Key{}, errors.NewValidationError("client id is required")
	}
	return domainbilling.Key{ClientID: clientID, Month: month, FYStart: fy}, nil
}

//Personal.AI order the ending
