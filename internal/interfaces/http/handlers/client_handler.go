package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MRM-Billing/internal/domain/client"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
)

// ClientHandler exposes the client roster read-only.
type ClientHandler struct {
	clients client.Directory
	logger  logging.Logger
}

func NewClientHandler(clients client.Directory, logger logging.Logger) *ClientHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ClientHandler{clients: clients, logger: logger}
}

// List handles GET /clients. activeOnly=true hides inactive clients.
func (h *ClientHandler) List(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("activeOnly", "false"))
	cs, err := h.clients.List(c.Request.Context(), activeOnly)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	if cs == nil {
		cs = []*client.Client{}
	}
	c.JSON(http.StatusOK, gin.H{"data": cs, "count": len(cs)})
}

// Get handles GET /clients/:clientId.
func (h *ClientHandler) Get(c *gin.Context) {
	cl, err := h.clients.Get(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cl})
}

//Personal.AI order the ending
