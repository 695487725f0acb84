package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shearbook/booking-api/internal/model"
	"github.com/shearbook/booking-api/internal/service/booking"
)

type Handler struct {
	service *booking.Service
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{service: service}
}

// CreateDepositIntent quotes the requested services and opens a payment
// intent when a deposit is due.
func (h *Handler) CreateDepositIntent(c *gin.Context) {
	var req model.DepositIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	resp, err := h.service.DepositIntent(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": resp})
}
