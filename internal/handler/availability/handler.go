package availability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shearbook/booking-api/internal/service/availability"
)

type Handler struct {
	service *availability.Service
}

func NewHandler(service *availability.Service) *Handler {
	return &Handler{service: service}
}

// GetAvailability returns the open slots for a stylist on one day.
func (h *Handler) GetAvailability(c *gin.Context) {
	stylistID, err := uuid.Parse(c.Query("stylist_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid stylist_id"})
		return
	}

	date := c.Query("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "date must be YYYY-MM-DD"})
		return
	}

	duration, err := strconv.Atoi(c.Query("duration_minutes"))
	if err != nil || duration <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "duration_minutes must be a positive integer"})
		return
	}

	slots, err := h.service.GetSlots(c.Request.Context(), stylistID, date, duration)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"slots": slots}})
}
