package booking

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shearbook/booking-api/internal/model"
	"github.com/shearbook/booking-api/internal/service/booking"
)

type Handler struct {
	service *booking.Service
	loc     *time.Location
}

func NewHandler(service *booking.Service, loc *time.Location) *Handler {
	return &Handler{service: service, loc: loc}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	booked, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": booked})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid booking ID"})
		return
	}

	booked, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": booked})
}

// ListBookings returns a stylist's bookings for one day.
func (h *Handler) ListBookings(c *gin.Context) {
	stylistID, err := uuid.Parse(c.Query("stylist_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid stylist_id"})
		return
	}

	day, err := time.ParseInLocation("2006-01-02", c.Query("date"), h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "date must be YYYY-MM-DD"})
		return
	}

	bookings, err := h.service.ListForStylist(c.Request.Context(), stylistID, day, day.Add(24*time.Hour))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": bookings})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid booking ID"})
		return
	}

	var req model.CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
			return
		}
	}

	booked, refund, err := h.service.Cancel(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{
		"booking": booked,
		"refund":  refund,
	}})
}
