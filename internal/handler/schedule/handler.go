package schedule

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shearbook/booking-api/internal/model"
	"github.com/shearbook/booking-api/internal/service/catalog"
)

type Handler struct {
	service *catalog.Service
}

func NewHandler(service *catalog.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) UpsertWeeklySchedule(c *gin.Context) {
	stylistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid stylist ID"})
		return
	}

	var req model.UpsertWeeklyScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	rule, err := h.service.UpsertWeeklySchedule(c.Request.Context(), stylistID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": rule})
}

func (h *Handler) ListWeeklySchedules(c *gin.Context) {
	stylistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid stylist ID"})
		return
	}

	rules, err := h.service.ListWeeklySchedules(c.Request.Context(), stylistID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": rules})
}

// UpsertScheduleOverride replaces the weekly rule for one calendar date.
func (h *Handler) UpsertScheduleOverride(c *gin.Context) {
	stylistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid stylist ID"})
		return
	}

	var req model.UpsertScheduleOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	override, err := h.service.UpsertScheduleOverride(c.Request.Context(), stylistID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": override})
}
