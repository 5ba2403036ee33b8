package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/norfolk-coast-barns/service-booking/internal/application"
	"github.com/norfolk-coast-barns/service-booking/internal/auth"
	"github.com/norfolk-coast-barns/service-booking/internal/response"
)

// AvailabilityHandler handles HTTP requests for date availability.
type AvailabilityHandler struct {
	service *application.AvailabilityService
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(service *application.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// RegisterRoutes registers all availability routes. Both are public.
func (h *AvailabilityHandler) RegisterRoutes(r *gin.RouterGroup, _ *auth.JWTManager) {
	availability := r.Group("/availability")
	{
		availability.GET("", h.ListAvailableDates)
		availability.GET("/:date", h.CheckDate)
	}
}

// ListAvailableDates handles GET /api/v1/availability?start=...&end=...
func (h *AvailabilityHandler) ListAvailableDates(c *gin.Context) {
	start := c.Query("start")
	end := c.Query("end")
	if start == "" || end == "" {
		response.BadRequest(c, "start and end query parameters are required")
		return
	}

	result, err := h.service.ListAvailableDates(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CheckDate handles GET /api/v1/availability/:date.
func (h *AvailabilityHandler) CheckDate(c *gin.Context) {
	result, err := h.service.CheckDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
