package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/norfolk-coast-barns/service-booking/internal/application"
	"github.com/norfolk-coast-barns/service-booking/internal/auth"
	"github.com/norfolk-coast-barns/service-booking/internal/middleware"
	"github.com/norfolk-coast-barns/service-booking/internal/response"
)

// AdminHandler handles admin HTTP requests for venue management.
type AdminHandler struct {
	bookingService      *application.BookingService
	promoService        *application.PromoService
	availabilityService *application.AvailabilityService
	catalogService      *application.CatalogService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	bookingService *application.BookingService,
	promoService *application.PromoService,
	availabilityService *application.AvailabilityService,
	catalogService *application.CatalogService,
) *AdminHandler {
	return &AdminHandler{
		bookingService:      bookingService,
		promoService:        promoService,
		availabilityService: availabilityService,
		catalogService:      catalogService,
	}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.POST("/bookings/:id/complete", h.CompleteBooking)
		admin.GET("/stats/bookings", h.BookingStats)

		admin.POST("/promos", h.CreatePromo)
		admin.GET("/promos", h.ListPromos)
		admin.POST("/promos/:id/deactivate", h.DeactivatePromo)

		admin.POST("/blackouts", h.CreateBlackout)
		admin.GET("/blackouts", h.ListBlackouts)
		admin.DELETE("/blackouts/:id", h.DeleteBlackout)

		admin.POST("/packages", h.CreatePackage)
		admin.POST("/packages/:id/deactivate", h.DeactivatePackage)
		admin.POST("/extras", h.CreateExtra)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	bookings, total, err := h.bookingService.ListBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// CompleteBooking handles POST /api/v1/admin/bookings/:id/complete.
func (h *AdminHandler) CompleteBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	result, err := h.bookingService.CompleteBooking(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookingService.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// CreatePromo handles POST /api/v1/admin/promos.
func (h *AdminHandler) CreatePromo(c *gin.Context) {
	var req application.CreatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.promoService.CreatePromo(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListPromos handles GET /api/v1/admin/promos.
func (h *AdminHandler) ListPromos(c *gin.Context) {
	promos, err := h.promoService.ListPromos(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, promos)
}

// DeactivatePromo handles POST /api/v1/admin/promos/:id/deactivate.
func (h *AdminHandler) DeactivatePromo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid promo id")
		return
	}

	result, err := h.promoService.DeactivatePromo(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateBlackout handles POST /api/v1/admin/blackouts.
func (h *AdminHandler) CreateBlackout(c *gin.Context) {
	var req application.CreateBlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.availabilityService.CreateBlackout(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBlackouts handles GET /api/v1/admin/blackouts.
func (h *AdminHandler) ListBlackouts(c *gin.Context) {
	blackouts, err := h.availabilityService.ListBlackouts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, blackouts)
}

// DeleteBlackout handles DELETE /api/v1/admin/blackouts/:id.
func (h *AdminHandler) DeleteBlackout(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid blackout id")
		return
	}

	if err := h.availabilityService.DeleteBlackout(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// CreatePackage handles POST /api/v1/admin/packages.
func (h *AdminHandler) CreatePackage(c *gin.Context) {
	var req application.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalogService.CreatePackage(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// DeactivatePackage handles POST /api/v1/admin/packages/:id/deactivate.
func (h *AdminHandler) DeactivatePackage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid package id")
		return
	}

	result, err := h.catalogService.DeactivatePackage(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateExtra handles POST /api/v1/admin/extras.
func (h *AdminHandler) CreateExtra(c *gin.Context) {
	var req application.CreateExtraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalogService.CreateExtra(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
