package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/norfolk-coast-barns/service-booking/internal/application"
	"github.com/norfolk-coast-barns/service-booking/internal/auth"
	"github.com/norfolk-coast-barns/service-booking/internal/middleware"
	"github.com/norfolk-coast-barns/service-booking/internal/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.GetMyBookings)
		bookings.GET("/ref/:reference", h.GetBookingByReference)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetMyBookings handles GET /api/v1/bookings.
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.GetCustomerBookings(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBookingByReference handles GET /api/v1/bookings/ref/:reference.
func (h *BookingHandler) GetBookingByReference(c *gin.Context) {
	result, err := h.service.GetBookingByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	var req application.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, err.Error())
		return
	}

	isAdmin := middleware.GetUserRole(c) == auth.RoleAdmin
	if err := h.service.CancelBooking(c.Request.Context(), userID, isAdmin, bookingID, req); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"cancelled": true})
}
