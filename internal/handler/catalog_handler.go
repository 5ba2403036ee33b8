package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/norfolk-coast-barns/service-booking/internal/application"
	"github.com/norfolk-coast-barns/service-booking/internal/auth"
	"github.com/norfolk-coast-barns/service-booking/internal/response"
)

// CatalogHandler handles HTTP requests for packages and extras.
type CatalogHandler struct {
	service *application.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *application.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers all catalog routes. Both are public.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup, _ *auth.JWTManager) {
	r.GET("/packages", h.ListPackages)
	r.GET("/extras", h.ListExtras)
}

// ListPackages handles GET /api/v1/packages.
func (h *CatalogHandler) ListPackages(c *gin.Context) {
	result, err := h.service.ListPackages(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListExtras handles GET /api/v1/extras.
func (h *CatalogHandler) ListExtras(c *gin.Context) {
	result, err := h.service.ListExtras(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
