package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/norfolk-coast-barns/service-booking/internal/application"
	"github.com/norfolk-coast-barns/service-booking/internal/auth"
	"github.com/norfolk-coast-barns/service-booking/internal/response"
)

// PromoHandler handles HTTP requests for promo code operations.
type PromoHandler struct {
	service *application.PromoService
}

// NewPromoHandler creates a new PromoHandler.
func NewPromoHandler(service *application.PromoService) *PromoHandler {
	return &PromoHandler{service: service}
}

// RegisterRoutes registers all promo routes. Validation is public so the
// checkout page can probe codes before login.
func (h *PromoHandler) RegisterRoutes(r *gin.RouterGroup, _ *auth.JWTManager) {
	promos := r.Group("/promos")
	{
		promos.POST("/validate", h.ValidatePromo)
	}
}

// ValidatePromo handles POST /api/v1/promos/validate.
func (h *PromoHandler) ValidatePromo(c *gin.Context) {
	var req application.ValidatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ValidatePromo(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
