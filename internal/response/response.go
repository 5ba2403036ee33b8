// Package response provides the JSON envelope helpers used by every
// handler, including the mapping from domain errors to HTTP status codes.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/norfolk-coast-barns/service-booking/internal/domain/apperror"
)

// Envelope is the uniform response body.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Pagination carries list metadata alongside the items.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

type paginatedEnvelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 envelope with pagination metadata.
func Paginated(c *gin.Context, data interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, paginatedEnvelope{
		Success:    true,
		Data:       data,
		Pagination: Pagination{Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 envelope.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Error: message})
}

// Unauthorized writes a 401 envelope.
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, Envelope{Error: message})
}

// Forbidden writes a 403 envelope.
func Forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, Envelope{Error: message})
}

// Error maps a domain error to the matching HTTP status. Unknown errors
// become 500s with the message passed through.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperror.ErrInvalidState):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
	}
	c.JSON(status, Envelope{Error: err.Error()})
}
