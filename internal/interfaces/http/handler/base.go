package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pharmacore/backend/internal/domain/catalog"
	"github.com/pharmacore/backend/internal/domain/inventory"
	"github.com/pharmacore/backend/internal/domain/pricing"
	"github.com/pharmacore/backend/internal/domain/shared"
	"github.com/pharmacore/backend/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getCompanyID extracts the company ID from the request headers. Tenant
// authentication is an outer concern; the engine only needs the ID.
func getCompanyID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader("X-Company-ID")
	if raw == "" {
		return uuid.Nil, errors.New("company ID not found in request")
	}
	return uuid.Parse(raw)
}

// getUserID extracts the acting user ID from the request headers, if present
func getUserID(c *gin.Context) uuid.UUID {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts domain errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := getRequestID(c)

	var insufficientErr *inventory.InsufficientStockError
	if errors.As(err, &insufficientErr) {
		c.JSON(dto.GetHTTPStatus(dto.ErrCodeInsufficientStock),
			dto.NewErrorResponseWithRequestID(dto.ErrCodeInsufficientStock, insufficientErr.Error(), requestID))
		return
	}

	var unknownUnitErr *catalog.UnknownUnitError
	if errors.As(err, &unknownUnitErr) {
		c.JSON(dto.GetHTTPStatus(dto.ErrCodeUnknownUnit),
			dto.NewErrorResponseWithRequestID(dto.ErrCodeUnknownUnit, unknownUnitErr.Error(), requestID))
		return
	}

	var priceErr *pricing.PriceNotConfiguredError
	if errors.As(err, &priceErr) {
		c.JSON(dto.GetHTTPStatus(dto.ErrCodePriceNotConfigured),
			dto.NewErrorResponseWithRequestID(dto.ErrCodePriceNotConfigured, priceErr.Error(), requestID))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code),
			dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
		return
	}

	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "An unexpected error occurred", requestID))
}
