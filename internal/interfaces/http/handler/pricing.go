package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apppricing "github.com/pharmacore/backend/internal/application/pricing"
	"github.com/pharmacore/backend/internal/interfaces/http/dto"
)

// PricingHandler serves price quote endpoints
type PricingHandler struct {
	BaseHandler
	service *apppricing.QuoteService
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(service *apppricing.QuoteService) *PricingHandler {
	return &PricingHandler{service: service}
}

// RegisterRoutes registers pricing routes
func (h *PricingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pr := rg.Group("/pricing")
	{
		pr.POST("/quotes", h.Quote)
	}
}

type quoteBody struct {
	ItemID           string           `json:"item_id" binding:"required,uuid"`
	Tier             string           `json:"tier"`
	UnitName         string           `json:"unit_name"`
	Quantity         decimal.Decimal  `json:"quantity" binding:"required"`
	BatchUnitCost    *decimal.Decimal `json:"batch_unit_cost"`
	AllowBelowMargin bool             `json:"allow_below_margin"`
}

// Quote handles POST /pricing/quotes
func (h *PricingHandler) Quote(c *gin.Context) {
	var body quoteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	resp, err := h.service.Quote(c.Request.Context(), apppricing.QuoteRequest{
		ItemID:           uuid.MustParse(body.ItemID),
		Tier:             body.Tier,
		UnitName:         body.UnitName,
		Quantity:         body.Quantity,
		BatchUnitCost:    body.BatchUnitCost,
		AllowBelowMargin: body.AllowBelowMargin,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
