package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinv "github.com/pharmacore/backend/internal/application/inventory"
	"github.com/pharmacore/backend/internal/domain/shared"
	"github.com/pharmacore/backend/internal/interfaces/http/dto"
)

// StockHandler serves stock movement and stock query endpoints
type StockHandler struct {
	BaseHandler
	service *appinv.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(service *appinv.StockService) *StockHandler {
	return &StockHandler{service: service}
}

// RegisterRoutes registers inventory routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inv := rg.Group("/inventory")
	{
		inv.POST("/sales", h.RecordSale)
		inv.POST("/purchases", h.RecordPurchase)
		inv.POST("/adjustments", h.RecordAdjustment)
		inv.POST("/transfers", h.RecordTransfer)
		inv.POST("/opening-balances", h.RecordOpeningBalance)
		inv.GET("/stock/:itemId", h.GetStock)
		inv.GET("/ledger/:itemId", h.GetLedger)
		inv.GET("/reorder-suggestions", h.ListReorderSuggestions)
		inv.POST("/reorder-suggestions/manual", h.AddManualReorder)
	}
}

type recordSaleBody struct {
	BranchID             string           `json:"branch_id" binding:"required,uuid"`
	ItemID               string           `json:"item_id" binding:"required,uuid"`
	UnitName             string           `json:"unit_name" binding:"required"`
	Quantity             decimal.Decimal  `json:"quantity" binding:"required"`
	Tier                 string           `json:"tier"`
	ReferenceType        string           `json:"reference_type"`
	ReferenceID          string           `json:"reference_id"`
	Notes                string           `json:"notes"`
	AllowBelowMargin     bool             `json:"allow_below_margin"`
	ReorderThresholdBase *decimal.Decimal `json:"reorder_threshold_base"`
}

// RecordSale handles POST /inventory/sales
func (h *StockHandler) RecordSale(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var body recordSaleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	resp, err := h.service.RecordSale(c.Request.Context(), appinv.RecordSaleRequest{
		CompanyID:            companyID,
		BranchID:             uuid.MustParse(body.BranchID),
		ItemID:               uuid.MustParse(body.ItemID),
		UnitName:             body.UnitName,
		Quantity:             body.Quantity,
		Tier:                 body.Tier,
		ReferenceType:        body.ReferenceType,
		ReferenceID:          body.ReferenceID,
		CreatedBy:            getUserID(c),
		Notes:                body.Notes,
		AllowBelowMargin:     body.AllowBelowMargin,
		ReorderThresholdBase: body.ReorderThresholdBase,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

type recordPurchaseBody struct {
	BranchID      string          `json:"branch_id" binding:"required,uuid"`
	ItemID        string          `json:"item_id" binding:"required,uuid"`
	UnitName      string          `json:"unit_name" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	UnitCostBase  decimal.Decimal `json:"unit_cost_base"`
	BatchNumber   string          `json:"batch_number"`
	ExpiryDate    *time.Time      `json:"expiry_date"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	Notes         string          `json:"notes"`
}

// RecordPurchase handles POST /inventory/purchases
func (h *StockHandler) RecordPurchase(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var body recordPurchaseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	resp, err := h.service.RecordPurchase(c.Request.Context(), appinv.RecordPurchaseRequest{
		CompanyID:     companyID,
		BranchID:      uuid.MustParse(body.BranchID),
		ItemID:        uuid.MustParse(body.ItemID),
		UnitName:      body.UnitName,
		Quantity:      body.Quantity,
		UnitCostBase:  body.UnitCostBase,
		BatchNumber:   body.BatchNumber,
		ExpiryDate:    body.ExpiryDate,
		ReferenceType: body.ReferenceType,
		ReferenceID:   body.ReferenceID,
		CreatedBy:     getUserID(c),
		Notes:         body.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

type recordAdjustmentBody struct {
	BranchID      string          `json:"branch_id" binding:"required,uuid"`
	ItemID        string          `json:"item_id" binding:"required,uuid"`
	UnitName      string          `json:"unit_name" binding:"required"`
	QuantityDelta decimal.Decimal `json:"quantity_delta" binding:"required"`
	BatchNumber   string          `json:"batch_number"`
	ExpiryDate    *time.Time      `json:"expiry_date"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	Notes         string          `json:"notes"`
}

// RecordAdjustment handles POST /inventory/adjustments
func (h *StockHandler) RecordAdjustment(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var body recordAdjustmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	resp, err := h.service.RecordAdjustment(c.Request.Context(), appinv.RecordAdjustmentRequest{
		CompanyID:     companyID,
		BranchID:      uuid.MustParse(body.BranchID),
		ItemID:        uuid.MustParse(body.ItemID),
		UnitName:      body.UnitName,
		QuantityDelta: body.QuantityDelta,
		BatchNumber:   body.BatchNumber,
		ExpiryDate:    body.ExpiryDate,
		ReferenceType: body.ReferenceType,
		ReferenceID:   body.ReferenceID,
		CreatedBy:     getUserID(c),
		Notes:         body.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

type recordTransferBody struct {
	SourceBranchID string          `json:"source_branch_id" binding:"required,uuid"`
	DestBranchID   string          `json:"dest_branch_id" binding:"required,uuid"`
	ItemID         string          `json:"item_id" binding:"required,uuid"`
	UnitName       string          `json:"unit_name" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	ReferenceType  string          `json:"reference_type"`
	ReferenceID    string          `json:"reference_id"`
	Notes          string          `json:"notes"`
}

// RecordTransfer handles POST /inventory/transfers
func (h *StockHandler) RecordTransfer(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var body recordTransferBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	resp, err := h.service.RecordTransfer(c.Request.Context(), appinv.RecordTransferRequest{
		CompanyID:     companyID,
		SourceBranch:  uuid.MustParse(body.SourceBranchID),
		DestBranch:    uuid.MustParse(body.DestBranchID),
		ItemID:        uuid.MustParse(body.ItemID),
		UnitName:      body.UnitName,
		Quantity:      body.Quantity,
		ReferenceType: body.ReferenceType,
		ReferenceID:   body.ReferenceID,
		CreatedBy:     getUserID(c),
		Notes:         body.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

type recordOpeningBalanceBody struct {
	BranchID     string          `json:"branch_id" binding:"required,uuid"`
	ItemID       string          `json:"item_id" binding:"required,uuid"`
	UnitName     string          `json:"unit_name" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	UnitCostBase decimal.Decimal `json:"unit_cost_base"`
	BatchNumber  string          `json:"batch_number"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
	Notes        string          `json:"notes"`
}

// RecordOpeningBalance handles POST /inventory/opening-balances
func (h *StockHandler) RecordOpeningBalance(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var body recordOpeningBalanceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	resp, err := h.service.RecordOpeningBalance(c.Request.Context(), appinv.RecordOpeningBalanceRequest{
		CompanyID:    companyID,
		BranchID:     uuid.MustParse(body.BranchID),
		ItemID:       uuid.MustParse(body.ItemID),
		UnitName:     body.UnitName,
		Quantity:     body.Quantity,
		UnitCostBase: body.UnitCostBase,
		BatchNumber:  body.BatchNumber,
		ExpiryDate:   body.ExpiryDate,
		CreatedBy:    getUserID(c),
		Notes:        body.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetStock handles GET /inventory/stock/:itemId?branch_id=...
func (h *StockHandler) GetStock(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "invalid item ID")
		return
	}
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		h.BadRequest(c, "invalid branch ID")
		return
	}

	resp, err := h.service.GetStock(c.Request.Context(), itemID, branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetLedger handles GET /inventory/ledger/:itemId?branch_id=...
func (h *StockHandler) GetLedger(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "invalid item ID")
		return
	}
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		h.BadRequest(c, "invalid branch ID")
		return
	}

	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entries, err := h.service.GetLedger(c.Request.Context(), itemID, branchID, shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// ListReorderSuggestions handles GET /inventory/reorder-suggestions?branch_id=...
func (h *StockHandler) ListReorderSuggestions(c *gin.Context) {
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		h.BadRequest(c, "invalid branch ID")
		return
	}

	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		Filters:  map[string]interface{}{},
	}
	if fulfilled := c.Query("fulfilled"); fulfilled != "" {
		filter.Filters["fulfilled"] = fulfilled == "true"
	}

	suggestions, err := h.service.ListReorderSuggestions(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, suggestions)
}

type manualReorderBody struct {
	BranchID      string          `json:"branch_id" binding:"required,uuid"`
	ItemID        string          `json:"item_id" binding:"required,uuid"`
	QuantityPacks decimal.Decimal `json:"quantity_packs" binding:"required"`
}

// AddManualReorder handles POST /inventory/reorder-suggestions/manual
func (h *StockHandler) AddManualReorder(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var body manualReorderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	resp, err := h.service.AddManualReorder(c.Request.Context(), appinv.ManualReorderRequest{
		CompanyID:     companyID,
		BranchID:      uuid.MustParse(body.BranchID),
		ItemID:        uuid.MustParse(body.ItemID),
		QuantityPacks: body.QuantityPacks,
		CreatedBy:     getUserID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
