package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/devstore/sales-backend/internal/domain"
	"github.com/devstore/sales-backend/internal/logger"
	"github.com/devstore/sales-backend/internal/services"
)

type SaleHandler struct {
	log         *logger.Logger
	saleService services.SaleService
}

func NewSaleHandler(log *logger.Logger, saleService services.SaleService) *SaleHandler {
	return &SaleHandler{
		log:         log.With("handler", "SaleHandler"),
		saleService: saleService,
	}
}

type createSaleItemRequest struct {
	ProductID   string          `json:"product_id" binding:"required,max=100"`
	ProductName string          `json:"product_name" binding:"required,max=200"`
	Quantity    int             `json:"quantity" binding:"required,gt=0,lte=20"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type createSaleRequest struct {
	SaleNumber   string                  `json:"sale_number" binding:"required,max=50"`
	CustomerID   string                  `json:"customer_id" binding:"required,max=100"`
	CustomerName string                  `json:"customer_name" binding:"required,max=200"`
	BranchID     string                  `json:"branch_id" binding:"required,max=100"`
	BranchName   string                  `json:"branch_name" binding:"required,max=200"`
	Items        []createSaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

type updateSaleRequest struct {
	CustomerName string `json:"customer_name" binding:"required,max=200"`
	BranchName   string `json:"branch_name" binding:"required,max=200"`
}

type saleItemResponse struct {
	ID                 uuid.UUID       `json:"id"`
	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	IsCancelled        bool            `json:"is_cancelled"`
}

type saleResponse struct {
	ID           uuid.UUID          `json:"id"`
	SaleNumber   string             `json:"sale_number"`
	SaleDate     time.Time          `json:"sale_date"`
	CustomerID   string             `json:"customer_id"`
	CustomerName string             `json:"customer_name"`
	BranchID     string             `json:"branch_id"`
	BranchName   string             `json:"branch_name"`
	TotalAmount  decimal.Decimal    `json:"total_amount"`
	IsCancelled  bool               `json:"is_cancelled"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    *time.Time         `json:"updated_at,omitempty"`
	Items        []saleItemResponse `json:"items"`
}

type saleListResponse struct {
	CurrentPage int            `json:"current_page"`
	PageSize    int            `json:"page_size"`
	TotalCount  int64          `json:"total_count"`
	TotalPages  int            `json:"total_pages"`
	Data        []saleResponse `json:"data"`
}

func toSaleResponse(sale *domain.Sale) saleResponse {
	items := make([]saleItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, saleItemResponse{
			ID:                 item.ID,
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			DiscountPercentage: item.DiscountPercentage,
			DiscountAmount:     item.DiscountAmount,
			TotalAmount:        item.TotalAmount,
			IsCancelled:        item.IsCancelled,
		})
	}
	return saleResponse{
		ID:           sale.ID,
		SaleNumber:   sale.SaleNumber,
		SaleDate:     sale.SaleDate,
		CustomerID:   sale.CustomerID,
		CustomerName: sale.CustomerName,
		BranchID:     sale.BranchID,
		BranchName:   sale.BranchName,
		TotalAmount:  sale.TotalAmount,
		IsCancelled:  sale.IsCancelled,
		CreatedAt:    sale.CreatedAt,
		UpdatedAt:    sale.UpdatedAt,
		Items:        items,
	}
}

func toSaleResponses(sales []*domain.Sale) []saleResponse {
	out := make([]saleResponse, 0, len(sales))
	for _, sale := range sales {
		out = append(out, toSaleResponse(sale))
	}
	return out
}

func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	cmd := services.CreateSaleCommand{
		SaleNumber:   req.SaleNumber,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		BranchID:     req.BranchID,
		BranchName:   req.BranchName,
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, services.CreateSaleItemCommand{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), nil, cmd)
	if err != nil {
		h.log.Error("CreateSale failed", "error", err, "sale_number", req.SaleNumber)
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, toSaleResponse(sale))
}

func (h *SaleHandler) GetSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_sale_id", err)
		return
	}
	sale, err := h.saleService.GetSale(c.Request.Context(), nil, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, toSaleResponse(sale))
}

func (h *SaleHandler) GetSaleByNumber(c *gin.Context) {
	sale, err := h.saleService.GetSaleByNumber(c.Request.Context(), nil, c.Param("number"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, toSaleResponse(sale))
}

// ListSales serves the paginated list; customer_id/branch_id query params
// narrow the result to a single customer or branch instead.
func (h *SaleHandler) ListSales(c *gin.Context) {
	ctx := c.Request.Context()

	if customerID := c.Query("customer_id"); customerID != "" {
		sales, err := h.saleService.ListSalesByCustomer(ctx, nil, customerID)
		if err != nil {
			h.log.Error("ListSales by customer failed", "error", err, "customer_id", customerID)
			RespondDomainError(c, err)
			return
		}
		RespondOK(c, gin.H{"data": toSaleResponses(sales)})
		return
	}
	if branchID := c.Query("branch_id"); branchID != "" {
		sales, err := h.saleService.ListSalesByBranch(ctx, nil, branchID)
		if err != nil {
			h.log.Error("ListSales by branch failed", "error", err, "branch_id", branchID)
			RespondDomainError(c, err)
			return
		}
		RespondOK(c, gin.H{"data": toSaleResponses(sales)})
		return
	}

	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 10)
	result, err := h.saleService.ListSales(ctx, nil, page, size)
	if err != nil {
		h.log.Error("ListSales failed", "error", err)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, saleListResponse{
		CurrentPage: result.CurrentPage,
		PageSize:    result.PageSize,
		TotalCount:  result.TotalCount,
		TotalPages:  result.TotalPages,
		Data:        toSaleResponses(result.Data),
	})
}

func (h *SaleHandler) UpdateSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_sale_id", err)
		return
	}
	var req updateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	sale, err := h.saleService.UpdateSale(c.Request.Context(), nil, id, req.CustomerName, req.BranchName)
	if err != nil {
		h.log.Error("UpdateSale failed", "error", err, "sale_id", id)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, toSaleResponse(sale))
}

func (h *SaleHandler) CancelSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_sale_id", err)
		return
	}
	sale, err := h.saleService.CancelSale(c.Request.Context(), nil, id)
	if err != nil {
		h.log.Error("CancelSale failed", "error", err, "sale_id", id)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, toSaleResponse(sale))
}

func (h *SaleHandler) CancelSaleItem(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_sale_id", err)
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_item_id", err)
		return
	}
	sale, err := h.saleService.CancelSaleItem(c.Request.Context(), nil, saleID, itemID)
	if err != nil {
		h.log.Error("CancelSaleItem failed", "error", err, "sale_id", saleID, "item_id", itemID)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, toSaleResponse(sale))
}

func (h *SaleHandler) DeleteSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_sale_id", err)
		return
	}
	found, err := h.saleService.DeleteSale(c.Request.Context(), nil, id)
	if err != nil {
		h.log.Error("DeleteSale failed", "error", err, "sale_id", id)
		RespondDomainError(c, err)
		return
	}
	if !found {
		RespondError(c, http.StatusNotFound, "not_found", domain.NewError(domain.CodeNotFound, "SaleHandler.DeleteSale", "sale not found", nil))
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func queryInt(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
