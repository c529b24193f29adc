package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "stocksphere/internal/errors"
	"stocksphere/internal/models"
	"stocksphere/internal/services"
)

// StockHandler handles stock CRUD and portfolio metrics requests.
type StockHandler struct {
	stockService   services.StockServicer
	metricsService services.MetricsServicer
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService services.StockServicer, metricsService services.MetricsServicer) *StockHandler {
	return &StockHandler{stockService: stockService, metricsService: metricsService}
}

// StockRequest represents the create/update request payload. Updates are
// full-replace: every field must be supplied.
type StockRequest struct {
	Name         string   `json:"name" binding:"required,max=255"`
	Ticker       string   `json:"ticker" binding:"required,ticker"`
	Quantity     float64  `json:"quantity" binding:"required,gt=0"`
	BuyPrice     float64  `json:"buyPrice" binding:"gte=0"`
	CurrentPrice *float64 `json:"currentPrice"`
}

func (r StockRequest) toInput() services.StockInput {
	return services.StockInput{
		Name:         r.Name,
		Ticker:       r.Ticker,
		Quantity:     r.Quantity,
		BuyPrice:     r.BuyPrice,
		CurrentPrice: r.CurrentPrice,
	}
}

// ListStocks returns all stocks belonging to the authenticated user
// @Summary     List stocks
// @Description Get all stock holdings for the authenticated user
// @Tags        stocks
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Stock "Stock holdings"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stocks [get]
func (h *StockHandler) ListStocks(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stocks, err := h.stockService.ListStocks(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// The wire contract is a bare array, matching the frontend's
	// expectations; an empty portfolio serializes as [].
	if stocks == nil {
		stocks = []models.Stock{}
	}
	c.JSON(http.StatusOK, stocks)
}

// CreateStock adds a new stock holding
// @Summary     Create stock
// @Description Add a new stock holding for the authenticated user
// @Tags        stocks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body StockRequest true "Stock data"
// @Success     201 {object} models.Stock "Created stock"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stocks [post]
func (h *StockHandler) CreateStock(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req StockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	stock, err := h.stockService.CreateStock(userID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, stock)
}

// UpdateStock fully replaces a stock holding
// @Summary     Update stock
// @Description Replace a stock holding's fields
// @Tags        stocks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Stock ID"
// @Param       request body StockRequest true "Stock data"
// @Success     200 {object} models.Stock "Updated stock"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Stock not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stocks/{id} [put]
func (h *StockHandler) UpdateStock(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stockID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req StockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	stock, err := h.stockService.UpdateStock(userID, stockID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stock)
}

// DeleteStock permanently removes a stock holding
// @Summary     Delete stock
// @Description Permanently remove a stock holding
// @Tags        stocks
// @Security    BearerAuth
// @Param       id path int true "Stock ID"
// @Success     204 "Stock deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Stock not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stocks/{id} [delete]
func (h *StockHandler) DeleteStock(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stockID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.stockService.DeleteStock(userID, stockID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetMetrics computes portfolio metrics for the authenticated user
// @Summary     Portfolio metrics
// @Description Compute aggregate portfolio metrics over the user's holdings
// @Tags        stocks
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} portfolio.Metrics "Portfolio metrics"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stocks/metrics [get]
func (h *StockHandler) GetMetrics(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	metrics, err := h.metricsService.PortfolioMetrics(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}
