package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "stocksphere/internal/errors"
	"stocksphere/internal/models"
	"stocksphere/internal/portfolio"
	"stocksphere/internal/services"
)

// --- mock services ---

type mockStockService struct {
	listStocksFn  func(userID uint) ([]models.Stock, error)
	createStockFn func(userID uint, input services.StockInput) (*models.Stock, error)
	updateStockFn func(userID, stockID uint, input services.StockInput) (*models.Stock, error)
	deleteStockFn func(userID, stockID uint) error
}

func (m *mockStockService) ListStocks(userID uint) ([]models.Stock, error) {
	if m.listStocksFn != nil {
		return m.listStocksFn(userID)
	}
	return nil, nil
}

func (m *mockStockService) CreateStock(userID uint, input services.StockInput) (*models.Stock, error) {
	if m.createStockFn != nil {
		return m.createStockFn(userID, input)
	}
	return &models.Stock{}, nil
}

func (m *mockStockService) UpdateStock(userID, stockID uint, input services.StockInput) (*models.Stock, error) {
	if m.updateStockFn != nil {
		return m.updateStockFn(userID, stockID, input)
	}
	return &models.Stock{}, nil
}

func (m *mockStockService) DeleteStock(userID, stockID uint) error {
	if m.deleteStockFn != nil {
		return m.deleteStockFn(userID, stockID)
	}
	return nil
}

type mockMetricsService struct {
	portfolioMetricsFn func(ctx context.Context, userID uint) (*portfolio.Metrics, error)
}

func (m *mockMetricsService) PortfolioMetrics(ctx context.Context, userID uint) (*portfolio.Metrics, error) {
	if m.portfolioMetricsFn != nil {
		return m.portfolioMetricsFn(ctx, userID)
	}
	return &portfolio.Metrics{}, nil
}

func setupStockRouter(handler *StockHandler) *gin.Engine {
	r := gin.New()
	stocks := r.Group("/stocks", injectUserID(1))
	stocks.GET("/metrics", handler.GetMetrics)
	stocks.GET("", handler.ListStocks)
	stocks.POST("", handler.CreateStock)
	stocks.PUT("/:id", handler.UpdateStock)
	stocks.DELETE("/:id", handler.DeleteStock)
	return r
}

// --- tests ---

func TestStockHandler_ListStocks(t *testing.T) {
	t.Run("returns bare array", func(t *testing.T) {
		price := 187.5
		stockSvc := &mockStockService{
			listStocksFn: func(userID uint) ([]models.Stock, error) {
				return []models.Stock{
					{Base: models.Base{ID: 1}, UserID: userID, Name: "Apple", Ticker: "AAPL", Quantity: 10, BuyPrice: 150, CurrentPrice: &price},
					{Base: models.Base{ID: 2}, UserID: userID, Name: "Tata Motors", Ticker: "TATAMOTORS", Quantity: 25, BuyPrice: 600},
				}, nil
			},
		}
		handler := NewStockHandler(stockSvc, &mockMetricsService{})
		r := setupStockRouter(handler)

		rec := doRequest(r, "GET", "/stocks", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var stocks []map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &stocks); err != nil {
			t.Fatalf("expected a bare JSON array: %v\nbody: %s", err, rec.Body.String())
		}
		if len(stocks) != 2 {
			t.Fatalf("expected 2 stocks, got %d", len(stocks))
		}
		if stocks[0]["ticker"] != "AAPL" || stocks[0]["currentPrice"] != 187.5 {
			t.Errorf("unexpected first stock: %v", stocks[0])
		}
		if _, present := stocks[1]["currentPrice"]; present {
			t.Errorf("expected currentPrice omitted when unknown, got %v", stocks[1]["currentPrice"])
		}
	})

	t.Run("empty portfolio serializes as []", func(t *testing.T) {
		stockSvc := &mockStockService{
			listStocksFn: func(uint) ([]models.Stock, error) {
				return nil, nil
			},
		}
		handler := NewStockHandler(stockSvc, &mockMetricsService{})
		r := setupStockRouter(handler)

		rec := doRequest(r, "GET", "/stocks", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if body := rec.Body.String(); body != "[]" {
			t.Errorf("expected empty array body, got %q", body)
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewStockHandler(&mockStockService{}, &mockMetricsService{})
		r := gin.New()
		r.GET("/stocks", handler.ListStocks)

		rec := doRequest(r, "GET", "/stocks", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestStockHandler_CreateStock(t *testing.T) {
	t.Run("returns 201 with created stock", func(t *testing.T) {
		stockSvc := &mockStockService{
			createStockFn: func(userID uint, input services.StockInput) (*models.Stock, error) {
				return &models.Stock{
					Base: models.Base{ID: 7}, UserID: userID,
					Name: input.Name, Ticker: input.Ticker,
					Quantity: input.Quantity, BuyPrice: input.BuyPrice,
				}, nil
			},
		}
		handler := NewStockHandler(stockSvc, &mockMetricsService{})
		r := setupStockRouter(handler)

		rec := doRequest(r, "POST", "/stocks",
			`{"name":"Apple","ticker":"AAPL","quantity":10,"buyPrice":150}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["id"] != float64(7) {
			t.Errorf("expected id 7, got %v", result["id"])
		}
		if result["ticker"] != "AAPL" {
			t.Errorf("expected ticker AAPL, got %v", result["ticker"])
		}
	})

	t.Run("returns 400 on invalid payloads", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"missing name", `{"ticker":"AAPL","quantity":10,"buyPrice":150}`},
			{"missing ticker", `{"name":"Apple","quantity":10,"buyPrice":150}`},
			{"malformed ticker", `{"name":"Apple","ticker":"aa pl!","quantity":10,"buyPrice":150}`},
			{"zero quantity", `{"name":"Apple","ticker":"AAPL","quantity":0,"buyPrice":150}`},
			{"negative quantity", `{"name":"Apple","ticker":"AAPL","quantity":-5,"buyPrice":150}`},
			{"negative buy price", `{"name":"Apple","ticker":"AAPL","quantity":10,"buyPrice":-1}`},
			{"not json", `quantity=10`},
		}

		handler := NewStockHandler(&mockStockService{}, &mockMetricsService{})
		r := setupStockRouter(handler)

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := doRequest(r, "POST", "/stocks", tt.body)
				if rec.Code != http.StatusBadRequest {
					t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
				}
				assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
			})
		}
	})
}

func TestStockHandler_UpdateStock(t *testing.T) {
	t.Run("returns 200 with updated stock", func(t *testing.T) {
		var gotStockID uint
		stockSvc := &mockStockService{
			updateStockFn: func(userID, stockID uint, input services.StockInput) (*models.Stock, error) {
				gotStockID = stockID
				return &models.Stock{
					Base: models.Base{ID: stockID}, UserID: userID,
					Name: input.Name, Ticker: input.Ticker,
					Quantity: input.Quantity, BuyPrice: input.BuyPrice,
				}, nil
			},
		}
		handler := NewStockHandler(stockSvc, &mockMetricsService{})
		r := setupStockRouter(handler)

		rec := doRequest(r, "PUT", "/stocks/7",
			`{"name":"Apple","ticker":"AAPL","quantity":20,"buyPrice":140}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotStockID != 7 {
			t.Errorf("expected stock ID 7, got %d", gotStockID)
		}
		result := parseJSON(t, rec)
		if result["quantity"] != float64(20) {
			t.Errorf("expected quantity 20, got %v", result["quantity"])
		}
	})

	t.Run("returns 400 on non-numeric id", func(t *testing.T) {
		handler := NewStockHandler(&mockStockService{}, &mockMetricsService{})
		r := setupStockRouter(handler)

		rec := doRequest(r, "PUT", "/stocks/abc",
			`{"name":"Apple","ticker":"AAPL","quantity":20,"buyPrice":140}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when stock not found", func(t *testing.T) {
		stockSvc := &mockStockService{
			updateStockFn: func(_, _ uint, _ services.StockInput) (*models.Stock, error) {
				return nil, apperrors.ErrStockNotFound
			},
		}
		handler := NewStockHandler(stockSvc, &mockMetricsService{})
		r := setupStockRouter(handler)

		rec := doRequest(r, "PUT", "/stocks/999",
			`{"name":"Apple","ticker":"AAPL","quantity":20,"buyPrice":140}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "STOCK_NOT_FOUND")
	})
}

func TestStockHandler_DeleteStock(t *testing.T) {
	t.Run("returns 204 on success", func(t *testing.T) {
		var gotStockID uint
		stockSvc := &mockStockService{
			deleteStockFn: func(_, stockID uint) error {
				gotStockID = stockID
				return nil
			},
		}
		handler := NewStockHandler(stockSvc, &mockMetricsService{})
		r := setupStockRouter(handler)

		rec := doRequest(r, "DELETE", "/stocks/7", "")

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotStockID != 7 {
			t.Errorf("expected stock ID 7, got %d", gotStockID)
		}
		if rec.Body.Len() != 0 {
			t.Errorf("expected empty body, got %q", rec.Body.String())
		}
	})

	t.Run("returns 404 when already gone", func(t *testing.T) {
		stockSvc := &mockStockService{
			deleteStockFn: func(_, _ uint) error {
				return apperrors.ErrStockNotFound
			},
		}
		handler := NewStockHandler(stockSvc, &mockMetricsService{})
		r := setupStockRouter(handler)

		rec := doRequest(r, "DELETE", "/stocks/999", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "STOCK_NOT_FOUND")
	})
}

func TestStockHandler_GetMetrics(t *testing.T) {
	t.Run("returns computed metrics", func(t *testing.T) {
		metricsSvc := &mockMetricsService{
			portfolioMetricsFn: func(_ context.Context, _ uint) (*portfolio.Metrics, error) {
				return &portfolio.Metrics{
					TotalValue:     1950,
					TotalStocks:    2,
					BestPerformer:  "AAA (20.00%)",
					WorstPerformer: "BBB (-25.00%)",
				}, nil
			},
		}
		handler := NewStockHandler(&mockStockService{}, metricsSvc)
		r := setupStockRouter(handler)

		rec := doRequest(r, "GET", "/stocks/metrics", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["totalValue"] != float64(1950) {
			t.Errorf("expected totalValue 1950, got %v", result["totalValue"])
		}
		if result["totalStocks"] != float64(2) {
			t.Errorf("expected totalStocks 2, got %v", result["totalStocks"])
		}
		if result["bestPerformer"] != "AAA (20.00%)" {
			t.Errorf("expected bestPerformer %q, got %v", "AAA (20.00%)", result["bestPerformer"])
		}
		if result["worstPerformer"] != "BBB (-25.00%)" {
			t.Errorf("expected worstPerformer %q, got %v", "BBB (-25.00%)", result["worstPerformer"])
		}
	})

	t.Run("metrics route is not shadowed by the id routes", func(t *testing.T) {
		metricsSvc := &mockMetricsService{
			portfolioMetricsFn: func(_ context.Context, _ uint) (*portfolio.Metrics, error) {
				return &portfolio.Metrics{BestPerformer: portfolio.NoPerformer, WorstPerformer: portfolio.NoPerformer}, nil
			},
		}
		handler := NewStockHandler(&mockStockService{}, metricsSvc)
		r := setupStockRouter(handler)

		rec := doRequest(r, "GET", "/stocks/metrics", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["bestPerformer"] != portfolio.NoPerformer {
			t.Errorf("expected %q, got %v", portfolio.NoPerformer, result["bestPerformer"])
		}
	})

	t.Run("propagates service errors", func(t *testing.T) {
		metricsSvc := &mockMetricsService{
			portfolioMetricsFn: func(_ context.Context, _ uint) (*portfolio.Metrics, error) {
				return nil, apperrors.ErrInternalServer
			},
		}
		handler := NewStockHandler(&mockStockService{}, metricsSvc)
		r := setupStockRouter(handler)

		rec := doRequest(r, "GET", "/stocks/metrics", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INTERNAL_ERROR")
	})
}
