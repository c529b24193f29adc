package services

import (
	"context"

	"stocksphere/internal/models"
	"stocksphere/internal/portfolio"
)

// metricsService computes portfolio metrics over a user's stocks. Metrics
// are recomputed from a fresh listing on every call; there is no cached
// aggregate to invalidate.
type metricsService struct {
	stockService StockServicer
	engine       *portfolio.Engine
}

// NewMetricsService creates a new MetricsServicer.
func NewMetricsService(stockService StockServicer, engine *portfolio.Engine) MetricsServicer {
	return &metricsService{stockService: stockService, engine: engine}
}

// PortfolioMetrics lists the user's stocks and folds them into metrics.
// A listing failure aborts the computation; per-ticker quote failures do
// not (the engine falls back to stored prices).
func (s *metricsService) PortfolioMetrics(ctx context.Context, userID uint) (*portfolio.Metrics, error) {
	stocks, err := s.stockService.ListStocks(userID)
	if err != nil {
		return nil, err
	}

	metrics := s.engine.Compute(ctx, toHoldings(stocks))
	return &metrics, nil
}

// toHoldings converts stored stocks into engine holdings, preserving order.
func toHoldings(stocks []models.Stock) []portfolio.Holding {
	holdings := make([]portfolio.Holding, len(stocks))
	for i, stock := range stocks {
		holdings[i] = portfolio.Holding{
			ID:           stock.ID,
			Name:         stock.Name,
			Ticker:       stock.Ticker,
			Quantity:     stock.Quantity,
			BuyPrice:     stock.BuyPrice,
			CurrentPrice: stock.CurrentPrice,
		}
	}
	return holdings
}
