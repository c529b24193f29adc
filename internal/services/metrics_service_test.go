package services

import (
	"context"
	"testing"

	apperrors "stocksphere/internal/errors"
	"stocksphere/internal/models"
	"stocksphere/internal/portfolio"
	"stocksphere/internal/testutil"
)

// stubStockService lets tests control the holdings listing.
type stubStockService struct {
	StockServicer
	listFn func(userID uint) ([]models.Stock, error)
}

func (s *stubStockService) ListStocks(userID uint) ([]models.Stock, error) {
	return s.listFn(userID)
}

func TestPortfolioMetrics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	stockService := NewStockService(db)
	engine := portfolio.NewEngine(nil, portfolio.Config{})
	svc := NewMetricsService(stockService, engine)

	t.Run("empty portfolio", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)

		metrics, err := svc.PortfolioMetrics(context.Background(), user.ID)
		testutil.AssertNoError(t, err)

		if metrics.TotalValue != 0 || metrics.TotalStocks != 0 {
			t.Errorf("expected zero metrics, got %+v", metrics)
		}
		if metrics.BestPerformer != portfolio.NoPerformer || metrics.WorstPerformer != portfolio.NoPerformer {
			t.Errorf("expected %q performers, got %+v", portfolio.NoPerformer, metrics)
		}
	})

	t.Run("computes over stored holdings", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)

		_, err := stockService.CreateStock(user.ID, StockInput{
			Name: "Alpha", Ticker: "AAA", Quantity: 10, BuyPrice: 50,
			CurrentPrice: floatPtr(60),
		})
		testutil.AssertNoError(t, err)
		_, err = stockService.CreateStock(user.ID, StockInput{
			Name: "Beta", Ticker: "BBB", Quantity: 6, BuyPrice: 300,
			CurrentPrice: floatPtr(225),
		})
		testutil.AssertNoError(t, err)

		metrics, err := svc.PortfolioMetrics(context.Background(), user.ID)
		testutil.AssertNoError(t, err)

		if metrics.TotalValue != 1950 {
			t.Errorf("expected total value 1950, got %v", metrics.TotalValue)
		}
		if metrics.TotalStocks != 2 {
			t.Errorf("expected total stocks 2, got %d", metrics.TotalStocks)
		}
		if metrics.BestPerformer != "AAA (20.00%)" {
			t.Errorf("expected best performer %q, got %q", "AAA (20.00%)", metrics.BestPerformer)
		}
		if metrics.WorstPerformer != "BBB (-25.00%)" {
			t.Errorf("expected worst performer %q, got %q", "BBB (-25.00%)", metrics.WorstPerformer)
		}
	})

	t.Run("scoped to user", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		testutil.CreateTestStockWith(t, db, user.ID, "AAA", 10, 50)
		testutil.CreateTestStockWith(t, db, other.ID, "ZZZ", 100, 1000)

		metrics, err := svc.PortfolioMetrics(context.Background(), user.ID)
		testutil.AssertNoError(t, err)

		if metrics.TotalStocks != 1 {
			t.Errorf("expected 1 stock for user, got %d", metrics.TotalStocks)
		}
		if metrics.TotalValue != 500 {
			t.Errorf("expected total value 500, got %v", metrics.TotalValue)
		}
	})
}

func TestPortfolioMetricsListingFailureAborts(t *testing.T) {
	stub := &stubStockService{
		listFn: func(userID uint) ([]models.Stock, error) {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, context.DeadlineExceeded)
		},
	}
	engine := portfolio.NewEngine(nil, portfolio.Config{})
	svc := NewMetricsService(stub, engine)

	metrics, err := svc.PortfolioMetrics(context.Background(), 1)
	testutil.AssertAppError(t, err, "INTERNAL_ERROR")
	if metrics != nil {
		t.Errorf("expected no partial result, got %+v", metrics)
	}
}
