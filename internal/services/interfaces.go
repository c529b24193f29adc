package services

import (
	"context"

	"stocksphere/internal/models"
	"stocksphere/internal/portfolio"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// StockInput holds the user-supplied fields of a stock holding.
type StockInput struct {
	Name         string
	Ticker       string
	Quantity     float64
	BuyPrice     float64
	CurrentPrice *float64
}

// StockServicer defines the contract for stock-related business logic.
type StockServicer interface {
	ListStocks(userID uint) ([]models.Stock, error)
	CreateStock(userID uint, input StockInput) (*models.Stock, error)
	UpdateStock(userID, stockID uint, input StockInput) (*models.Stock, error)
	DeleteStock(userID, stockID uint) error
}

// MetricsServicer defines the contract for portfolio metrics computation.
type MetricsServicer interface {
	PortfolioMetrics(ctx context.Context, userID uint) (*portfolio.Metrics, error)
}
