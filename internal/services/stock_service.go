package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "stocksphere/internal/errors"
	"stocksphere/internal/models"
)

// stockService handles stock-related business logic.
type stockService struct {
	db *gorm.DB
}

// NewStockService creates a new StockServicer.
func NewStockService(db *gorm.DB) StockServicer {
	return &stockService{db: db}
}

// validateInput checks the holding invariants shared by create and update.
func validateInput(input StockInput) error {
	switch {
	case strings.TrimSpace(input.Name) == "":
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	case strings.TrimSpace(input.Ticker) == "":
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "ticker is required")
	case input.Quantity <= 0:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be greater than zero")
	case input.BuyPrice < 0:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "buy price cannot be negative")
	}
	return nil
}

// ListStocks returns all stocks belonging to the user, in insertion order.
// Metrics computations rely on this ordering for their first-seen tie rule.
func (s *stockService) ListStocks(userID uint) ([]models.Stock, error) {
	var stocks []models.Stock
	if err := s.db.Where("user_id = ?", userID).Order("id ASC").Find(&stocks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return stocks, nil
}

// CreateStock adds a new holding for the user.
func (s *stockService) CreateStock(userID uint, input StockInput) (*models.Stock, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	stock := &models.Stock{
		UserID:       userID,
		Name:         strings.TrimSpace(input.Name),
		Ticker:       strings.ToUpper(strings.TrimSpace(input.Ticker)),
		Quantity:     input.Quantity,
		BuyPrice:     input.BuyPrice,
		CurrentPrice: input.CurrentPrice,
	}

	if err := s.db.Create(stock).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return stock, nil
}

// UpdateStock fully replaces the holding's user-supplied fields.
func (s *stockService) UpdateStock(userID, stockID uint, input StockInput) (*models.Stock, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	stock, err := s.getOwnedStock(userID, stockID)
	if err != nil {
		return nil, err
	}

	stock.Name = strings.TrimSpace(input.Name)
	stock.Ticker = strings.ToUpper(strings.TrimSpace(input.Ticker))
	stock.Quantity = input.Quantity
	stock.BuyPrice = input.BuyPrice
	stock.CurrentPrice = input.CurrentPrice

	if err := s.db.Save(stock).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return stock, nil
}

// DeleteStock permanently removes the holding. There is no soft delete or
// recovery; a repeated delete of the same ID reports STOCK_NOT_FOUND.
func (s *stockService) DeleteStock(userID, stockID uint) error {
	stock, err := s.getOwnedStock(userID, stockID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(stock).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return nil
}

// getOwnedStock fetches a stock and verifies ownership. Stocks belonging to
// other users are reported as not found to avoid leaking their existence.
func (s *stockService) getOwnedStock(userID, stockID uint) (*models.Stock, error) {
	var stock models.Stock
	if err := s.db.First(&stock, stockID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStockNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if stock.UserID != userID {
		return nil, apperrors.ErrStockNotFound
	}

	return &stock, nil
}
