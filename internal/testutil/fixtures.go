package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"stocksphere/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestStock creates a stock holding for the given user with a unique
// ticker and no current price.
func CreateTestStock(t *testing.T, db *gorm.DB, userID uint) *models.Stock {
	t.Helper()

	n := nextID()
	return CreateTestStockWith(t, db, userID, fmt.Sprintf("TST%d", n), 10, 100)
}

// CreateTestStockWith creates a stock holding with the given ticker, quantity
// and buy price.
func CreateTestStockWith(t *testing.T, db *gorm.DB, userID uint, ticker string, quantity, buyPrice float64) *models.Stock {
	t.Helper()

	stock := &models.Stock{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Stock %s", ticker),
		Ticker:   ticker,
		Quantity: quantity,
		BuyPrice: buyPrice,
	}
	if err := db.Create(stock).Error; err != nil {
		t.Fatalf("failed to create test stock: %v", err)
	}
	return stock
}
