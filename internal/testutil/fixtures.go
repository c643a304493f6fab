package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"spendtrack/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestTransaction inserts a transaction with a unique text, the default
// category and the given amount, created now.
func CreateTestTransaction(t *testing.T, db *gorm.DB, amount string) *models.Transaction {
	t.Helper()
	return CreateTestTransactionAt(t, db, amount, time.Now().UTC().Truncate(time.Microsecond))
}

// CreateTestTransactionAt inserts a transaction with an explicit created_at,
// for ordering tests.
func CreateTestTransactionAt(t *testing.T, db *gorm.DB, amount string, createdAt time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		Base:     models.Base{CreatedAt: createdAt},
		Text:     fmt.Sprintf("Test Transaction %d", nextID()),
		Category: models.DefaultCategory,
		Amount:   decimal.RequireFromString(amount),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CountTransactions returns the number of stored transactions.
func CountTransactions(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.Transaction{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count transactions: %v", err)
	}
	return count
}
