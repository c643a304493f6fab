package services

import (
	"context"

	"github.com/shopspring/decimal"

	"spendtrack/internal/models"
)

// TransactionInput holds the client-supplied fields for a new transaction.
// A nil Category stores models.DefaultCategory. A nil Amount is reported as
// a missing field.
type TransactionInput struct {
	Text     string
	Category *string
	Amount   *decimal.Decimal
}

// TransactionUpdate holds the writable fields of a partial update. Nil fields
// are left unchanged.
type TransactionUpdate struct {
	Text     *string
	Category *string
	Amount   *decimal.Decimal
}

// IsEmpty reports whether the update changes nothing.
func (u TransactionUpdate) IsEmpty() bool {
	return u.Text == nil && u.Category == nil && u.Amount == nil
}

// TransactionServicer defines the contract for transaction storage.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, input TransactionInput) (*models.Transaction, error)
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}
