package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Column limits for Transaction, mirrored by the SQL migrations.
const (
	TextMaxLength       = 200
	CategoryMaxLength   = 50
	AmountMaxDigits     = 10
	AmountDecimalPlaces = 2
)

// DefaultCategory is stored when a transaction is created without a category.
const DefaultCategory = "Other"

// Transaction represents a single financial transaction.
type Transaction struct {
	Base
	Text     string          `gorm:"type:varchar(200);not null" json:"text"`
	Category string          `gorm:"type:varchar(50);not null;default:Other" json:"category"`
	Amount   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
}

// String renders the transaction as "text: amount".
func (t Transaction) String() string {
	return fmt.Sprintf("%s: %s", t.Text, t.Amount.StringFixed(AmountDecimalPlaces))
}
