package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/logger"
	"spendtrack/internal/models"
	"spendtrack/internal/uuid"
	"spendtrack/internal/validator"
)

// transactionService stores transactions through gorm. Every method issues
// at most one write statement, so per-row atomicity comes from the database.
type transactionService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db, now: nowUTC}
}

// nowUTC matches the microsecond precision of a Postgres timestamptz, so a
// created record compares equal to its re-read copy.
func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// CreateTransaction validates input and inserts a new transaction.
func (s *transactionService) CreateTransaction(ctx context.Context, input TransactionInput) (*models.Transaction, error) {
	text := strings.TrimSpace(input.Text)
	category := models.DefaultCategory
	if input.Category != nil {
		category = strings.TrimSpace(*input.Category)
	}

	fields := make(map[string]string)
	checkString(fields, "text", text, models.TextMaxLength)
	checkString(fields, "category", category, models.CategoryMaxLength)
	if input.Amount == nil {
		fields["amount"] = validator.MsgRequired
	} else {
		checkAmount(fields, *input.Amount)
	}
	if len(fields) > 0 {
		return nil, apperrors.WithFields(apperrors.ErrValidation, fields)
	}

	transaction := &models.Transaction{
		Base:     models.Base{CreatedAt: s.now()},
		Text:     text,
		Category: category,
		Amount:   input.Amount.Round(models.AmountDecimalPlaces),
	}

	if err := s.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Debugw("transaction created", "id", transaction.ID)
	return transaction, nil
}

// ListTransactions returns every transaction, newest first.
func (s *transactionService) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	transactions := make([]models.Transaction, 0)
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// GetTransactionByID retrieves a transaction by id.
func (s *transactionService) GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, apperrors.ErrTransactionNotFound
	}

	var transaction models.Transaction
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies the provided fields to an existing transaction.
func (s *transactionService) UpdateTransaction(ctx context.Context, id string, update TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return transaction, nil
	}

	fields := make(map[string]string)
	updates := make(map[string]interface{})
	if update.Text != nil {
		text := strings.TrimSpace(*update.Text)
		checkString(fields, "text", text, models.TextMaxLength)
		updates["text"] = text
	}
	if update.Category != nil {
		category := strings.TrimSpace(*update.Category)
		checkString(fields, "category", category, models.CategoryMaxLength)
		updates["category"] = category
	}
	if update.Amount != nil {
		checkAmount(fields, *update.Amount)
		updates["amount"] = update.Amount.Round(models.AmountDecimalPlaces)
	}
	if len(fields) > 0 {
		return nil, apperrors.WithFields(apperrors.ErrValidation, fields)
	}

	result := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", transaction.ID).
		Updates(updates)
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	// Deleted between the read and the write.
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrTransactionNotFound
	}

	if v, ok := updates["text"]; ok {
		transaction.Text = v.(string)
	}
	if v, ok := updates["category"]; ok {
		transaction.Category = v.(string)
	}
	if v, ok := updates["amount"]; ok {
		transaction.Amount = v.(decimal.Decimal)
	}

	logger.Get().Debugw("transaction updated", "id", transaction.ID)
	return transaction, nil
}

// DeleteTransaction permanently removes a transaction.
func (s *transactionService) DeleteTransaction(ctx context.Context, id string) error {
	id, ok := canonicalID(id)
	if !ok {
		return apperrors.ErrTransactionNotFound
	}

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Transaction{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	logger.Get().Debugw("transaction deleted", "id", id)
	return nil
}

func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed, true
}

func checkString(fields map[string]string, name, value string, maxLen int) {
	switch {
	case value == "":
		fields[name] = validator.MsgBlank
	case utf8.RuneCountInString(value) > maxLen:
		fields[name] = validator.MaxLengthMessage(maxLen)
	}
}

func checkAmount(fields map[string]string, amount decimal.Decimal) {
	if msg := validator.AmountProblem(amount); msg != "" {
		fields["amount"] = msg
	}
}
