package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"spendtrack/internal/models"
	"spendtrack/internal/services"
)

// TransactionHandler serves the transaction collection and item endpoints.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// Amount accepts a JSON string ("3.50") or number (3.5).
type CreateTransactionRequest struct {
	Text     *string          `json:"text" binding:"required,notblank" example:"Coffee"`
	Category *string          `json:"category" binding:"omitempty,notblank" example:"Food"`
	Amount   *decimal.Decimal `json:"amount" binding:"required,amount" swaggertype:"string" example:"3.50"`
}

// UpdateTransactionRequest represents the request payload for updating a
// transaction. Omitted fields keep their stored value.
type UpdateTransactionRequest struct {
	Text     *string          `json:"text" binding:"omitempty,notblank" example:"Coffee"`
	Category *string          `json:"category" binding:"omitempty,notblank" example:"Food"`
	Amount   *decimal.Decimal `json:"amount" binding:"omitempty,amount" swaggertype:"string" example:"4.25"`
}

// TransactionResponse is the JSON representation of a transaction.
type TransactionResponse struct {
	ID        string    `json:"id" example:"0190f3a2-7b1c-7d2e-8f3a-1234567890ab"`
	Text      string    `json:"text" example:"Coffee"`
	Category  string    `json:"category" example:"Other"`
	Amount    string    `json:"amount" example:"3.50"`
	CreatedAt time.Time `json:"created_at" example:"2024-05-01T12:00:00.123456Z"`
}

func newTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:        t.ID,
		Text:      t.Text,
		Category:  t.Category,
		Amount:    t.Amount.StringFixed(models.AmountDecimalPlaces),
		CreatedAt: t.CreatedAt.UTC(),
	}
}

// ListTransactions handles the retrieval of all transactions
// @Summary     List transactions
// @Description Get every transaction, newest first
// @Tags        transactions
// @Produce     json
// @Success     200 {array}  TransactionResponse "List of transactions"
// @Failure     500 {object} middleware.ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	transactions, err := h.transactionService.ListTransactions(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := make([]TransactionResponse, 0, len(transactions))
	for i := range transactions {
		resp = append(resp, newTransactionResponse(&transactions[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Create a transaction. Category defaults to "Other".
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} TransactionResponse "Transaction created"
// @Failure     400 {object} middleware.ErrorResponse "Invalid input"
// @Failure     500 {object} middleware.ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), services.TransactionInput{
		Text:     *req.Text,
		Category: req.Category,
		Amount:   req.Amount,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, newTransactionResponse(transaction))
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Description Get a specific transaction by ID
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID (UUID)"
// @Success     200 {object} TransactionResponse "Transaction details"
// @Failure     404 {object} middleware.ErrorResponse "Transaction not found"
// @Failure     500 {object} middleware.ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, newTransactionResponse(transaction))
}

// UpdateTransaction handles updating an existing transaction
// @Summary     Update transaction
// @Description Update any subset of text, category and amount. PUT and PATCH behave the same.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path string                   true "Transaction ID (UUID)"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} TransactionResponse "Updated transaction"
// @Failure     400 {object} middleware.ErrorResponse "Invalid input"
// @Failure     404 {object} middleware.ErrorResponse "Transaction not found"
// @Failure     500 {object} middleware.ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
// @Router      /transactions/{id} [patch]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	id := c.Param("id")
	// An unknown id is reported before any problem with the body.
	if _, err := h.transactionService.GetTransactionByID(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	var req UpdateTransactionRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), id, services.TransactionUpdate{
		Text:     req.Text,
		Category: req.Category,
		Amount:   req.Amount,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, newTransactionResponse(transaction))
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete transaction
// @Description Permanently delete a transaction by ID
// @Tags        transactions
// @Param       id path string true "Transaction ID (UUID)"
// @Success     204 "Transaction deleted"
// @Failure     404 {object} middleware.ErrorResponse "Transaction not found"
// @Failure     500 {object} middleware.ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	if err := h.transactionService.DeleteTransaction(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
