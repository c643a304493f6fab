package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/logger"
	"spendtrack/internal/middleware"
	"spendtrack/internal/models"
	"spendtrack/internal/services"
	"spendtrack/internal/validator"
)

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn  func(ctx context.Context, input services.TransactionInput) (*models.Transaction, error)
	listTransactionsFn   func(ctx context.Context) ([]models.Transaction, error)
	getTransactionByIDFn func(ctx context.Context, id string) (*models.Transaction, error)
	updateTransactionFn  func(ctx context.Context, id string, update services.TransactionUpdate) (*models.Transaction, error)
	deleteTransactionFn  func(ctx context.Context, id string) error
}

func (m *mockTransactionService) CreateTransaction(ctx context.Context, input services.TransactionInput) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(ctx, input)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(ctx)
	}
	return []models.Transaction{}, nil
}

func (m *mockTransactionService) GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(ctx, id)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(ctx context.Context, id string, update services.TransactionUpdate) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(ctx, id, update)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(ctx context.Context, id string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(ctx, id)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

// --- test helpers ---

const testID = "0190f3a2-7b1c-7d2e-8f3a-1234567890ab"

var testCreatedAt = time.Date(2024, 5, 1, 12, 0, 0, 123456000, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test", "error")
	validator.Register()
}

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/transactions", handler.ListTransactions)
	r.POST("/transactions", handler.CreateTransaction)
	r.GET("/transactions/:id", handler.GetTransactionByID)
	r.PUT("/transactions/:id", handler.UpdateTransaction)
	r.PATCH("/transactions/:id", handler.UpdateTransaction)
	r.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %v", code, errObj["code"])
	}
}

func assertFieldError(t *testing.T, result map[string]interface{}, field string) {
	t.Helper()
	assertErrorCode(t, result, "VALIDATION_ERROR")
	errObj := result["error"].(map[string]interface{})
	fields, ok := errObj["fields"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected fields in error, got: %v", errObj)
	}
	if _, ok := fields[field]; !ok {
		t.Errorf("expected field error for %q, got %v", field, fields)
	}
}

func sampleTransaction() *models.Transaction {
	return &models.Transaction{
		Base:     models.Base{ID: testID, CreatedAt: testCreatedAt},
		Text:     "Coffee",
		Category: "Other",
		Amount:   decimal.RequireFromString("3.5"),
	}
}

// --- tests ---

func TestTransactionHandler_ListTransactions(t *testing.T) {
	t.Run("returns 200 with array", func(t *testing.T) {
		svc := &mockTransactionService{
			listTransactionsFn: func(_ context.Context) ([]models.Transaction, error) {
				return []models.Transaction{*sampleTransaction()}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, http.MethodGet, "/transactions", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var list []map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
			t.Fatalf("expected JSON array: %v", err)
		}
		if len(list) != 1 || list[0]["amount"] != "3.50" {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("returns empty array not null", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, http.MethodGet, "/transactions", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Errorf("expected [], got %s", rec.Body.String())
		}
	})

	t.Run("returns 500 on storage failure", func(t *testing.T) {
		svc := &mockTransactionService{
			listTransactionsFn: func(_ context.Context) ([]models.Transaction, error) {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("connection lost"))
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, http.MethodGet, "/transactions", "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "connection lost") {
			t.Error("internal error detail leaked to client")
		}
	})
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got services.TransactionInput
		svc := &mockTransactionService{
			createTransactionFn: func(_ context.Context, input services.TransactionInput) (*models.Transaction, error) {
				got = input
				tx := sampleTransaction()
				tx.Amount = *input.Amount
				return tx, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, http.MethodPost, "/transactions", `{"text":"Coffee","amount":"3.50"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		if got.Text != "Coffee" || got.Category != nil {
			t.Errorf("unexpected service input: %+v", got)
		}
		result := parseJSON(t, rec)
		if result["id"] != testID || result["category"] != "Other" || result["amount"] != "3.50" {
			t.Errorf("unexpected body: %v", result)
		}
		if result["created_at"] != "2024-05-01T12:00:00.123456Z" {
			t.Errorf("unexpected created_at: %v", result["created_at"])
		}
	})

	t.Run("accepts numeric amount", func(t *testing.T) {
		var got services.TransactionInput
		svc := &mockTransactionService{
			createTransactionFn: func(_ context.Context, input services.TransactionInput) (*models.Transaction, error) {
				got = input
				return sampleTransaction(), nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, http.MethodPost, "/transactions", `{"text":"Lunch","category":"Food","amount":12.5}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Amount == nil || !got.Amount.Equal(decimal.RequireFromString("12.5")) {
			t.Errorf("unexpected amount %v", got.Amount)
		}
		if got.Category == nil || *got.Category != "Food" {
			t.Errorf("unexpected category %v", got.Category)
		}
	})

	badBodies := []struct {
		name  string
		body  string
		field string
	}{
		{"missing text", `{"amount":"1.00"}`, "text"},
		{"blank text", `{"text":"  ","amount":"1.00"}`, "text"},
		{"missing amount", `{"text":"Coffee"}`, "amount"},
		{"null amount", `{"text":"Coffee","amount":null}`, "amount"},
		{"non-numeric amount", `{"text":"Coffee","amount":"abc"}`, "amount"},
		{"too many decimals", `{"text":"Coffee","amount":"1.234"}`, "amount"},
		{"blank category", `{"text":"Coffee","category":"","amount":"1"}`, "category"},
		{"wrong text type", `{"text":5,"amount":"1"}`, "text"},
		{"empty body", ``, "text"},
	}
	for _, tt := range badBodies {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			called := false
			svc := &mockTransactionService{
				createTransactionFn: func(_ context.Context, _ services.TransactionInput) (*models.Transaction, error) {
					called = true
					return sampleTransaction(), nil
				},
			}
			r := setupTransactionRouter(NewTransactionHandler(svc))

			rec := doRequest(r, http.MethodPost, "/transactions", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			assertFieldError(t, parseJSON(t, rec), tt.field)
			if called {
				t.Error("service should not be called for invalid body")
			}
		})
	}

	t.Run("returns 400 on malformed JSON", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, http.MethodPost, "/transactions", `{"text":`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("passes through service validation errors", func(t *testing.T) {
		svc := &mockTransactionService{
			createTransactionFn: func(_ context.Context, _ services.TransactionInput) (*models.Transaction, error) {
				return nil, apperrors.WithFields(apperrors.ErrValidation, map[string]string{"text": "Ensure this field has no more than 200 characters."})
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, http.MethodPost, "/transactions", `{"text":"long","amount":"1"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertFieldError(t, parseJSON(t, rec), "text")
	})
}

func TestTransactionHandler_GetTransactionByID(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var gotID string
		svc := &mockTransactionService{
			getTransactionByIDFn: func(_ context.Context, id string) (*models.Transaction, error) {
				gotID = id
				return sampleTransaction(), nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, http.MethodGet, "/transactions/"+testID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotID != testID {
			t.Errorf("expected id %s passed to service, got %s", testID, gotID)
		}
		if parseJSON(t, rec)["text"] != "Coffee" {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockTransactionService{
			getTransactionByIDFn: func(_ context.Context, _ string) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, http.MethodGet, "/transactions/"+testID, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})
}

func TestTransactionHandler_UpdateTransaction(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		t.Run(method+" returns 200 with partial body", func(t *testing.T) {
			var got services.TransactionUpdate
			svc := &mockTransactionService{
				updateTransactionFn: func(_ context.Context, _ string, update services.TransactionUpdate) (*models.Transaction, error) {
					got = update
					tx := sampleTransaction()
					tx.Amount = *update.Amount
					return tx, nil
				},
			}
			r := setupTransactionRouter(NewTransactionHandler(svc))

			rec := doRequest(r, method, "/transactions/"+testID, `{"amount":"7.25"}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if got.Text != nil || got.Category != nil {
				t.Errorf("omitted fields should be nil: %+v", got)
			}
			if parseJSON(t, rec)["amount"] != "7.25" {
				t.Errorf("unexpected body: %s", rec.Body.String())
			}
		})
	}

	t.Run("ignores read-only fields", func(t *testing.T) {
		var gotID string
		svc := &mockTransactionService{
			updateTransactionFn: func(_ context.Context, id string, update services.TransactionUpdate) (*models.Transaction, error) {
				gotID = id
				if !update.IsEmpty() {
					t.Errorf("expected empty update, got %+v", update)
				}
				return sampleTransaction(), nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, http.MethodPatch, "/transactions/"+testID,
			`{"id":"00000000-0000-0000-0000-000000000000","created_at":"2000-01-01T00:00:00Z"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotID != testID {
			t.Errorf("path id should win, got %s", gotID)
		}
	})

	t.Run("accepts empty body", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, http.MethodPatch, "/transactions/"+testID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 on invalid field", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, http.MethodPut, "/transactions/"+testID, `{"amount":"123456789.00"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertFieldError(t, parseJSON(t, rec), "amount")
	})

	t.Run("returns 404 for unknown id before reading the body", func(t *testing.T) {
		svc := &mockTransactionService{
			getTransactionByIDFn: func(_ context.Context, _ string) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
			updateTransactionFn: func(_ context.Context, _ string, _ services.TransactionUpdate) (*models.Transaction, error) {
				t.Error("update should not be called for an unknown id")
				return nil, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		for _, body := range []string{`{"text":""}`, `{"amount":"abc"}`, `[1,2]`} {
			rec := doRequest(r, http.MethodPatch, "/transactions/"+testID, body)
			if rec.Code != http.StatusNotFound {
				t.Errorf("body %s: expected 404, got %d: %s", body, rec.Code, rec.Body.String())
			}
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockTransactionService{
			updateTransactionFn: func(_ context.Context, _ string, _ services.TransactionUpdate) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, http.MethodPatch, "/transactions/"+testID, `{"text":"x"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("returns 204 on success", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, http.MethodDelete, "/transactions/"+testID, "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if rec.Body.Len() != 0 {
			t.Errorf("expected empty body, got %s", rec.Body.String())
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockTransactionService{
			deleteTransactionFn: func(_ context.Context, _ string) error {
				return apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, http.MethodDelete, "/transactions/"+testID, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})
}
