package services

import (
	"context"
	"testing"
	"time"

	"fintrack/config"
	"fintrack/database"
	"fintrack/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fixedNow момент, относительно которого работают тесты сервисов
var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Report.TrendFormula = config.TrendFormulaLegacy
	cfg.Report.Timezone = "UTC"
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.ExpiresIn = 24
	cfg.JWT.VerificationExpiresIn = 72
	cfg.Security.ResetTokenTTL = time.Hour
	cfg.Security.ResetTokenKey = "test-reset-key"
	cfg.App.BaseURL = "http://localhost:8080/api/v1"
	cfg.Pagination.PerPage = 10
	return cfg
}

func seedUser(t *testing.T, store *database.MemoryStore, email string) models.User {
	t.Helper()
	user := models.User{Name: "Test User", Email: email, PasswordHash: "hash"}
	if err := store.CreateUser(context.Background(), &user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return user
}

func seedBudget(t *testing.T, store *database.MemoryStore, userID uuid.UUID, amount int64, end time.Time) models.Budget {
	t.Helper()
	budget := models.Budget{
		Name:      "Budget",
		Amount:    decimal.NewFromInt(amount),
		StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   end,
		UserID:    userID,
	}
	if err := store.CreateBudget(context.Background(), &budget); err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}
	return budget
}

func seedTransaction(t *testing.T, store *database.MemoryStore, budget models.Budget, kind models.TransactionType, amount string, category string, date time.Time) models.Transaction {
	t.Helper()
	ctx := context.Background()

	c, err := store.FindOrCreateCategory(ctx, budget.UserID, category)
	if err != nil {
		t.Fatalf("FindOrCreateCategory() error = %v", err)
	}
	tx := models.Transaction{
		Amount:          decimal.RequireFromString(amount),
		TransactionType: kind,
		TransactionDate: date,
		CategoryID:      c.ID,
		BudgetID:        budget.ID,
		UserID:          budget.UserID,
	}
	if err := store.CreateTransaction(ctx, &tx); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	return tx
}

// recordingMailer запоминает отправленные письма
type recordingMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *recordingMailer) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}
