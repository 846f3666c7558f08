package services

import (
	"context"
	"time"

	"fintrack/models"

	"github.com/google/uuid"
)

// UserStore доступ к пользователям
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	ListVerifiedUsers(ctx context.Context) ([]models.User, error)
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// BudgetStore доступ к бюджетам
type BudgetStore interface {
	CreateBudget(ctx context.Context, budget *models.Budget) error
	// FindBudget ищет бюджет владельца; чужой бюджет неотличим от несуществующего
	FindBudget(ctx context.Context, budgetID, userID uuid.UUID) (*models.Budget, error)
	ListBudgets(ctx context.Context, userID uuid.UUID) ([]models.Budget, error)
	UpdateBudget(ctx context.Context, budget *models.Budget) error
	DeleteBudget(ctx context.Context, budgetID uuid.UUID, cascade bool) error
	CountTransactionsForBudget(ctx context.Context, budgetID uuid.UUID) (int64, error)
	ListTransactionsForBudget(ctx context.Context, budgetID uuid.UUID) ([]models.BalanceEntry, error)
}

// TransactionStore доступ к транзакциям и категориям
type TransactionStore interface {
	// FindOrCreateCategory атомарно вставляет категорию, если ее нет, и возвращает ее
	FindOrCreateCategory(ctx context.Context, userID uuid.UUID, name string) (*models.Category, error)
	CreateTransaction(ctx context.Context, transaction *models.Transaction) error
	FindTransaction(ctx context.Context, transactionID, userID uuid.UUID) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, query models.TransactionQuery) ([]models.Transaction, int64, error)
	UpdateTransaction(ctx context.Context, transaction *models.Transaction) error
	DeleteTransaction(ctx context.Context, transactionID uuid.UUID) error
}

// ReportStore выборка транзакций для отчетов
type ReportStore interface {
	// FindTransactionsForUserInRange возвращает транзакции с датой в [start, end)
	FindTransactionsForUserInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.ReportEntry, error)
}

// Storage полный набор операций хранилища
type Storage interface {
	UserStore
	BudgetStore
	TransactionStore
	ReportStore
}
