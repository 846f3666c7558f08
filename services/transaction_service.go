package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"fintrack/models"
	"fintrack/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionService предоставляет операции над транзакциями пользователя
type TransactionService struct {
	store    TransactionStore
	budgets  BudgetStore
	validate *validator.Validate
	perPage  int
	now      func() time.Time
}

// CreateTransactionRequest DTO для создания транзакции
type CreateTransactionRequest struct {
	Amount          decimal.Decimal        `json:"amount" validate:"required,gt=0,money"`
	TransactionType models.TransactionType `json:"transaction_type" validate:"required,oneof=INCOME EXPENSE"`
	TransactionDate *time.Time             `json:"transaction_date"`
	Description     string                 `json:"description" validate:"max=255"`
	Category        string                 `json:"category" validate:"required,min=1,max=100"`
	BudgetID        uuid.UUID              `json:"budget_id" validate:"required"`
}

// UpdateTransactionRequest частичное обновление транзакции; nil означает "не менять"
type UpdateTransactionRequest struct {
	Amount          *decimal.Decimal        `json:"amount" validate:"omitempty,gt=0,money"`
	TransactionType *models.TransactionType `json:"transaction_type" validate:"omitempty,oneof=INCOME EXPENSE"`
	TransactionDate *time.Time              `json:"transaction_date"`
	Description     *string                 `json:"description" validate:"omitempty,max=255"`
	Category        *string                 `json:"category" validate:"omitempty,min=1,max=100"`
	BudgetID        *uuid.UUID              `json:"budget_id"`
}

// ListTransactionsParams параметры списка транзакций
type ListTransactionsParams struct {
	Page      int    `validate:"gte=0,lte=1000000"`
	PerPage   int    `validate:"gte=0,lte=100"`
	Search    string `validate:"max=100"`
	OrderBy   string `validate:"omitempty,oneof=amount transaction_date"`
	OrderType string `validate:"omitempty,oneof=asc desc ASC DESC"`
}

// NewTransactionService создает новый экземпляр TransactionService
func NewTransactionService(store TransactionStore, budgets BudgetStore, validate *validator.Validate, perPage int) *TransactionService {
	return &TransactionService{
		store:    store,
		budgets:  budgets,
		validate: validate,
		perPage:  perPage,
		now:      time.Now,
	}
}

// usableBudget проверяет, что бюджет принадлежит пользователю и еще не истек
func (s *TransactionService) usableBudget(ctx context.Context, userID, budgetID uuid.UUID) (*models.Budget, error) {
	budget, err := s.budgets.FindBudget(ctx, budgetID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("бюджет не найден")
		}
		return nil, err
	}
	if budget.IsExpiredAt(s.now()) {
		return nil, forbiddenError("срок действия бюджета %q истек %s", budget.Name, budget.EndDate.Format("02.01.2006"))
	}
	return budget, nil
}

// CreateTransaction создает транзакцию; категория создается при первом упоминании
func (s *TransactionService) CreateTransaction(ctx context.Context, userID uuid.UUID, req CreateTransactionRequest) (*models.Transaction, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	if _, err := s.usableBudget(ctx, userID, req.BudgetID); err != nil {
		return nil, err
	}

	category, err := s.store.FindOrCreateCategory(ctx, userID, strings.TrimSpace(req.Category))
	if err != nil {
		return nil, err
	}

	date := s.now()
	if req.TransactionDate != nil {
		date = *req.TransactionDate
	}

	transaction := &models.Transaction{
		Amount:          req.Amount,
		TransactionType: req.TransactionType,
		TransactionDate: date,
		Description:     req.Description,
		CategoryID:      category.ID,
		BudgetID:        req.BudgetID,
		UserID:          userID,
	}
	if err := s.store.CreateTransaction(ctx, transaction); err != nil {
		utils.LogError("Ошибка создания транзакции: %v", err)
		return nil, err
	}

	return s.GetTransaction(ctx, userID, transaction.ID)
}

// GetTransaction возвращает транзакцию пользователя вместе с категорией и бюджетом
func (s *TransactionService) GetTransaction(ctx context.Context, userID, transactionID uuid.UUID) (*models.Transaction, error) {
	transaction, err := s.store.FindTransaction(ctx, transactionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("транзакция не найдена")
		}
		return nil, err
	}
	return transaction, nil
}

// ListTransactions возвращает страницу транзакций с поиском по описанию и категории
func (s *TransactionService) ListTransactions(ctx context.Context, userID uuid.UUID, params ListTransactionsParams) (*utils.PaginatedResult[models.Transaction], error) {
	if err := validateStruct(s.validate, params); err != nil {
		return nil, err
	}

	page, perPage := utils.NormalizePage(params.Page, params.PerPage, s.perPage)
	query := models.TransactionQuery{
		Page:      page,
		PerPage:   perPage,
		Search:    strings.TrimSpace(params.Search),
		OrderBy:   params.OrderBy,
		OrderDesc: !strings.EqualFold(params.OrderType, "asc"),
	}
	if query.OrderBy == "" {
		query.OrderBy = "transaction_date"
	}

	transactions, total, err := s.store.ListTransactions(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	result := utils.Paginate(transactions, total, page, perPage)
	return &result, nil
}

// UpdateTransaction применяет частичное обновление. Смена бюджета повторно
// проверяет владельца и срок действия нового бюджета.
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, transactionID uuid.UUID, req UpdateTransactionRequest) (*models.Transaction, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	transaction, err := s.GetTransaction(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	if req.BudgetID != nil && *req.BudgetID != transaction.BudgetID {
		if _, err := s.usableBudget(ctx, userID, *req.BudgetID); err != nil {
			return nil, err
		}
		transaction.BudgetID = *req.BudgetID
	}
	if req.Category != nil {
		category, err := s.store.FindOrCreateCategory(ctx, userID, strings.TrimSpace(*req.Category))
		if err != nil {
			return nil, err
		}
		transaction.CategoryID = category.ID
	}
	if req.Amount != nil {
		transaction.Amount = *req.Amount
	}
	if req.TransactionType != nil {
		transaction.TransactionType = *req.TransactionType
	}
	if req.TransactionDate != nil {
		transaction.TransactionDate = *req.TransactionDate
	}
	if req.Description != nil {
		transaction.Description = *req.Description
	}

	transaction.Category = nil
	transaction.Budget = nil
	if err := s.store.UpdateTransaction(ctx, transaction); err != nil {
		return nil, err
	}

	return s.GetTransaction(ctx, userID, transactionID)
}

// DeleteTransaction удаляет транзакцию пользователя
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error {
	if _, err := s.GetTransaction(ctx, userID, transactionID); err != nil {
		return err
	}

	if err := s.store.DeleteTransaction(ctx, transactionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundError("транзакция не найдена")
		}
		return err
	}
	return nil
}
