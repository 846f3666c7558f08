package services

import (
	"context"
	"errors"
	"time"

	"fintrack/models"
	"fintrack/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetService предоставляет операции над бюджетами пользователя
type BudgetService struct {
	store    BudgetStore
	validate *validator.Validate
}

// CreateBudgetRequest DTO для создания бюджета
type CreateBudgetRequest struct {
	Name      string          `json:"name" validate:"required,min=1,max=100"`
	Amount    decimal.Decimal `json:"amount" validate:"required,gt=0,money"`
	Goal      *string         `json:"goal" validate:"omitempty,max=255"`
	StartDate time.Time       `json:"start_date" validate:"required"`
	EndDate   time.Time       `json:"end_date" validate:"required"`
}

// UpdateBudgetRequest частичное обновление бюджета; nil означает "не менять"
type UpdateBudgetRequest struct {
	Name      *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Amount    *decimal.Decimal `json:"amount" validate:"omitempty,gt=0,money"`
	Goal      *string          `json:"goal" validate:"omitempty,max=255"`
	StartDate *time.Time       `json:"start_date"`
	EndDate   *time.Time       `json:"end_date"`
}

// NewBudgetService создает новый экземпляр BudgetService
func NewBudgetService(store BudgetStore, validate *validator.Validate) *BudgetService {
	return &BudgetService{store: store, validate: validate}
}

func checkBudgetDates(start, end time.Time) error {
	if !end.After(start) {
		return validationError("дата окончания бюджета должна быть позже даты начала")
	}
	return nil
}

// CreateBudget создает бюджет пользователя
func (s *BudgetService) CreateBudget(ctx context.Context, userID uuid.UUID, req CreateBudgetRequest) (*models.Budget, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	if err := checkBudgetDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		Name:      req.Name,
		Amount:    req.Amount,
		Goal:      req.Goal,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		UserID:    userID,
	}
	if err := s.store.CreateBudget(ctx, budget); err != nil {
		utils.LogError("Ошибка создания бюджета: %v", err)
		return nil, err
	}

	utils.LogInfo("Создан бюджет %s пользователя %s", budget.ID, userID)
	return budget, nil
}

// findOwned ищет бюджет пользователя; чужой и несуществующий бюджет неразличимы
func (s *BudgetService) findOwned(ctx context.Context, userID, budgetID uuid.UUID) (*models.Budget, error) {
	budget, err := s.store.FindBudget(ctx, budgetID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("бюджет не найден")
		}
		return nil, err
	}
	return budget, nil
}

// withCurrentAmount дополняет бюджет текущим остатком
func (s *BudgetService) withCurrentAmount(ctx context.Context, budget models.Budget) (*models.BudgetWithCurrentAmount, error) {
	entries, err := s.store.ListTransactionsForBudget(ctx, budget.ID)
	if err != nil {
		return nil, err
	}
	return &models.BudgetWithCurrentAmount{
		Budget:        budget,
		CurrentAmount: ComputeCurrentAmount(budget.Amount, entries),
	}, nil
}

// GetBudgetWithCurrentAmount возвращает бюджет пользователя с текущим остатком
func (s *BudgetService) GetBudgetWithCurrentAmount(ctx context.Context, userID, budgetID uuid.UUID) (*models.BudgetWithCurrentAmount, error) {
	budget, err := s.findOwned(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}
	return s.withCurrentAmount(ctx, *budget)
}

// ListBudgetsWithCurrentAmount возвращает бюджеты пользователя, новые первыми
func (s *BudgetService) ListBudgetsWithCurrentAmount(ctx context.Context, userID uuid.UUID) ([]models.BudgetWithCurrentAmount, error) {
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]models.BudgetWithCurrentAmount, 0, len(budgets))
	for _, b := range budgets {
		withAmount, err := s.withCurrentAmount(ctx, b)
		if err != nil {
			return nil, err
		}
		result = append(result, *withAmount)
	}
	return result, nil
}

// UpdateBudget применяет частичное обновление; порядок дат проверяется по итоговым значениям
func (s *BudgetService) UpdateBudget(ctx context.Context, userID, budgetID uuid.UUID, req UpdateBudgetRequest) (*models.BudgetWithCurrentAmount, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	budget, err := s.findOwned(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		budget.Name = *req.Name
	}
	if req.Amount != nil {
		budget.Amount = *req.Amount
	}
	if req.Goal != nil {
		budget.Goal = req.Goal
	}
	if req.StartDate != nil {
		budget.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		budget.EndDate = *req.EndDate
	}

	if err := checkBudgetDates(budget.StartDate, budget.EndDate); err != nil {
		return nil, err
	}

	if err := s.store.UpdateBudget(ctx, budget); err != nil {
		return nil, err
	}
	return s.withCurrentAmount(ctx, *budget)
}

// DeleteBudget удаляет бюджет. Бюджет с транзакциями удаляется только при cascade.
func (s *BudgetService) DeleteBudget(ctx context.Context, userID, budgetID uuid.UUID, cascade bool) error {
	budget, err := s.findOwned(ctx, userID, budgetID)
	if err != nil {
		return err
	}

	if !cascade {
		count, err := s.store.CountTransactionsForBudget(ctx, budget.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return forbiddenError("у бюджета есть транзакции (%d); удалите их или передайте cascade=true", count)
		}
	}

	if err := s.store.DeleteBudget(ctx, budget.ID, cascade); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return notFoundError("бюджет не найден")
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			// транзакция добавлена между проверкой и удалением
			return forbiddenError("у бюджета есть транзакции; удалите их или передайте cascade=true")
		}
		return err
	}

	utils.LogInfo("Удален бюджет %s пользователя %s (cascade=%t)", budget.ID, userID, cascade)
	return nil
}
