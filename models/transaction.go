package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType представляет тип транзакции
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// Transaction доход или расход, привязанный к бюджету.
// Сумма всегда положительна, знак определяется типом.
type Transaction struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Amount          decimal.Decimal `gorm:"column:amount;type:numeric(20,2);not null" json:"amount"`
	TransactionType TransactionType `gorm:"column:transaction_type;type:varchar(10);not null" json:"transaction_type"`
	TransactionDate time.Time       `gorm:"column:transaction_date;not null;index" json:"transaction_date"`
	Description     string          `gorm:"column:description;size:255" json:"description"`
	CategoryID      uuid.UUID       `gorm:"column:category_id;type:uuid;not null" json:"category_id"`
	Category        *Category       `gorm:"foreignKey:CategoryID;references:ID" json:"category,omitempty"`
	BudgetID        uuid.UUID       `gorm:"column:budget_id;type:uuid;not null;index" json:"budget_id"`
	Budget          *Budget         `gorm:"foreignKey:BudgetID;references:ID" json:"budget,omitempty"`
	UserID          uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	CreatedAt       time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate хук для генерации ID
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// BalanceEntry минимальный набор полей для расчета остатка бюджета
type BalanceEntry struct {
	Amount          decimal.Decimal
	TransactionType TransactionType
}

// ReportEntry транзакция в виде, нужном для месячного отчета
type ReportEntry struct {
	Amount          decimal.Decimal
	TransactionType TransactionType
	TransactionDate time.Time
	CategoryName    string
}

// TransactionQuery параметры выборки списка транзакций
type TransactionQuery struct {
	Page      int
	PerPage   int
	Search    string
	OrderBy   string // amount | transaction_date
	OrderDesc bool
}
