package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Budget представляет денежный лимит пользователя на период
type Budget struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string          `gorm:"column:name;not null;size:100" json:"name"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(20,2);not null" json:"amount"`
	Goal      *string         `gorm:"column:goal;size:255" json:"goal,omitempty"`
	StartDate time.Time       `gorm:"column:start_date;not null" json:"start_date"`
	EndDate   time.Time       `gorm:"column:end_date;not null" json:"end_date"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	User      *User           `gorm:"foreignKey:UserID;references:ID" json:"-"`
	CreatedAt time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Budget) TableName() string {
	return "budgets"
}

// BeforeCreate хук для генерации ID
func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// IsExpiredAt сообщает, истек ли бюджет к моменту now (end_date <= now)
func (b *Budget) IsExpiredAt(now time.Time) bool {
	return !b.EndDate.After(now)
}

// BudgetWithCurrentAmount бюджет вместе с текущим остатком
type BudgetWithCurrentAmount struct {
	Budget
	CurrentAmount decimal.Decimal `json:"current_amount"`
}
