package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category пользовательская метка транзакции, уникальна в пределах пользователя
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;size:100;uniqueIndex:idx_categories_user_name" json:"name"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_categories_user_name" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}

// BeforeCreate хук для генерации ID
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
