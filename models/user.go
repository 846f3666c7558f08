package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name              string     `gorm:"column:name;not null;size:100" json:"name"`
	Email             string     `gorm:"column:email;unique;not null;size:100;index" json:"email"`
	PasswordHash      string     `gorm:"column:password_hash;not null;size:100" json:"-"`
	IsVerified        bool       `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	VerificationToken string     `gorm:"column:verification_token;size:512" json:"-"`
	ResetToken        *string    `gorm:"column:reset_token;size:128;index" json:"-"`
	ResetTokenExpiry  *time.Time `gorm:"column:reset_token_expiry" json:"-"`
	CreatedAt         time.Time  `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate хук для генерации ID и валидации перед созданием
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if len(u.Name) < 1 || len(u.Name) > 100 {
		return errors.New("name must be between 1 and 100 characters")
	}
	if len(u.Email) < 3 || len(u.Email) > 100 {
		return errors.New("email must be between 3 and 100 characters")
	}
	return nil
}
