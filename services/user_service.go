package services

import (
	"context"
	"errors"
	"strings"

	"fintrack/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	users    UserStore
	auth     *AuthService
	validate *validator.Validate
}

// UpdateProfileRequest частичное обновление профиля
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email *string `json:"email" validate:"omitempty,email,max=100"`
}

func NewUserService(users UserStore, auth *AuthService, validate *validator.Validate) *UserService {
	return &UserService{users: users, auth: auth, validate: validate}
}

// findById ищет пользователя по ID
func (s *UserService) findById(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("пользователь не найден")
		}
		return nil, err
	}
	return user, nil
}

// GetProfile возвращает профиль пользователя
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.findById(ctx, userID)
}

// UpdateProfile меняет имя и email. Новый email должен быть свободен;
// смена email сбрасывает подтверждение и отправляет новое письмо.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*models.User, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	user, err := s.findById(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}

	emailChanged := false
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != normalizeEmail(user.Email) {
			if err := s.auth.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
			if err := s.auth.prepareVerification(user); err != nil {
				return nil, err
			}
			emailChanged = true
		}
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, forbiddenError("email %s уже используется", user.Email)
		}
		return nil, err
	}

	if emailChanged {
		if err := s.auth.sendVerification(user); err != nil {
			return nil, err
		}
	}
	return user, nil
}
