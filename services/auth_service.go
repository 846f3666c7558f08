package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"fintrack/config"
	"fintrack/models"
	"fintrack/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordHasher хеширует и проверяет пароли
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) bool
}

// AuthService регистрация, вход, подтверждение email и сброс пароля
type AuthService struct {
	users    UserStore
	hasher   PasswordHasher
	tokens   *TokenService
	mailer   Mailer
	validate *validator.Validate
	baseURL  string
	resetTTL time.Duration
	resetKey []byte
	now      func() time.Time
}

type SignUpRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72,password"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72,password"`
}

// AuthResponse ответ на успешный вход
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewAuthService создает новый экземпляр AuthService
func NewAuthService(users UserStore, hasher PasswordHasher, tokens *TokenService, mailer Mailer, validate *validator.Validate, cfg *config.Config) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		mailer:   mailer,
		validate: validate,
		baseURL:  cfg.App.BaseURL,
		resetTTL: cfg.Security.ResetTokenTTL,
		resetKey: []byte(cfg.Security.ResetTokenKey),
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ensureEmailFree возвращает ForbiddenError, если email занят другим пользователем
func (s *AuthService) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	existing, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return forbiddenError("email %s уже используется", email)
	}
	return nil
}

// prepareVerification сбрасывает подтверждение и выпускает новый токен
func (s *AuthService) prepareVerification(user *models.User) error {
	token, err := s.tokens.IssueVerificationToken(user.Email)
	if err != nil {
		return err
	}
	user.IsVerified = false
	user.VerificationToken = token
	return nil
}

func (s *AuthService) sendVerification(user *models.User) error {
	subject, body := verificationEmail(s.baseURL, user.VerificationToken)
	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		utils.LogError("Не удалось отправить письмо подтверждения %s: %v", user.Email, err)
		return err
	}
	return nil
}

// Register создает пользователя и отправляет письмо для подтверждения email.
// При ошибке отправки пользователь остается неподтвержденным.
func (s *AuthService) Register(ctx context.Context, req SignUpRequest) (*models.User, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.prepareVerification(user); err != nil {
		return nil, err
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, forbiddenError("email %s уже используется", email)
		}
		return nil, err
	}
	utils.LogInfo("Зарегистрирован пользователь %s", user.ID)

	if err := s.sendVerification(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SignIn проверяет пароль и выпускает токен доступа
func (s *AuthService) SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("пользователь не найден")
		}
		return nil, err
	}

	if !s.hasher.Compare(user.PasswordHash, req.Password) {
		return nil, unauthorizedError("неверный пароль")
	}

	token, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken: token,
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}, nil
}

// VerifyEmail подтверждает email по токену из письма
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	email, err := s.tokens.ParseVerificationToken(token)
	if err != nil {
		return err
	}

	user, err := s.users.GetUserByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundError("пользователь для подтверждения не найден")
		}
		return err
	}
	if normalizeEmail(user.Email) != normalizeEmail(email) {
		return unauthorizedError("ссылка подтверждения не соответствует email")
	}

	user.IsVerified = true
	user.VerificationToken = ""
	return s.users.UpdateUser(ctx, user)
}

// ForgotPassword отправляет код сброса пароля. Для неизвестного email
// ничего не делает и не сообщает об этом.
func (s *AuthService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	if err := validateStruct(s.validate, req); err != nil {
		return err
	}

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogDebug("Сброс пароля для неизвестного email")
			return nil
		}
		return err
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return err
	}

	hashed := utils.GenerateHMAC(token, s.resetKey)
	expiry := s.now().Add(s.resetTTL)
	user.ResetToken = &hashed
	user.ResetTokenExpiry = &expiry
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return err
	}

	subject, body := resetPasswordEmail(token)
	return s.mailer.Send(user.Email, subject, body)
}

// ResetPassword устанавливает новый пароль по действующему коду сброса
func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if err := validateStruct(s.validate, req); err != nil {
		return err
	}

	// Неизвестный email и неверный код дают одинаковый ответ
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return unauthorizedError("недействительный код сброса пароля")
		}
		return err
	}
	if user.ResetToken == nil || !utils.ValidateHMAC(req.Token, *user.ResetToken, s.resetKey) {
		return unauthorizedError("недействительный код сброса пароля")
	}
	if user.ResetTokenExpiry == nil || utils.IsExpired(*user.ResetTokenExpiry, s.now()) {
		return unauthorizedError("срок действия кода сброса пароля истек")
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return err
	}

	user.PasswordHash = hashed
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return err
	}

	utils.LogInfo("Пароль пользователя %s изменен", user.ID)
	return nil
}
