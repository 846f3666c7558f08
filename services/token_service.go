package services

import (
	"fmt"
	"time"

	"fintrack/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims данные токена доступа
type AccessClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// VerificationClaims данные токена подтверждения email
type VerificationClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService выпускает и проверяет JWT (HS256)
type TokenService struct {
	secret          []byte
	accessTTL       time.Duration
	verificationTTL time.Duration
	now             func() time.Time
}

// NewTokenService создает новый экземпляр TokenService
func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret:          []byte(cfg.JWT.SecretKey),
		accessTTL:       time.Duration(cfg.JWT.ExpiresIn) * time.Hour,
		verificationTTL: time.Duration(cfg.JWT.VerificationExpiresIn) * time.Hour,
		now:             time.Now,
	}
}

func (s *TokenService) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %v", err)
	}
	return signed, nil
}

// Назначение токена (claim sub); при разборе проверяется совпадение
const (
	subjectAccess       = "access"
	subjectVerification = "verification"
)

func (s *TokenService) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) parse(tokenString string, claims jwt.Claims, subject string) error {
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(subject),
	)
	return err
}

// IssueAccessToken выпускает токен доступа пользователя
func (s *TokenService) IssueAccessToken(userID uuid.UUID, email string) (string, error) {
	return s.sign(AccessClaims{
		UserID:           userID.String(),
		Email:            email,
		RegisteredClaims: s.registered(subjectAccess, s.accessTTL),
	})
}

// ParseAccessToken проверяет токен доступа и возвращает ID пользователя
func (s *TokenService) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	var claims AccessClaims
	if err := s.parse(tokenString, &claims, subjectAccess); err != nil {
		return uuid.Nil, unauthorizedError("недействительный токен")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, unauthorizedError("недействительный user_id в токене")
	}
	return userID, nil
}

// IssueVerificationToken выпускает токен подтверждения для email
func (s *TokenService) IssueVerificationToken(email string) (string, error) {
	return s.sign(VerificationClaims{
		Email:            email,
		RegisteredClaims: s.registered(subjectVerification, s.verificationTTL),
	})
}

// ParseVerificationToken проверяет токен подтверждения и возвращает email
func (s *TokenService) ParseVerificationToken(tokenString string) (string, error) {
	var claims VerificationClaims
	if err := s.parse(tokenString, &claims, subjectVerification); err != nil || claims.Email == "" {
		return "", unauthorizedError("недействительная или просроченная ссылка подтверждения")
	}
	return claims.Email, nil
}
