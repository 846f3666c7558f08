package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher хеширует пароли через bcrypt с заданной стоимостью
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher создает хешер; стоимость вне допустимого диапазона заменяется на DefaultCost
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash создает хеш пароля
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %v", err)
	}
	return string(hashed), nil
}

// Compare проверяет пароль
func (h *BcryptHasher) Compare(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// GenerateHMAC создает HMAC-SHA256 для данных в hex
func GenerateHMAC(data string, key []byte) string {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// ValidateHMAC проверяет HMAC за постоянное время
func ValidateHMAC(data, mac string, key []byte) bool {
	expected := GenerateHMAC(data, key)
	return hmac.Equal([]byte(mac), []byte(expected))
}

// GenerateSecureToken генерирует безопасный токен
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %v", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// IsExpired проверяет, истек ли срок действия
func IsExpired(expirationTime, now time.Time) bool {
	return now.After(expirationTime)
}
