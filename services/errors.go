package services

import (
	"errors"
	"fmt"
)

// Виды ошибок сервисного слоя. Ошибки хранилища возвращаются без изменений.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// ServiceError ошибка с видом и сообщением для клиента
type ServiceError struct {
	Kind    error
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Kind
}

// ErrorKind возвращает вид ошибки для метрик и логов
func (e *ServiceError) ErrorKind() string {
	switch e.Kind {
	case ErrValidation:
		return "validation"
	case ErrNotFound:
		return "not_found"
	case ErrForbidden:
		return "forbidden"
	case ErrUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

func newError(kind error, format string, args ...interface{}) error {
	return &ServiceError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...interface{}) error {
	return newError(ErrValidation, format, args...)
}

func notFoundError(format string, args ...interface{}) error {
	return newError(ErrNotFound, format, args...)
}

func forbiddenError(format string, args ...interface{}) error {
	return newError(ErrForbidden, format, args...)
}

func unauthorizedError(format string, args ...interface{}) error {
	return newError(ErrUnauthorized, format, args...)
}
