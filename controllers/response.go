package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/middleware"
	"fintrack/services"
	"fintrack/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Response общий формат успешного ответа
type Response struct {
	Message string      `json:"message"`
	Result  interface{} `json:"result,omitempty"`
}

// ErrorResponse формат ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.LogError("Ошибка кодирования ответа: %v", err)
	}
}

func respond(w http.ResponseWriter, status int, message string, result interface{}) {
	writeJSON(w, status, Response{Message: message, Result: result})
}

// respondError переводит ошибку сервиса в HTTP-статус; внутренние ошибки не раскрываются
func respondError(w http.ResponseWriter, err error) {
	var serviceErr *services.ServiceError
	if !errors.As(err, &serviceErr) {
		utils.LogError("Внутренняя ошибка: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	}
	writeJSON(w, status, ErrorResponse{Error: serviceErr.Message})
}

// decodeBody читает JSON тела запроса; при ошибке отвечает 400
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return false
	}
	return true
}

// currentUser получает ID пользователя из контекста (установлен middleware)
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return uuid.Nil, false
	}
	return userID, true
}

// pathID разбирает UUID из переменной маршрута
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
