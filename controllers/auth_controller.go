package controllers

import (
	"net/http"

	"fintrack/services"

	"github.com/gorilla/mux"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// SignUp обрабатывает регистрацию пользователя
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req services.SignUpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := c.auth.Register(r.Context(), req); err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusCreated, "Пользователь зарегистрирован, проверьте почту для подтверждения email", nil)
}

// SignIn обрабатывает вход пользователя
func (c *AuthController) SignIn(w http.ResponseWriter, r *http.Request) {
	var req services.SignInRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := c.auth.SignIn(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Вход выполнен", resp)
}

// VerifyEmail подтверждает email по ссылке из письма
func (c *AuthController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	if err := c.auth.VerifyEmail(r.Context(), mux.Vars(r)["token"]); err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Email подтвержден", nil)
}

// ForgotPassword отправляет код сброса пароля
func (c *AuthController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req services.ForgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := c.auth.ForgotPassword(r.Context(), req); err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Если адрес зарегистрирован, на него отправлен код сброса пароля", nil)
}

// ResetPassword устанавливает новый пароль по коду
func (c *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req services.ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := c.auth.ResetPassword(r.Context(), req); err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Пароль изменен", nil)
}

// RegisterRoutes регистрирует публичные маршруты аутентификации
func (c *AuthController) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/signup", c.SignUp).Methods("POST")
	router.HandleFunc("/auth/signin", c.SignIn).Methods("POST")
	router.HandleFunc("/auth/verify/{token}", c.VerifyEmail).Methods("GET")
	router.HandleFunc("/auth/forgot-password", c.ForgotPassword).Methods("POST")
	router.HandleFunc("/auth/reset-password", c.ResetPassword).Methods("POST")
}
