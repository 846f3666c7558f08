package controllers

import (
	"net/http"

	"fintrack/services"

	"github.com/gorilla/mux"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// GetMe возвращает профиль текущего пользователя
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := c.users.GetProfile(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Профиль пользователя", user)
}

// UpdateMe обновляет профиль текущего пользователя
func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := c.users.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Профиль обновлен", user)
}

// RegisterRoutes регистрирует маршруты профиля (требуют аутентификации)
func (c *UserController) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/users/me", c.GetMe).Methods("GET")
	router.HandleFunc("/users/me", c.UpdateMe).Methods("PUT")
}
