package controllers

import (
	"net/http"
	"strconv"

	"fintrack/services"

	"github.com/gorilla/mux"
)

// BudgetController обрабатывает запросы, связанные с бюджетами
type BudgetController struct {
	budgets *services.BudgetService
}

// NewBudgetController создает новый экземпляр BudgetController
func NewBudgetController(budgets *services.BudgetService) *BudgetController {
	return &BudgetController{budgets: budgets}
}

// CreateBudget обрабатывает запрос на создание бюджета
func (c *BudgetController) CreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req services.CreateBudgetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	budget, err := c.budgets.CreateBudget(r.Context(), userID, req)
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusCreated, "Бюджет создан", budget)
}

// GetBudgets возвращает бюджеты пользователя с текущими остатками
func (c *BudgetController) GetBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	budgets, err := c.budgets.ListBudgetsWithCurrentAmount(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Список бюджетов", budgets)
}

// GetBudget возвращает бюджет с текущим остатком
func (c *BudgetController) GetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	budgetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	budget, err := c.budgets.GetBudgetWithCurrentAmount(r.Context(), userID, budgetID)
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Бюджет", budget)
}

// UpdateBudget частично обновляет бюджет
func (c *BudgetController) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	budgetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.UpdateBudgetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	budget, err := c.budgets.UpdateBudget(r.Context(), userID, budgetID, req)
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Бюджет обновлен", budget)
}

// DeleteBudget удаляет бюджет; ?cascade=true удаляет и его транзакции
func (c *BudgetController) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	budgetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	cascade := false
	if raw := r.URL.Query().Get("cascade"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid cascade"})
			return
		}
		cascade = parsed
	}

	if err := c.budgets.DeleteBudget(r.Context(), userID, budgetID, cascade); err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Бюджет удален", nil)
}

// RegisterRoutes регистрирует маршруты контроллера
func (c *BudgetController) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/budgets", c.CreateBudget).Methods("POST")
	router.HandleFunc("/budgets", c.GetBudgets).Methods("GET")
	router.HandleFunc("/budgets/{id}", c.GetBudget).Methods("GET")
	router.HandleFunc("/budgets/{id}", c.UpdateBudget).Methods("PUT")
	router.HandleFunc("/budgets/{id}", c.DeleteBudget).Methods("DELETE")
}
