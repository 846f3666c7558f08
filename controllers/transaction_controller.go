package controllers

import (
	"net/http"
	"strconv"

	"fintrack/services"

	"github.com/gorilla/mux"
)

// TransactionController обрабатывает запросы, связанные с транзакциями
type TransactionController struct {
	transactions *services.TransactionService
}

// NewTransactionController создает новый экземпляр TransactionController
func NewTransactionController(transactions *services.TransactionService) *TransactionController {
	return &TransactionController{transactions: transactions}
}

// CreateTransaction обрабатывает запрос на создание транзакции
func (c *TransactionController) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req services.CreateTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	transaction, err := c.transactions.CreateTransaction(r.Context(), userID, req)
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusCreated, "Транзакция создана", transaction)
}

// GetTransactions возвращает страницу транзакций.
// Параметры: page, per_page, search, order_by (amount|transaction_date), order_type (asc|desc).
func (c *TransactionController) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	params := services.ListTransactionsParams{
		Search:    query.Get("search"),
		OrderBy:   query.Get("order_by"),
		OrderType: query.Get("order_type"),
	}

	var err error
	if raw := query.Get("page"); raw != "" {
		if params.Page, err = strconv.Atoi(raw); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid page"})
			return
		}
	}
	if raw := query.Get("per_page"); raw != "" {
		if params.PerPage, err = strconv.Atoi(raw); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid per_page"})
			return
		}
	}

	page, err := c.transactions.ListTransactions(r.Context(), userID, params)
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Список транзакций", page)
}

// GetTransaction возвращает транзакцию с категорией и бюджетом
func (c *TransactionController) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	transactionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	transaction, err := c.transactions.GetTransaction(r.Context(), userID, transactionID)
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Транзакция", transaction)
}

// UpdateTransaction частично обновляет транзакцию
func (c *TransactionController) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	transactionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.UpdateTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	transaction, err := c.transactions.UpdateTransaction(r.Context(), userID, transactionID, req)
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Транзакция обновлена", transaction)
}

// DeleteTransaction удаляет транзакцию
func (c *TransactionController) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	transactionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := c.transactions.DeleteTransaction(r.Context(), userID, transactionID); err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Транзакция удалена", nil)
}

// RegisterRoutes регистрирует маршруты контроллера
func (c *TransactionController) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/transactions", c.CreateTransaction).Methods("POST")
	router.HandleFunc("/transactions", c.GetTransactions).Methods("GET")
	router.HandleFunc("/transactions/{id}", c.GetTransaction).Methods("GET")
	router.HandleFunc("/transactions/{id}", c.UpdateTransaction).Methods("PUT")
	router.HandleFunc("/transactions/{id}", c.DeleteTransaction).Methods("DELETE")
}
