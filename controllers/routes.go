package controllers

import (
	"fintrack/middleware"

	"github.com/gorilla/mux"
)

// Controllers набор контроллеров API
type Controllers struct {
	Auth         *AuthController
	Users        *UserController
	Budgets      *BudgetController
	Transactions *TransactionController
	Reports      *ReportController
}

// NewRouter собирает маршруты /api/v1: публичные маршруты аутентификации
// и защищенные маршруты с проверкой токена
func NewRouter(c Controllers, tokens middleware.TokenParser) *mux.Router {
	router := mux.NewRouter()

	// Запросы логирует gin-движок, в который смонтирован роутер
	api := router.PathPrefix("/api/v1").Subrouter()

	// Публичные маршруты для аутентификации
	c.Auth.RegisterRoutes(api)

	// Защищенные маршруты
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(tokens))

	c.Users.RegisterRoutes(protected)
	c.Budgets.RegisterRoutes(protected)
	c.Transactions.RegisterRoutes(protected)
	c.Reports.RegisterRoutes(protected)

	return router
}
