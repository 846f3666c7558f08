package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack/config"
	"fintrack/controllers"
	"fintrack/database"
	"fintrack/middleware"
	"fintrack/services"
	"fintrack/utils"

	"github.com/gin-gonic/gin"
)

// Оба хранилища реализуют полный набор операций
var (
	_ services.Storage = (*database.Database)(nil)
	_ services.Storage = (*database.MemoryStore)(nil)
)

// openStorage открывает хранилище по драйверу из конфигурации
func openStorage(cfg *config.Config) (services.Storage, func() error, error) {
	if cfg.DB.Driver == config.DriverMemory {
		slog.Warn("используется хранилище в памяти, данные не сохраняются между перезапусками")
		return database.NewMemoryStore(), func() error { return nil }, nil
	}

	if err := database.RunMigrations(cfg); err != nil {
		return nil, nil, err
	}

	db, err := database.NewDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}

// newAPI собирает сервисы и роутер /api/v1 поверх хранилища
func newAPI(cfg *config.Config, store services.Storage, mailer services.Mailer, metrics *utils.Metrics) (http.Handler, *services.ReportService) {
	validate := services.NewValidator()
	tokens := services.NewTokenService(cfg)
	hasher := utils.NewBcryptHasher(cfg.Security.BcryptCost)

	authService := services.NewAuthService(store, hasher, tokens, mailer, validate, cfg)
	userService := services.NewUserService(store, authService, validate)
	budgetService := services.NewBudgetService(store, validate)
	transactionService := services.NewTransactionService(store, store, validate, cfg.Pagination.PerPage)
	reportService := services.NewReportService(store, cfg, metrics)

	router := controllers.NewRouter(controllers.Controllers{
		Auth:         controllers.NewAuthController(authService),
		Users:        controllers.NewUserController(userService),
		Budgets:      controllers.NewBudgetController(budgetService),
		Transactions: controllers.NewTransactionController(transactionService),
		Reports:      controllers.NewReportController(reportService),
	}, tokens)

	return router, reportService
}

// newEngine собирает gin: общие middleware, /health, /metrics и API на gorilla/mux под /api
func newEngine(api http.Handler, metrics *utils.Metrics, limiter *utils.RateLimiter) *gin.Engine {
	engine := gin.New()
	engine.Use(
		middleware.Logger(metrics),
		middleware.Recovery(metrics),
		middleware.CORSMiddleware(),
		middleware.RateLimit(limiter),
	)

	engine.GET("/health", healthHandler)
	engine.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.GetMetricsSnapshot())
	})
	engine.Any("/api/*path", gin.WrapH(api))

	return engine
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Некорректная конфигурация: %v", err)
	}

	slog.SetDefault(utils.NewLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format))
	gin.SetMode(gin.ReleaseMode)

	store, closeStore, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer closeStore()

	metrics := utils.NewMetrics()
	mailer := services.NewMailer(cfg)
	api, reportService := newAPI(cfg, store, mailer, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Запускаем планировщик отчетов
	var scheduler *services.ReportSchedulerService
	if cfg.Scheduler.Enabled {
		scheduler = services.NewReportSchedulerService(store, reportService, mailer, cfg.Scheduler.ReportInterval, cfg.Scheduler.CleanupInterval)
		scheduler.Start(ctx)
		utils.LogInfo("Планировщик отчетов запущен")
	}

	engine := newEngine(api, metrics, utils.NewRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Запускаем сервер
	go func() {
		utils.LogInfo("Сервер запущен на порту %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Ошибка запуска сервера: %v", err)
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Остановка сервера")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.LogError("Ошибка остановки сервера: %v", err)
	}
	if scheduler != nil {
		scheduler.Wait()
	}
}
