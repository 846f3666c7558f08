package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/config"
	"fintrack/models"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Database представляет подключение к базе данных
type Database struct {
	DB *gorm.DB
}

// NewDatabase создает новое подключение к базе данных
func NewDatabase(cfg *config.Config) (*Database, error) {
	// Настраиваем логгер поверх slog
	newLogger := logger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	// Открываем подключение
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %v", err)
	}

	// Настраиваем пул соединений
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пула соединений: %v", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Database{DB: db}, nil
}

// Close закрывает подключение к базе данных
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Методы для работы с пользователями

func (d *Database) CreateUser(ctx context.Context, user *models.User) error {
	return d.DB.WithContext(ctx).Create(user).Error
}

func (d *Database) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := d.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail ищет пользователя по email (игнорируя регистр и пробелы)
func (d *Database) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := d.DB.WithContext(ctx).
		Where("LOWER(TRIM(email)) = LOWER(TRIM(?))", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := d.DB.WithContext(ctx).Where("verification_token = ?", token).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) UpdateUser(ctx context.Context, user *models.User) error {
	return d.DB.WithContext(ctx).Save(user).Error
}

func (d *Database) ListVerifiedUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := d.DB.WithContext(ctx).Where("is_verified = ?", true).Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ClearExpiredResetTokens стирает просроченные токены сброса пароля
func (d *Database) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result := d.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("reset_token_expiry IS NOT NULL AND reset_token_expiry < ?", now).
		Updates(map[string]interface{}{"reset_token": nil, "reset_token_expiry": nil})
	return result.RowsAffected, result.Error
}

// Методы для работы с бюджетами

func (d *Database) CreateBudget(ctx context.Context, budget *models.Budget) error {
	return d.DB.WithContext(ctx).Omit(clause.Associations).Create(budget).Error
}

func (d *Database) FindBudget(ctx context.Context, budgetID, userID uuid.UUID) (*models.Budget, error) {
	var budget models.Budget
	err := d.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", budgetID, userID).
		First(&budget).Error
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

func (d *Database) ListBudgets(ctx context.Context, userID uuid.UUID) ([]models.Budget, error) {
	var budgets []models.Budget
	err := d.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&budgets).Error
	if err != nil {
		return nil, err
	}
	return budgets, nil
}

func (d *Database) UpdateBudget(ctx context.Context, budget *models.Budget) error {
	return d.DB.WithContext(ctx).Omit(clause.Associations).Save(budget).Error
}

// DeleteBudget удаляет бюджет; при cascade сначала удаляются его транзакции
func (d *Database) DeleteBudget(ctx context.Context, budgetID uuid.UUID, cascade bool) error {
	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cascade {
			if err := tx.Where("budget_id = ?", budgetID).Delete(&models.Transaction{}).Error; err != nil {
				return err
			}
		}

		result := tx.Where("id = ?", budgetID).Delete(&models.Budget{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (d *Database) CountTransactionsForBudget(ctx context.Context, budgetID uuid.UUID) (int64, error) {
	var count int64
	err := d.DB.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("budget_id = ?", budgetID).
		Count(&count).Error
	return count, err
}

func (d *Database) ListTransactionsForBudget(ctx context.Context, budgetID uuid.UUID) ([]models.BalanceEntry, error) {
	var entries []models.BalanceEntry
	err := d.DB.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("amount, transaction_type").
		Where("budget_id = ?", budgetID).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Методы для работы с категориями и транзакциями

// FindOrCreateCategory вставляет категорию через ON CONFLICT DO NOTHING и читает строку,
// поэтому параллельные создания одного имени не конфликтуют
func (d *Database) FindOrCreateCategory(ctx context.Context, userID uuid.UUID, name string) (*models.Category, error) {
	db := d.DB.WithContext(ctx)

	category := models.Category{UserID: userID, Name: name}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
		DoNothing: true,
	}).Create(&category).Error
	if err != nil {
		return nil, err
	}

	var stored models.Category
	if err := db.Where("user_id = ? AND name = ?", userID, name).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (d *Database) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	return d.DB.WithContext(ctx).Omit(clause.Associations).Create(transaction).Error
}

func (d *Database) FindTransaction(ctx context.Context, transactionID, userID uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	err := d.DB.WithContext(ctx).
		Preload("Category").
		Preload("Budget").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// ListTransactions возвращает страницу транзакций пользователя и общее количество
func (d *Database) ListTransactions(ctx context.Context, userID uuid.UUID, query models.TransactionQuery) ([]models.Transaction, int64, error) {
	base := func() *gorm.DB {
		q := d.DB.WithContext(ctx).
			Model(&models.Transaction{}).
			Joins("JOIN categories ON categories.id = transactions.category_id").
			Where("transactions.user_id = ?", userID)
		if query.Search != "" {
			pattern := "%" + query.Search + "%"
			q = q.Where("transactions.description ILIKE ? OR categories.name ILIKE ?", pattern, pattern)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column := "transactions.transaction_date"
	if query.OrderBy == "amount" {
		column = "transactions.amount"
	}

	var transactions []models.Transaction
	err := base().
		Preload("Category").
		Preload("Budget").
		Order(clause.OrderByColumn{Column: clause.Column{Name: column, Raw: true}, Desc: query.OrderDesc}).
		Limit(query.PerPage).
		Offset((query.Page - 1) * query.PerPage).
		Find(&transactions).Error
	if err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

func (d *Database) UpdateTransaction(ctx context.Context, transaction *models.Transaction) error {
	return d.DB.WithContext(ctx).Omit(clause.Associations).Save(transaction).Error
}

func (d *Database) DeleteTransaction(ctx context.Context, transactionID uuid.UUID) error {
	result := d.DB.WithContext(ctx).Where("id = ?", transactionID).Delete(&models.Transaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Методы для отчетов

func (d *Database) FindTransactionsForUserInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.ReportEntry, error) {
	var entries []models.ReportEntry
	err := d.DB.WithContext(ctx).
		Table("transactions").
		Select("transactions.amount, transactions.transaction_type, transactions.transaction_date, categories.name AS category_name").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.transaction_date >= ? AND transactions.transaction_date < ?", userID, start, end).
		Order("transactions.transaction_date").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
