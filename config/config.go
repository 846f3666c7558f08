package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Формулы расчета тренда в месячном отчете
const (
	TrendFormulaLegacy  = "legacy"
	TrendFormulaPercent = "percent"
)

// Драйверы хранилища
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server struct {
		Port int
	}
	DB struct {
		Driver   string
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
		SSLMode  string
	}
	JWT struct {
		SecretKey             string
		ExpiresIn             int // в часах
		VerificationExpiresIn int // в часах
	}
	SMTP struct {
		Enabled  bool
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	App struct {
		BaseURL string
	}
	Report struct {
		TrendFormula string
		Timezone     string
	}
	Security struct {
		BcryptCost    int
		ResetTokenTTL time.Duration
		ResetTokenKey string
	}
	RateLimit struct {
		Limit  int
		Window time.Duration
	}
	Scheduler struct {
		Enabled         bool
		ReportInterval  time.Duration
		CleanupInterval time.Duration
	}
	Pagination struct {
		PerPage int
	}
	Log struct {
		Level  string
		Format string
	}
}

// setDefaults задает значения по умолчанию
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)

	v.SetDefault("db.driver", DriverPostgres)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "fintrack")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("jwt.secret_key", "your-secret-key-here")
	v.SetDefault("jwt.expires_in", 24)
	v.SetDefault("jwt.verification_expires_in", 72)

	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "your-email@gmail.com")
	v.SetDefault("smtp.password", "your-app-password")
	v.SetDefault("smtp.from", "your-email@gmail.com")

	v.SetDefault("app.base_url", "http://localhost:8080/api/v1")

	v.SetDefault("report.trend_formula", TrendFormulaLegacy)
	v.SetDefault("report.timezone", "UTC")

	v.SetDefault("security.bcrypt_cost", bcrypt.DefaultCost)
	v.SetDefault("security.reset_token_ttl", time.Hour)
	v.SetDefault("security.reset_token_key", "your-reset-token-key-here")

	v.SetDefault("ratelimit.limit", 100)
	v.SetDefault("ratelimit.window", time.Minute)

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.report_interval", 24*time.Hour)
	v.SetDefault("scheduler.cleanup_interval", time.Hour)

	v.SetDefault("pagination.per_page", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// NewConfig создает новый экземпляр конфигурации.
// Порядок источников: значения по умолчанию, config.yaml, .env, переменные окружения.
func NewConfig() (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %v", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v), nil
}

// fromViper переносит значения из viper в Config
func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Server.Port = v.GetInt("server.port")

	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.Host = v.GetString("db.host")
	cfg.DB.Port = v.GetInt("db.port")
	cfg.DB.User = v.GetString("db.user")
	cfg.DB.Password = v.GetString("db.password")
	cfg.DB.DBName = v.GetString("db.name")
	cfg.DB.SSLMode = v.GetString("db.sslmode")

	cfg.JWT.SecretKey = v.GetString("jwt.secret_key")
	cfg.JWT.ExpiresIn = v.GetInt("jwt.expires_in")
	cfg.JWT.VerificationExpiresIn = v.GetInt("jwt.verification_expires_in")

	cfg.SMTP.Enabled = v.GetBool("smtp.enabled")
	cfg.SMTP.Host = v.GetString("smtp.host")
	cfg.SMTP.Port = v.GetInt("smtp.port")
	cfg.SMTP.Username = v.GetString("smtp.username")
	cfg.SMTP.Password = v.GetString("smtp.password")
	cfg.SMTP.From = v.GetString("smtp.from")

	cfg.App.BaseURL = v.GetString("app.base_url")

	cfg.Report.TrendFormula = v.GetString("report.trend_formula")
	cfg.Report.Timezone = v.GetString("report.timezone")

	cfg.Security.BcryptCost = v.GetInt("security.bcrypt_cost")
	cfg.Security.ResetTokenTTL = v.GetDuration("security.reset_token_ttl")
	cfg.Security.ResetTokenKey = v.GetString("security.reset_token_key")

	cfg.RateLimit.Limit = v.GetInt("ratelimit.limit")
	cfg.RateLimit.Window = v.GetDuration("ratelimit.window")

	cfg.Scheduler.Enabled = v.GetBool("scheduler.enabled")
	cfg.Scheduler.ReportInterval = v.GetDuration("scheduler.report_interval")
	cfg.Scheduler.CleanupInterval = v.GetDuration("scheduler.cleanup_interval")

	cfg.Pagination.PerPage = v.GetInt("pagination.per_page")

	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")

	return cfg
}

// Validate проверяет конфигурацию и возвращает все найденные ошибки
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("неверный порт сервера %d: допустимо 1..65535", c.Server.Port))
	}

	switch c.DB.Driver {
	case DriverPostgres, DriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("неизвестный драйвер базы данных %q", c.DB.Driver))
	}

	switch c.Report.TrendFormula {
	case TrendFormulaLegacy, TrendFormulaPercent:
	default:
		problems = append(problems, fmt.Sprintf("неизвестная формула тренда %q", c.Report.TrendFormula))
	}

	if _, err := time.LoadLocation(c.Report.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("неизвестный часовой пояс %q", c.Report.Timezone))
	}

	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		problems = append(problems, fmt.Sprintf("стоимость bcrypt %d вне диапазона %d..%d", c.Security.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}

	if c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0 {
		problems = append(problems, "лимит запросов и окно должны быть положительными")
	}

	if c.JWT.SecretKey == "" {
		problems = append(problems, "не задан секретный ключ JWT")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Location возвращает часовой пояс для границ месячных отчетов
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// PostgresDSN возвращает строку подключения для gorm
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.DBName,
		c.DB.SSLMode,
	)
}

// MigrationURL возвращает URL базы данных для golang-migrate
func (c *Config) MigrationURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     net.JoinHostPort(c.DB.Host, strconv.Itoa(c.DB.Port)),
		Path:     "/" + c.DB.DBName,
		RawQuery: url.Values{"sslmode": {c.DB.SSLMode}}.Encode(),
	}
	return u.String()
}
