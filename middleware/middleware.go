package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fintrack/utils"

	"github.com/gin-gonic/gin"
)

// RateLimit middleware для ограничения частоты запросов по IP клиента
func RateLimit(limiter *utils.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := limiter.Allow(c.ClientIP())

		// Добавляем заголовки с информацией о лимитах
		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
				"reset": decision.ResetAt,
			})
			return
		}

		c.Next()
	}
}

// Logger middleware для логирования запросов и учета метрик
func Logger(metrics *utils.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		duration := time.Since(startTime)
		status := c.Writer.Status()
		metrics.RecordRequest(duration, status)

		utils.LogInfo("Request: %s %s - Status: %d - Duration: %v",
			c.Request.Method,
			c.Request.URL.Path,
			status,
			duration,
		)

		for _, e := range c.Errors {
			metrics.RecordError(e.Err)
			utils.LogError("Error: %v", e)
		}
	}
}

// Recovery middleware для обработки паник
func Recovery(metrics *utils.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				utils.LogError("Panic recovered: %v", err)
				metrics.RecordError(fmt.Errorf("panic: %v", err))

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()

		c.Next()
	}
}

// CORSMiddleware middleware для CORS
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
