package utils

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// NewLogger создает slog-логгер с заданным уровнем и форматом (text или json)
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// caller возвращает файл:строку вызывающего кода
func caller() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// LogInfo логирует информационное сообщение
func LogInfo(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...), "source", caller())
}

// LogError логирует сообщение об ошибке
func LogError(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...), "source", caller())
}

// LogDebug логирует отладочное сообщение
func LogDebug(format string, v ...interface{}) {
	slog.Debug(fmt.Sprintf(format, v...), "source", caller())
}

// LogOperation логирует операцию с длительностью. Клиентские ошибки пишутся на уровне debug
func LogOperation(operation string, startTime time.Time, err error) {
	duration := time.Since(startTime)
	var clientErr ClientError
	switch {
	case errors.As(err, &clientErr):
		slog.Debug("operation rejected", "operation", operation, "duration", duration, "kind", clientErr.ErrorKind(), "error", err)
	case err != nil:
		slog.Error("operation failed", "operation", operation, "duration", duration, "error", err)
	default:
		slog.Debug("operation completed", "operation", operation, "duration", duration)
	}
}
