package utils

import (
	"errors"
	"sync"
	"time"
)

// ClientError ошибка из-за запроса клиента с ограниченным набором видов
type ClientError interface {
	error
	ErrorKind() string
}

// ErrorKind возвращает вид ошибки: вид клиентской ошибки или internal
func ErrorKind(err error) string {
	var clientErr ClientError
	if errors.As(err, &clientErr) {
		return clientErr.ErrorKind()
	}
	return "internal"
}

// Metrics содержит метрики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики запросов
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Метрики отчетов
	ReportsGenerated     int64
	ReportsFailed        int64
	ReportLatency        time.Duration
	AverageReportLatency time.Duration

	// Метрики ошибок
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

// NewMetrics создает пустой набор метрик
func NewMetrics() *Metrics {
	return &Metrics{
		ErrorTypes: make(map[string]int64),
	}
}

// RecordRequest записывает метрики запроса; failed - ответ с кодом 5xx
func (m *Metrics) RecordRequest(duration time.Duration, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if status >= 500 {
		m.FailedRequests++
	}
}

// RecordReport записывает метрики построения отчета
func (m *Metrics) RecordReport(duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.ReportsFailed++
		m.recordErrorLocked(err)
		return
	}

	m.ReportsGenerated++
	m.ReportLatency += duration
	m.AverageReportLatency = m.ReportLatency / time.Duration(m.ReportsGenerated)
}

// RecordError записывает метрики ошибки
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recordErrorLocked(err)
}

func (m *Metrics) recordErrorLocked(err error) {
	m.ErrorCount++
	m.LastErrorTime = time.Now()

	m.ErrorTypes[ErrorKind(err)]++
}

// GetMetricsSnapshot возвращает снимок текущих метрик
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	errorTypes := make(map[string]int64, len(m.ErrorTypes))
	for k, v := range m.ErrorTypes {
		errorTypes[k] = v
	}

	return map[string]interface{}{
		"total_requests":         m.TotalRequests,
		"failed_requests":        m.FailedRequests,
		"average_latency":        m.AverageLatency.String(),
		"reports_generated":      m.ReportsGenerated,
		"reports_failed":         m.ReportsFailed,
		"average_report_latency": m.AverageReportLatency.String(),
		"error_count":            m.ErrorCount,
		"last_error_time":        m.LastErrorTime,
		"error_types":            errorTypes,
	}
}
