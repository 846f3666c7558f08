package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fintrack/config"
	"fintrack/models"
	"fintrack/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const minReportYear = 1900

var hundred = decimal.NewFromInt(100)

// ReportWindow полуоткрытый интервал дат [Start, End)
type ReportWindow struct {
	Start time.Time
	End   time.Time
}

// Contains сообщает, попадает ли момент t в окно
func (w ReportWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// MonthWindows возвращает окна целевого и предыдущего месяца в часовом поясе loc.
// Январь переходит на декабрь предыдущего года.
func MonthWindows(year int, month time.Month, loc *time.Location) (this, prev ReportWindow) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	this = ReportWindow{Start: start, End: start.AddDate(0, 1, 0)}
	prev = ReportWindow{Start: start.AddDate(0, -1, 0), End: start}
	return this, prev
}

// ParseReportPeriod разбирает год и месяц из строк запроса
func ParseReportPeriod(yearStr, monthStr string) (int, int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(yearStr))
	if err != nil {
		return 0, 0, validationError("год должен быть целым числом: %q", yearStr)
	}
	month, err := strconv.Atoi(strings.TrimSpace(monthStr))
	if err != nil {
		return 0, 0, validationError("месяц должен быть целым числом: %q", monthStr)
	}
	return year, month, nil
}

// ValidatePeriod проверяет месяц (1..12) и год (1900..текущий год на момент now)
func ValidatePeriod(year, month int, now time.Time) error {
	if month < 1 || month > 12 {
		return validationError("месяц должен быть от 1 до 12, получено %d", month)
	}
	if year < minReportYear || year > now.Year() {
		return validationError("год должен быть от %d до %d, получено %d", minReportYear, now.Year(), year)
	}
	return nil
}

// TrendFunc форматирует изменение итога относительно предыдущего месяца
type TrendFunc func(this, prev decimal.Decimal) string

// LegacyTrend разница итогов, умноженная на 100: (this-prev)*100
func LegacyTrend(this, prev decimal.Decimal) string {
	return this.Sub(prev).Mul(hundred).String() + "%"
}

// PercentTrend изменение в процентах от предыдущего месяца: (this-prev)/prev*100.
// При нулевой базе возвращает "0%", если оба итога нулевые, иначе "N/A".
func PercentTrend(this, prev decimal.Decimal) string {
	if prev.IsZero() {
		if this.IsZero() {
			return "0%"
		}
		return "N/A"
	}
	return this.Sub(prev).Div(prev).Mul(hundred).Round(2).String() + "%"
}

// TrendFuncFor возвращает функцию тренда для формулы из конфигурации
func TrendFuncFor(formula string) TrendFunc {
	if formula == config.TrendFormulaPercent {
		return PercentTrend
	}
	return LegacyTrend
}

// MonthLabel подпись месяца отчета, например "March 2024"
func MonthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", month, year)
}

// BuildMonthlyReport раскладывает транзакции по окнам и типам и собирает отчет.
// Транзакции вне обоих окон игнорируются.
func BuildMonthlyReport(label string, this, prev ReportWindow, entries []models.ReportEntry, trend TrendFunc) *models.MonthlyReport {
	var thisIncome, thisExpense, prevIncome, prevExpense decimal.Decimal
	incomeDetails := []models.CategoryAmount{}
	expenseDetails := []models.CategoryAmount{}

	for _, e := range entries {
		switch {
		case this.Contains(e.TransactionDate):
			detail := models.CategoryAmount{Amount: e.Amount, Category: e.CategoryName}
			switch e.TransactionType {
			case models.TransactionTypeIncome:
				thisIncome = thisIncome.Add(e.Amount)
				incomeDetails = append(incomeDetails, detail)
			case models.TransactionTypeExpense:
				thisExpense = thisExpense.Add(e.Amount)
				expenseDetails = append(expenseDetails, detail)
			}
		case prev.Contains(e.TransactionDate):
			switch e.TransactionType {
			case models.TransactionTypeIncome:
				prevIncome = prevIncome.Add(e.Amount)
			case models.TransactionTypeExpense:
				prevExpense = prevExpense.Add(e.Amount)
			}
		}
	}

	return &models.MonthlyReport{
		Month:          label,
		TotalIncome:    thisIncome,
		TotalExpenses:  thisExpense,
		NetSavings:     thisIncome.Sub(thisExpense),
		IncomeDetails:  incomeDetails,
		ExpenseDetails: expenseDetails,
		Trends: models.ReportTrends{
			PreviousMonthTotalIncome:  prevIncome,
			PreviousMonthTotalExpense: prevExpense,
			IncomeTrend:               trend(thisIncome, prevIncome),
			ExpenseTrend:              trend(thisExpense, prevExpense),
		},
	}
}

// ReportService строит месячные отчеты пользователя
type ReportService struct {
	store   ReportStore
	loc     *time.Location
	trend   TrendFunc
	metrics *utils.Metrics
	now     func() time.Time
}

// NewReportService создает новый экземпляр ReportService
func NewReportService(store ReportStore, cfg *config.Config, metrics *utils.Metrics) *ReportService {
	return &ReportService{
		store:   store,
		loc:     cfg.Location(),
		trend:   TrendFuncFor(cfg.Report.TrendFormula),
		metrics: metrics,
		now:     time.Now,
	}
}

// GetReport строит отчет за month/year: итоги месяца, детализация по категориям
// и тренды относительно предыдущего месяца. Период проверяется до обращения к хранилищу.
func (s *ReportService) GetReport(ctx context.Context, userID uuid.UUID, year, month int) (report *models.MonthlyReport, err error) {
	start := time.Now()
	defer func() {
		utils.LogOperation("GetReport", start, err)
		if s.metrics != nil {
			s.metrics.RecordReport(time.Since(start), err)
		}
	}()

	if err := ValidatePeriod(year, month, s.now().In(s.loc)); err != nil {
		return nil, err
	}

	this, prev := MonthWindows(year, time.Month(month), s.loc)

	// Одна выборка на оба окна
	entries, err := s.store.FindTransactionsForUserInRange(ctx, userID, prev.Start, this.End)
	if err != nil {
		return nil, err
	}

	return BuildMonthlyReport(MonthLabel(year, time.Month(month)), this, prev, entries, s.trend), nil
}

// PreviousMonth возвращает год и месяц, предшествующие моменту now в часовом поясе отчетов
func (s *ReportService) PreviousMonth(now time.Time) (int, int) {
	prev := time.Date(now.In(s.loc).Year(), now.In(s.loc).Month(), 1, 0, 0, 0, 0, s.loc).AddDate(0, -1, 0)
	return prev.Year(), int(prev.Month())
}
