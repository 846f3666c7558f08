package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/config"
	"fintrack/database"
	"fintrack/models"
	"fintrack/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// countingStore считает обращения к хранилищу
type countingStore struct {
	calls   int
	entries []models.ReportEntry
	err     error
	start   time.Time
	end     time.Time
}

func (s *countingStore) FindTransactionsForUserInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.ReportEntry, error) {
	s.calls++
	s.start, s.end = start, end
	return s.entries, s.err
}

func newTestReportService(store ReportStore) *ReportService {
	s := NewReportService(store, testConfig(), utils.NewMetrics())
	s.now = fixedClock
	return s
}

func TestGetReportMarchScenario(t *testing.T) {
	store := database.NewMemoryStore()
	user := seedUser(t, store, "report@example.com")
	budget := seedBudget(t, store, user.ID, 5000, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))

	seedTransaction(t, store, budget, models.TransactionTypeIncome, "1000", "Salary", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	seedTransaction(t, store, budget, models.TransactionTypeExpense, "300", "Food", time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC))
	seedTransaction(t, store, budget, models.TransactionTypeExpense, "100", "Food", time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC))

	report, err := newTestReportService(store).GetReport(context.Background(), user.ID, 2024, 3)
	if err != nil {
		t.Fatalf("GetReport() error = %v", err)
	}

	checks := []struct {
		name string
		got  decimal.Decimal
		want int64
	}{
		{"total_income", report.TotalIncome, 1000},
		{"total_expenses", report.TotalExpenses, 300},
		{"net_savings", report.NetSavings, 700},
		{"previous_month_total_expense", report.Trends.PreviousMonthTotalExpense, 100},
		{"previous_month_total_income", report.Trends.PreviousMonthTotalIncome, 0},
	}
	for _, c := range checks {
		if !c.got.Equal(decimal.NewFromInt(c.want)) {
			t.Errorf("%s = %s, want %d", c.name, c.got, c.want)
		}
	}

	if report.Month != "March 2024" {
		t.Errorf("Month = %q, want %q", report.Month, "March 2024")
	}
	if report.Trends.IncomeTrend != "100000%" {
		t.Errorf("IncomeTrend = %q, want 100000%%", report.Trends.IncomeTrend)
	}
	if report.Trends.ExpenseTrend != "20000%" {
		t.Errorf("ExpenseTrend = %q, want 20000%%", report.Trends.ExpenseTrend)
	}
	if len(report.IncomeDetails) != 1 || report.IncomeDetails[0].Category != "Salary" {
		t.Errorf("IncomeDetails = %+v, want one Salary entry", report.IncomeDetails)
	}
	if len(report.ExpenseDetails) != 1 || !report.ExpenseDetails[0].Amount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("ExpenseDetails = %+v, want only this month's 300", report.ExpenseDetails)
	}
}

func TestGetReportValidationBeforeFetch(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
	}{
		{"month zero", 2024, 0},
		{"month thirteen", 2024, 13},
		{"year before 1900", 1899, 5},
		{"year in the future", fixedNow.Year() + 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &countingStore{}
			_, err := newTestReportService(store).GetReport(context.Background(), uuid.New(), tt.year, tt.month)

			if !errors.Is(err, ErrValidation) {
				t.Errorf("GetReport() error = %v, want ErrValidation", err)
			}
			if store.calls != 0 {
				t.Errorf("store called %d times, want 0", store.calls)
			}
		})
	}
}

func TestParseReportPeriodRejectsNonInteger(t *testing.T) {
	if _, _, err := ParseReportPeriod("2024", "march"); !errors.Is(err, ErrValidation) {
		t.Errorf("ParseReportPeriod(month=march) error = %v, want ErrValidation", err)
	}
	if _, _, err := ParseReportPeriod("20x4", "3"); !errors.Is(err, ErrValidation) {
		t.Errorf("ParseReportPeriod(year=20x4) error = %v, want ErrValidation", err)
	}

	year, month, err := ParseReportPeriod("2024", "03")
	if err != nil || year != 2024 || month != 3 {
		t.Errorf("ParseReportPeriod(2024, 03) = %d, %d, %v", year, month, err)
	}
}

func TestGetReportSingleWidenedFetch(t *testing.T) {
	store := &countingStore{}
	if _, err := newTestReportService(store).GetReport(context.Background(), uuid.New(), 2024, 1); err != nil {
		t.Fatalf("GetReport() error = %v", err)
	}

	if store.calls != 1 {
		t.Fatalf("store called %d times, want 1", store.calls)
	}
	if want := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC); !store.start.Equal(want) {
		t.Errorf("fetch start = %v, want %v", store.start, want)
	}
	if want := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC); !store.end.Equal(want) {
		t.Errorf("fetch end = %v, want %v", store.end, want)
	}
}

func TestGetReportBoundaries(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	next := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	prevStart := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	store := &countingStore{entries: []models.ReportEntry{
		{Amount: decimal.NewFromInt(1), TransactionType: models.TransactionTypeIncome, TransactionDate: start, CategoryName: "a"},
		{Amount: decimal.NewFromInt(2), TransactionType: models.TransactionTypeIncome, TransactionDate: next, CategoryName: "b"},
		{Amount: decimal.NewFromInt(4), TransactionType: models.TransactionTypeIncome, TransactionDate: start.Add(-time.Nanosecond), CategoryName: "c"},
		{Amount: decimal.NewFromInt(8), TransactionType: models.TransactionTypeExpense, TransactionDate: prevStart, CategoryName: "d"},
	}}

	report, err := newTestReportService(store).GetReport(context.Background(), uuid.New(), 2024, 3)
	if err != nil {
		t.Fatalf("GetReport() error = %v", err)
	}

	if !report.TotalIncome.Equal(decimal.NewFromInt(1)) {
		t.Errorf("TotalIncome = %s, want 1 (first instant included, next month excluded)", report.TotalIncome)
	}
	if !report.Trends.PreviousMonthTotalIncome.Equal(decimal.NewFromInt(4)) {
		t.Errorf("PreviousMonthTotalIncome = %s, want 4", report.Trends.PreviousMonthTotalIncome)
	}
	if !report.Trends.PreviousMonthTotalExpense.Equal(decimal.NewFromInt(8)) {
		t.Errorf("PreviousMonthTotalExpense = %s, want 8", report.Trends.PreviousMonthTotalExpense)
	}
}

func TestGetReportEmpty(t *testing.T) {
	report, err := newTestReportService(&countingStore{}).GetReport(context.Background(), uuid.New(), 2024, 5)
	if err != nil {
		t.Fatalf("GetReport() error = %v", err)
	}

	if !report.TotalIncome.IsZero() || !report.TotalExpenses.IsZero() || !report.NetSavings.IsZero() {
		t.Errorf("empty report totals = %s/%s/%s, want zeros", report.TotalIncome, report.TotalExpenses, report.NetSavings)
	}
	if report.IncomeDetails == nil || report.ExpenseDetails == nil {
		t.Errorf("detail lists must be empty slices, not nil")
	}
	if report.Trends.IncomeTrend != "0%" {
		t.Errorf("IncomeTrend = %q, want 0%%", report.Trends.IncomeTrend)
	}
}

func TestGetReportPropagatesStoreError(t *testing.T) {
	storeErr := errors.New("connection refused")
	_, err := newTestReportService(&countingStore{err: storeErr}).GetReport(context.Background(), uuid.New(), 2024, 5)

	if !errors.Is(err, storeErr) {
		t.Errorf("GetReport() error = %v, want %v", err, storeErr)
	}
}

func TestGetReportRecordsMetrics(t *testing.T) {
	metrics := utils.NewMetrics()
	s := NewReportService(&countingStore{}, testConfig(), metrics)
	s.now = fixedClock

	s.GetReport(context.Background(), uuid.New(), 2024, 5)
	s.GetReport(context.Background(), uuid.New(), 2024, 13)

	snapshot := metrics.GetMetricsSnapshot()
	if snapshot["reports_generated"] != int64(1) {
		t.Errorf("reports_generated = %v, want 1", snapshot["reports_generated"])
	}
	if snapshot["reports_failed"] != int64(1) {
		t.Errorf("reports_failed = %v, want 1", snapshot["reports_failed"])
	}
}

func TestGetReportInvalidYearsShareOneErrorType(t *testing.T) {
	metrics := utils.NewMetrics()
	store := &countingStore{}
	s := NewReportService(store, testConfig(), metrics)
	s.now = fixedClock

	for year := 3000; year < 4000; year++ {
		if _, err := s.GetReport(context.Background(), uuid.New(), year, 1); !errors.Is(err, ErrValidation) {
			t.Fatalf("GetReport(%d) error = %v, want ErrValidation", year, err)
		}
	}
	store.err = errors.New("connection refused")
	s.GetReport(context.Background(), uuid.New(), 2024, 1)

	errorTypes := metrics.GetMetricsSnapshot()["error_types"].(map[string]int64)
	if len(errorTypes) != 2 {
		t.Fatalf("error_types has %d keys, want 2: validation and internal", len(errorTypes))
	}
	if errorTypes["validation"] != 1000 || errorTypes["internal"] != 1 {
		t.Errorf("error_types = %v, want validation 1000 and internal 1", errorTypes)
	}
}

func TestBucketsAccountForAllAmounts(t *testing.T) {
	this, prev := MonthWindows(2024, time.March, time.UTC)
	entries := []models.ReportEntry{
		{Amount: decimal.RequireFromString("10.10"), TransactionType: models.TransactionTypeIncome, TransactionDate: this.Start.AddDate(0, 0, 3)},
		{Amount: decimal.RequireFromString("5.05"), TransactionType: models.TransactionTypeExpense, TransactionDate: this.Start.AddDate(0, 0, 7)},
		{Amount: decimal.RequireFromString("2.20"), TransactionType: models.TransactionTypeIncome, TransactionDate: prev.Start.AddDate(0, 0, 1)},
		{Amount: decimal.RequireFromString("1.01"), TransactionType: models.TransactionTypeExpense, TransactionDate: prev.Start.AddDate(0, 0, 2)},
	}

	report := BuildMonthlyReport("March 2024", this, prev, entries, LegacyTrend)

	var fetched decimal.Decimal
	for _, e := range entries {
		fetched = fetched.Add(e.Amount)
	}
	buckets := report.TotalIncome.
		Add(report.TotalExpenses).
		Add(report.Trends.PreviousMonthTotalIncome).
		Add(report.Trends.PreviousMonthTotalExpense)
	if !buckets.Equal(fetched) {
		t.Errorf("bucket sums = %s, want %s", buckets, fetched)
	}
	if !report.NetSavings.Equal(report.TotalIncome.Sub(report.TotalExpenses)) {
		t.Errorf("NetSavings = %s, want TotalIncome - TotalExpenses", report.NetSavings)
	}
}

func TestMonthWindowsTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	this, prev := MonthWindows(2024, time.January, loc)

	if want := time.Date(2023, 12, 31, 21, 0, 0, 0, time.UTC); !this.Start.Equal(want) {
		t.Errorf("this.Start = %v, want %v", this.Start.UTC(), want)
	}
	if prev.Start.In(loc).Year() != 2023 || prev.Start.In(loc).Month() != time.December {
		t.Errorf("prev.Start = %v, want December 2023", prev.Start)
	}
}

func TestTrendFormulas(t *testing.T) {
	d := decimal.RequireFromString
	tests := []struct {
		name  string
		trend TrendFunc
		this  string
		prev  string
		want  string
	}{
		{"legacy growth", LegacyTrend, "300", "100", "20000%"},
		{"legacy decline", LegacyTrend, "50", "100", "-5000%"},
		{"legacy zero base", LegacyTrend, "10", "0", "1000%"},
		{"percent growth", PercentTrend, "300", "100", "200%"},
		{"percent decline", PercentTrend, "50", "200", "-75%"},
		{"percent rounding", PercentTrend, "100", "300", "-66.67%"},
		{"percent zero base", PercentTrend, "10", "0", "N/A"},
		{"percent both zero", PercentTrend, "0", "0", "0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.trend(d(tt.this), d(tt.prev)); got != tt.want {
				t.Errorf("trend(%s, %s) = %q, want %q", tt.this, tt.prev, got, tt.want)
			}
		})
	}
}

func TestTrendFuncForConfig(t *testing.T) {
	if got := TrendFuncFor(config.TrendFormulaPercent)(decimal.NewFromInt(2), decimal.NewFromInt(1)); got != "100%" {
		t.Errorf("percent formula = %q, want 100%%", got)
	}
	if got := TrendFuncFor(config.TrendFormulaLegacy)(decimal.NewFromInt(2), decimal.NewFromInt(1)); got != "100%" {
		t.Errorf("legacy formula = %q, want 100%%", got)
	}
	if got := TrendFuncFor("")(decimal.NewFromInt(3), decimal.NewFromInt(1)); got != "200%" {
		t.Errorf("default formula = %q, want legacy 200%%", got)
	}
}

func TestPreviousMonth(t *testing.T) {
	s := newTestReportService(&countingStore{})
	year, month := s.PreviousMonth(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if year != 2023 || month != 12 {
		t.Errorf("PreviousMonth(2024-01-05) = %d-%d, want 2023-12", year, month)
	}
}
