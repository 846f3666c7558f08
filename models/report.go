package models

import "github.com/shopspring/decimal"

// CategoryAmount сумма одной транзакции с названием категории
type CategoryAmount struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
}

// ReportTrends итоги предыдущего месяца и изменения относительно него
type ReportTrends struct {
	PreviousMonthTotalIncome  decimal.Decimal `json:"previous_month_total_income"`
	PreviousMonthTotalExpense decimal.Decimal `json:"previous_month_total_expense"`
	IncomeTrend               string          `json:"income_trend"`
	ExpenseTrend              string          `json:"expense_trend"`
}

// MonthlyReport вычисляемый месячный отчет, не хранится в БД
type MonthlyReport struct {
	Month          string           `json:"month"`
	TotalIncome    decimal.Decimal  `json:"total_income"`
	TotalExpenses  decimal.Decimal  `json:"total_expenses"`
	NetSavings     decimal.Decimal  `json:"net_savings"`
	IncomeDetails  []CategoryAmount `json:"income_details"`
	ExpenseDetails []CategoryAmount `json:"expense_details"`
	Trends         ReportTrends     `json:"trends"`
}
