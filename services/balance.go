package services

import (
	"fintrack/models"

	"github.com/shopspring/decimal"
)

// ComputeCurrentAmount возвращает остаток бюджета: base + сумма доходов - сумма расходов.
// Учитываются все транзакции бюджета без фильтра по дате; отрицательный остаток допустим.
func ComputeCurrentAmount(base decimal.Decimal, entries []models.BalanceEntry) decimal.Decimal {
	incomes := decimal.Zero
	expenses := decimal.Zero

	for _, e := range entries {
		switch e.TransactionType {
		case models.TransactionTypeIncome:
			incomes = incomes.Add(e.Amount)
		case models.TransactionTypeExpense:
			expenses = expenses.Add(e.Amount)
		}
	}

	return base.Add(incomes).Sub(expenses)
}
