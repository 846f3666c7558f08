package services

import (
	"testing"

	"fintrack/models"

	"github.com/shopspring/decimal"
)

func entry(amount int64, kind models.TransactionType) models.BalanceEntry {
	return models.BalanceEntry{Amount: decimal.NewFromInt(amount), TransactionType: kind}
}

func TestComputeCurrentAmount(t *testing.T) {
	tests := []struct {
		name    string
		base    int64
		entries []models.BalanceEntry
		want    string
	}{
		{"no transactions", 500, nil, "500"},
		{"one expense", 500, []models.BalanceEntry{entry(200, models.TransactionTypeExpense)}, "300"},
		{"income and expense", 500, []models.BalanceEntry{
			entry(1000, models.TransactionTypeIncome),
			entry(300, models.TransactionTypeExpense),
		}, "1200"},
		{"negative balance allowed", 100, []models.BalanceEntry{entry(250, models.TransactionTypeExpense)}, "-150"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeCurrentAmount(decimal.NewFromInt(tt.base), tt.entries)
			if got.String() != tt.want {
				t.Errorf("ComputeCurrentAmount() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComputeCurrentAmountOrderIndependent(t *testing.T) {
	entries := []models.BalanceEntry{
		entry(10, models.TransactionTypeIncome),
		entry(3, models.TransactionTypeExpense),
		{Amount: decimal.RequireFromString("0.10"), TransactionType: models.TransactionTypeIncome},
		{Amount: decimal.RequireFromString("0.20"), TransactionType: models.TransactionTypeExpense},
	}
	base := decimal.RequireFromString("99.99")
	want := ComputeCurrentAmount(base, entries)

	reversed := make([]models.BalanceEntry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}

	if got := ComputeCurrentAmount(base, reversed); !got.Equal(want) {
		t.Errorf("reversed order = %s, want %s", got, want)
	}
	if !want.Equal(decimal.RequireFromString("106.89")) {
		t.Errorf("ComputeCurrentAmount() = %s, want 106.89", want)
	}
}
