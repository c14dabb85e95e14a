package service

import (
	"sort"
	"time"

	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/util"
	"github.com/shopspring/decimal"
)

// ComputeMetrics summarizes a transaction set. Categories appear in order of
// first occurrence; the daily series is ascending with a running balance.
func ComputeMetrics(txs []domain.AggregatedTransaction) domain.Metrics {
	m := domain.Metrics{
		Income:     decimal.Zero,
		Expense:    decimal.Zero,
		Net:        decimal.Zero,
		Count:      len(txs),
		ByCategory: []domain.CategoryTotal{},
		Series:     []domain.SeriesPoint{},
	}

	catIndex := make(map[string]int)
	days := make(map[string]*domain.SeriesPoint)

	for _, tx := range txs {
		i, ok := catIndex[tx.Category]
		if !ok {
			i = len(m.ByCategory)
			catIndex[tx.Category] = i
			m.ByCategory = append(m.ByCategory, domain.CategoryTotal{
				Category: tx.Category,
				Income:   decimal.Zero,
				Expense:  decimal.Zero,
				Net:      decimal.Zero,
			})
		}
		cat := &m.ByCategory[i]

		day := util.StartOfDay(tx.Date)
		key := day.Format(time.DateOnly)
		point, ok := days[key]
		if !ok {
			point = &domain.SeriesPoint{Date: day, Income: decimal.Zero, Expense: decimal.Zero, Net: decimal.Zero}
			days[key] = point
		}

		switch tx.Type {
		case domain.TransactionTypeIncome:
			m.Income = m.Income.Add(tx.Amount)
			cat.Income = cat.Income.Add(tx.Amount)
			point.Income = point.Income.Add(tx.Amount)
		case domain.TransactionTypeExpense:
			m.Expense = m.Expense.Add(tx.Amount)
			cat.Expense = cat.Expense.Add(tx.Amount)
			point.Expense = point.Expense.Add(tx.Amount)
		}
		cat.Net = cat.Income.Sub(cat.Expense)
		point.Net = point.Income.Sub(point.Expense)
	}
	m.Net = m.Income.Sub(m.Expense)

	for _, p := range days {
		m.Series = append(m.Series, *p)
	}
	sort.Slice(m.Series, func(i, j int) bool {
		return m.Series[i].Date.Before(m.Series[j].Date)
	})
	balance := decimal.Zero
	for i := range m.Series {
		balance = balance.Add(m.Series[i].Net)
		m.Series[i].Balance = balance
	}

	return m
}

// ComputeProfileMetrics runs ComputeMetrics once per profile
func ComputeProfileMetrics(profiles []domain.Profile, txs []domain.AggregatedTransaction) []domain.ProfileMetrics {
	groups := SplitByProfile(profiles, txs)
	out := make([]domain.ProfileMetrics, len(groups))
	for i, g := range groups {
		out[i] = domain.ProfileMetrics{
			ProfileID:   g.ProfileID,
			ProfileName: g.ProfileName,
			Metrics:     ComputeMetrics(g.Transactions),
		}
	}
	return out
}
