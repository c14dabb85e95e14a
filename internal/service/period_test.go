package service

import (
	"testing"
	"time"

	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aggregated(txs ...domain.Transaction) []domain.AggregatedTransaction {
	out := make([]domain.AggregatedTransaction, len(txs))
	for i, tx := range txs {
		out[i] = domain.AggregatedTransaction{Transaction: tx, ProfileName: "Ana"}
	}
	return out
}

func TestFilterByMonth(t *testing.T) {
	txs := aggregated(
		income("salario", "1000", day(2024, 2, 29)),
		expense("mercado", "50", day(2024, 3, 1)),
		expense("luz", "80", time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)),
		income("salario", "1000", day(2024, 4, 1)),
	)

	out := FilterByMonth(txs, 3, 2024)
	require.True(t, out.IsOK())
	require.Len(t, out.Value, 2)
	assert.Equal(t, "mercado", out.Value[0].Category)
	assert.Equal(t, "luz", out.Value[1].Category)
}

func TestFilterByMonth_UsesUTCCalendar(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	// 22:00 on 31 March in Brasília is already April in UTC
	txs := aggregated(expense("jantar", "90", time.Date(2024, 3, 31, 22, 0, 0, 0, brt)))

	assert.Equal(t, domain.OutcomeEmpty, FilterByMonth(txs, 3, 2024).Kind)
	assert.True(t, FilterByMonth(txs, 4, 2024).IsOK())
}

func TestFilterByMonth_NoTransactionsInPeriod(t *testing.T) {
	txs := aggregated(income("salario", "1000", day(2024, 2, 5)))

	out := FilterByMonth(txs, 3, 2024)
	assert.Equal(t, domain.OutcomeEmpty, out.Kind)
	assert.Equal(t, domain.ReasonNoTransactionsInPeriod, out.Code)
	assert.Equal(t, "Nenhuma transação encontrada em Março de 2024", out.Message)
}

func TestFilterByMonth_InvalidMonth(t *testing.T) {
	for _, m := range []int{0, 13, -1} {
		out := FilterByMonth(nil, m, 2024)
		assert.Equal(t, domain.OutcomeInvalid, out.Kind, "month %d", m)
		assert.Equal(t, "invalid_period", out.Code)
	}
}

func TestFilterByRange(t *testing.T) {
	txs := aggregated(
		income("a", "1", day(2023, 12, 31)),
		income("b", "1", day(2024, 1, 1)),
		income("c", "1", day(2024, 2, 15)),
		income("d", "1", day(2024, 3, 31)),
		income("e", "1", day(2024, 4, 1)),
	)

	out := FilterByRange(txs, domain.YearMonth{Year: 2024, Month: 1}, domain.YearMonth{Year: 2024, Month: 3})
	require.True(t, out.IsOK())
	var cats []string
	for _, tx := range out.Value {
		cats = append(cats, tx.Category)
	}
	assert.Equal(t, []string{"b", "c", "d"}, cats)

	single := FilterByRange(txs, domain.YearMonth{Year: 2023, Month: 12}, domain.YearMonth{Year: 2023, Month: 12})
	require.True(t, single.IsOK())
	assert.Len(t, single.Value, 1)
}

func TestFilterByRange_Errors(t *testing.T) {
	txs := aggregated(income("a", "1", day(2024, 1, 1)))

	reversed := FilterByRange(txs, domain.YearMonth{Year: 2024, Month: 3}, domain.YearMonth{Year: 2024, Month: 1})
	assert.Equal(t, domain.OutcomeInvalid, reversed.Kind)

	empty := FilterByRange(txs, domain.YearMonth{Year: 2025, Month: 1}, domain.YearMonth{Year: 2025, Month: 2})
	assert.Equal(t, domain.OutcomeEmpty, empty.Kind)
	assert.Equal(t, domain.ReasonNoTransactionsInPeriod, empty.Code)
	assert.Contains(t, empty.Message, "Janeiro de 2025")
}
