package service

import (
	"fmt"

	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/util"
)

// FilterByMonth keeps the transactions dated within month/year (UTC calendar)
func FilterByMonth(txs []domain.AggregatedTransaction, month, year int) domain.Outcome[[]domain.AggregatedTransaction] {
	ym := domain.YearMonth{Year: year, Month: month}
	if !ym.Valid() {
		return domain.Invalid[[]domain.AggregatedTransaction](domain.ErrInvalidPeriod.Code, domain.ErrInvalidPeriod.Message)
	}

	out := make([]domain.AggregatedTransaction, 0)
	for _, tx := range txs {
		if domain.YearMonthOf(tx.Date) == ym {
			out = append(out, tx)
		}
	}
	if len(out) == 0 {
		return domain.Empty[[]domain.AggregatedTransaction](
			domain.ReasonNoTransactionsInPeriod,
			fmt.Sprintf("Nenhuma transação encontrada em %s", util.FormatPeriod(month, year)),
		)
	}
	return domain.Ok(out)
}

// FilterByRange keeps transactions from the start of from through the end of to
func FilterByRange(txs []domain.AggregatedTransaction, from, to domain.YearMonth) domain.Outcome[[]domain.AggregatedTransaction] {
	if !from.Valid() || !to.Valid() || to.Before(from) {
		return domain.Invalid[[]domain.AggregatedTransaction](domain.ErrInvalidPeriod.Code, domain.ErrInvalidPeriod.Message)
	}

	out := make([]domain.AggregatedTransaction, 0)
	for _, tx := range txs {
		ym := domain.YearMonthOf(tx.Date)
		if !ym.Before(from) && !to.Before(ym) {
			out = append(out, tx)
		}
	}
	if len(out) == 0 {
		return domain.Empty[[]domain.AggregatedTransaction](
			domain.ReasonNoTransactionsInPeriod,
			fmt.Sprintf("Nenhuma transação encontrada entre %s e %s",
				util.FormatPeriod(from.Month, from.Year), util.FormatPeriod(to.Month, to.Year)),
		)
	}
	return domain.Ok(out)
}
