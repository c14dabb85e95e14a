package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

// seedAccount stores an account with the given profile names and returns a
// session manager over it
func seedAccount(t *testing.T, names ...string) (*testutil.MockStore, *SessionManager, uuid.UUID) {
	t.Helper()
	store := testutil.NewMockStore()
	accountID := uuid.New()

	st := domain.NewAccountState(accountID, testNow)
	for _, n := range names {
		if _, err := st.AddProfile(n); err != nil {
			t.Fatalf("seed profile %q: %v", n, err)
		}
	}
	store.PutState(st)

	sessions := NewSessionManager(store)
	sessions.SetClock(func() time.Time { return testNow })
	return store, sessions, accountID
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func income(category, amount string, date time.Time) domain.Transaction {
	return domain.Transaction{
		ID:       uuid.New(),
		Type:     domain.TransactionTypeIncome,
		Category: category,
		Amount:   decimal.RequireFromString(amount),
		Date:     date,
	}
}

func expense(category, amount string, date time.Time) domain.Transaction {
	return domain.Transaction{
		ID:       uuid.New(),
		Type:     domain.TransactionTypeExpense,
		Category: category,
		Amount:   decimal.RequireFromString(amount),
		Date:     date,
	}
}

func mustDec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
