package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Categories used by goal movements
const (
	CategoryGoalContribution = "reserva"
	CategoryGoalWithdrawal   = "retirada_reserva"
)

// Transaction is stored inside a profile document. Amount is always a
// positive magnitude; the sign comes from Type.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	ProfileID   int32           `json:"profileId"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	MetaID      *int32          `json:"metaId,omitempty"`
}

// SignedAmount returns +amount for income and -amount for expense
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// AggregatedTransaction is a transaction tagged with the profile it came from.
// It is never persisted.
type AggregatedTransaction struct {
	Transaction
	ProfileName string `json:"profileName"`
}

// TransactionInput carries user-supplied fields for create and edit
type TransactionInput struct {
	Type        TransactionType
	Category    string
	Description string
	Amount      decimal.Decimal
	Date        time.Time
	MetaID      *int32
}

func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// ValidateAmount requires a positive value with at most two decimal places
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Truncate(2)) {
		return ErrInvalidAmount
	}
	return nil
}

// NewTransaction validates input and builds a transaction owned by profileID.
// Goal references are checked by the caller, which knows the account's goals.
func NewTransaction(profileID int32, in TransactionInput) (Transaction, error) {
	if !in.Type.Valid() {
		return Transaction{}, ErrInvalidTransactionType
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return Transaction{}, ErrCategoryRequired
	}
	if utf8.RuneCountInString(category) > MaxCategoryLength {
		return Transaction{}, ErrCategoryTooLong
	}
	description := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return Transaction{}, ErrDescriptionTooLong
	}
	if err := ValidateAmount(in.Amount); err != nil {
		return Transaction{}, err
	}
	if in.Date.IsZero() {
		return Transaction{}, ErrDateRequired
	}
	return Transaction{
		ID:          uuid.New(),
		ProfileID:   profileID,
		Type:        in.Type,
		Category:    category,
		Description: description,
		Amount:      in.Amount,
		Date:        in.Date.UTC(),
		MetaID:      in.MetaID,
	}, nil
}
