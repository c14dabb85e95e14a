package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
)

type ProgressColor string

const (
	ProgressColorRed    ProgressColor = "red"
	ProgressColorYellow ProgressColor = "yellow"
	ProgressColorGreen  ProgressColor = "green"
)

var (
	hundred         = decimal.NewFromInt(100)
	yellowThreshold = decimal.NewFromInt(40)
	greenThreshold  = decimal.NewFromInt(70)
)

type Withdrawal struct {
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
	Reason string          `json:"reason,omitempty"`
}

// Goal (meta) is a savings target. Monthly is keyed by "YYYY-MM".
type Goal struct {
	ID          int32                      `json:"id"`
	Description string                     `json:"description"`
	Target      decimal.Decimal            `json:"target"`
	Saved       decimal.Decimal            `json:"saved"`
	Monthly     map[string]decimal.Decimal `json:"monthly"`
	Withdrawals []Withdrawal               `json:"withdrawals"`
	CreatedAt   time.Time                  `json:"createdAt"`
}

// GoalView is a goal with the values computed for display
type GoalView struct {
	Goal
	Progress  decimal.Decimal `json:"progress"`
	Color     ProgressColor   `json:"color"`
	Status    GoalStatus      `json:"status"`
	Remaining decimal.Decimal `json:"remaining"`
}

// GoalDiscrepancy reports a goal whose saved value disagrees with its history
type GoalDiscrepancy struct {
	GoalID      int32           `json:"goalId"`
	Description string          `json:"description"`
	Saved       decimal.Decimal `json:"saved"`
	Expected    decimal.Decimal `json:"expected"`
	Difference  decimal.Decimal `json:"difference"`
}

// ValidateGoalInput trims the description and checks both fields
func ValidateGoalInput(description string, target decimal.Decimal) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", ErrGoalDescriptionRequired
	}
	if utf8.RuneCountInString(description) > MaxGoalDescriptionLength {
		return "", ErrGoalDescriptionTooLong
	}
	if !target.IsPositive() || !target.Equal(target.Truncate(2)) {
		return "", ErrInvalidGoalTarget
	}
	return description, nil
}

// MonthKey formats the monthly map key for t
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

func (g *Goal) Status() GoalStatus {
	if g.Saved.GreaterThanOrEqual(g.Target) {
		return GoalStatusCompleted
	}
	return GoalStatusActive
}

// Progress is saved/target as a percentage clamped to [0, 100] and rounded
// to one decimal place. A non-positive target yields 0.
func (g *Goal) Progress() decimal.Decimal {
	return GoalProgress(g.Saved, g.Target)
}

func GoalProgress(saved, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.Zero
	}
	pct := saved.Div(target).Mul(hundred)
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return pct.Round(1)
}

// ColorFor maps a progress percentage to its display color.
// Exactly 70 is still yellow.
func ColorFor(pct decimal.Decimal) ProgressColor {
	switch {
	case pct.LessThan(yellowThreshold):
		return ProgressColorRed
	case pct.GreaterThan(greenThreshold):
		return ProgressColorGreen
	default:
		return ProgressColorYellow
	}
}

// Remaining is how much is left to reach the target, never negative
func (g *Goal) Remaining() decimal.Decimal {
	rem := g.Target.Sub(g.Saved)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

func (g *Goal) View() GoalView {
	pct := g.Progress()
	return GoalView{
		Goal:      *g,
		Progress:  pct,
		Color:     ColorFor(pct),
		Status:    g.Status(),
		Remaining: g.Remaining(),
	}
}

// Contribute adds amount to saved and to the month of date
func (g *Goal) Contribute(amount decimal.Decimal, date time.Time) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if g.Monthly == nil {
		g.Monthly = map[string]decimal.Decimal{}
	}
	key := MonthKey(date)
	g.Monthly[key] = g.Monthly[key].Add(amount)
	g.Saved = g.Saved.Add(amount)
	return nil
}

// Withdraw removes amount from saved and records it in the withdrawal history
func (g *Goal) Withdraw(amount decimal.Decimal, date time.Time, reason string) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > MaxWithdrawalReasonLength {
		return ErrWithdrawalReasonTooLong
	}
	if amount.GreaterThan(g.Saved) {
		return ErrInsufficientSaved
	}
	g.Saved = g.Saved.Sub(amount)
	g.Withdrawals = append(g.Withdrawals, Withdrawal{
		Amount: amount,
		Date:   date.UTC(),
		Reason: reason,
	})
	return nil
}

// ExpectedSaved is sum(monthly) - sum(withdrawals)
func (g *Goal) ExpectedSaved() decimal.Decimal {
	total := decimal.Zero
	for _, v := range g.Monthly {
		total = total.Add(v)
	}
	for _, w := range g.Withdrawals {
		total = total.Sub(w.Amount)
	}
	return total
}

// Reconcile returns saved minus the value implied by the history.
// Zero means the goal is consistent.
func (g *Goal) Reconcile() decimal.Decimal {
	return g.Saved.Sub(g.ExpectedSaved())
}
