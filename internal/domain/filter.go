package domain

import "time"

type Scope string

const (
	ScopeIndividual Scope = "individual"
	ScopeCasal      Scope = "casal"
	ScopeFamilia    Scope = "familia"
)

func (s Scope) Valid() bool {
	switch s {
	case ScopeIndividual, ScopeCasal, ScopeFamilia:
		return true
	}
	return false
}

// ReportMode selects between combined metrics and a raw per-profile comparison
type ReportMode string

const (
	ReportModeCombined   ReportMode = "combined"
	ReportModeComparison ReportMode = "comparison"
)

// Filter is the account's current view selection
type Filter struct {
	Scope      Scope `json:"scope"`
	Month      int   `json:"month"`
	Year       int   `json:"year"`
	Comparison bool  `json:"comparison"`
}

func (f Filter) Mode() ReportMode {
	if f.Comparison {
		return ReportModeComparison
	}
	return ReportModeCombined
}

// Validate checks scope and period
func (f Filter) Validate() error {
	if !f.Scope.Valid() {
		return ErrInvalidScope
	}
	if f.Month < 1 || f.Month > 12 || f.Year < 1 {
		return ErrInvalidPeriod
	}
	return nil
}

// DefaultFilter is the family view of the month containing now
func DefaultFilter(now time.Time) Filter {
	now = now.UTC()
	return Filter{
		Scope: ScopeFamilia,
		Month: int(now.Month()),
		Year:  now.Year(),
	}
}

// YearMonth identifies a calendar month
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func YearMonthOf(t time.Time) YearMonth {
	t = t.UTC()
	return YearMonth{Year: t.Year(), Month: int(t.Month())}
}

func (ym YearMonth) Valid() bool {
	return ym.Month >= 1 && ym.Month <= 12 && ym.Year >= 1
}

// Before reports whether ym is strictly earlier than other
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}
