package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CategoryTotal struct {
	Category string          `json:"category"`
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Net      decimal.Decimal `json:"net"`
}

// SeriesPoint is one calendar day. Balance is the running net up to that day.
type SeriesPoint struct {
	Date    time.Time       `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
	Balance decimal.Decimal `json:"balance"`
}

type Metrics struct {
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	Net        decimal.Decimal `json:"net"`
	Count      int             `json:"count"`
	ByCategory []CategoryTotal `json:"byCategory"`
	Series     []SeriesPoint   `json:"series"`
}

type ProfileMetrics struct {
	ProfileID   int32   `json:"profileId"`
	ProfileName string  `json:"profileName"`
	Metrics     Metrics `json:"metrics"`
}

// ProfileTransactions is one profile's raw sequence in comparison mode
type ProfileTransactions struct {
	ProfileID    int32                   `json:"profileId"`
	ProfileName  string                  `json:"profileName"`
	Transactions []AggregatedTransaction `json:"transactions"`
}

// PeriodRange is an inclusive span of calendar months
type PeriodRange struct {
	From YearMonth `json:"from"`
	To   YearMonth `json:"to"`
}

// ReportRequest selects profiles and the view. Empty ProfileIDs means all
// profiles of the account; a nil Filter means the account's stored filter.
// A non-nil Range replaces the filter's month in combined mode.
type ReportRequest struct {
	ProfileIDs []int32
	Filter     *Filter
	Range      *PeriodRange
}

type Report struct {
	Mode         ReportMode              `json:"mode"`
	Filter       Filter                  `json:"filter"`
	Range        *PeriodRange            `json:"range,omitempty"`
	Transactions []AggregatedTransaction `json:"transactions,omitempty"`
	Combined     *Metrics                `json:"combined,omitempty"`
	PerProfile   []ProfileMetrics        `json:"perProfile,omitempty"`
	Comparison   []ProfileTransactions   `json:"comparison,omitempty"`
	GeneratedAt  time.Time               `json:"generatedAt"`
}
