package util

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// MonthName returns the capitalized pt-BR name of month (1-12), or "" when out of range.
// A cases.Caser is stateful, so each call gets its own.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return cases.Title(language.BrazilianPortuguese).String(monthNames[month-1])
}

// FormatPeriod renders a month and year as "Março de 2024"
func FormatPeriod(month, year int) string {
	return fmt.Sprintf("%s de %d", MonthName(month), year)
}

// StartOfDay truncates t to midnight UTC
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
