package view

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var penPrinter = message.NewPrinter(language.MustParse("es-PE"))

// Currency formats an amount as Peruvian soles, e.g. "S/ 100.30".
func Currency(amount float64) string {
	return penPrinter.Sprintf("S/ %v", number.Decimal(amount,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

var spanishMonths = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Setiembre", "Octubre", "Noviembre", "Diciembre",
}

// PeriodLabel renders a first-of-month period date as "Enero 2026".
func PeriodLabel(period time.Time) string {
	if period.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s %d", spanishMonths[period.Month()-1], period.Year())
}
