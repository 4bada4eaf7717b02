package advisory

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders an amount with Brazilian grouping and decimal marks,
// e.g. 1500 -> "1.500" and 1234.5 -> "1.234,5". No currency symbol.
func FormatBRL(v float64) string {
	return brPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}
