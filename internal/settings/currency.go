package settings

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatCurrency renders amount as en-US dollars with exactly two decimals.
// NaN and infinities render as "$0.00".
func FormatCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "$0.00"
	}
	cents := math.Round(amount * 100)
	if cents == 0 {
		return "$0.00"
	}
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	p := message.NewPrinter(language.AmericanEnglish)
	return sign + "$" + p.Sprintf("%.2f", cents/100)
}
