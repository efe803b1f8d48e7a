package view

import "strconv"

// formatAmountInput renders an amount for the edit form without trailing zeros.
func formatAmountInput(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
