package domain

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Supporter is a named pledge shown on the overlay.
type Supporter struct {
	ID        string
	Name      string
	Amount    float64
	Message   *string
	CreatedAt time.Time
}

// SupporterInput carries the mutable fields of a supporter. Update replaces all three.
type SupporterInput struct {
	Name    string
	Amount  float64
	Message *string
}

// NewSupporterInput trims the name and turns a blank message into nil.
func NewSupporterInput(name string, amount float64, message string) SupporterInput {
	in := SupporterInput{
		Name:   strings.TrimSpace(name),
		Amount: RoundAmount(amount),
	}
	if msg := strings.TrimSpace(message); msg != "" {
		in.Message = &msg
	}
	return in
}

// Validate rejects empty names and negative or non-finite amounts.
func (in SupporterInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ParseAmount parses a form value into a dollar amount rounded to cents.
func ParseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrAmountRequired
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, ErrInvalidAmount
	}
	return RoundAmount(v), nil
}

// RoundAmount rounds to two fractional digits.
func RoundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}

// SortByAmountDesc orders supporters by amount, highest first. Ties keep their input order.
func SortByAmountDesc(items []Supporter) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Amount > items[j].Amount
	})
}

// MessageText returns the message or an empty string.
func (s Supporter) MessageText() string {
	if s.Message == nil {
		return ""
	}
	return *s.Message
}
