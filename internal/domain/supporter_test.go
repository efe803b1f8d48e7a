package domain

import (
	"errors"
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr error
	}{
		{name: "integer", raw: "10", want: 10},
		{name: "cents", raw: " 12.5 ", want: 12.5},
		{name: "rounds to cents", raw: "1.239", want: 1.24},
		{name: "zero allowed", raw: "0", want: 0},
		{name: "empty", raw: "  ", wantErr: ErrAmountRequired},
		{name: "not a number", raw: "ten", wantErr: ErrInvalidAmount},
		{name: "negative", raw: "-3", wantErr: ErrInvalidAmount},
		{name: "nan", raw: "NaN", wantErr: ErrInvalidAmount},
		{name: "inf", raw: "+Inf", wantErr: ErrInvalidAmount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAmount(tc.raw)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("ParseAmount(%q) error = %v, want %v", tc.raw, err, tc.wantErr)
				}
				if !errors.Is(err, ErrInvalidSupporter) {
					t.Fatalf("ParseAmount(%q) error %v should wrap ErrInvalidSupporter", tc.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("ParseAmount(%q) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestSupporterInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      SupporterInput
		wantErr error
	}{
		{name: "valid", in: NewSupporterInput("Sara", 5, "")},
		{name: "blank name", in: NewSupporterInput("   ", 5, ""), wantErr: ErrNameRequired},
		{name: "negative", in: SupporterInput{Name: "a", Amount: -0.01}, wantErr: ErrInvalidAmount},
		{name: "nan", in: SupporterInput{Name: "a", Amount: math.NaN()}, wantErr: ErrInvalidAmount},
		{name: "inf", in: SupporterInput{Name: "a", Amount: math.Inf(1)}, wantErr: ErrInvalidAmount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.wantErr == nil && err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewSupporterInputBlankMessageIsNil(t *testing.T) {
	in := NewSupporterInput(" Omar ", 3.333, "   ")
	if in.Message != nil {
		t.Fatalf("expected nil message, got %q", *in.Message)
	}
	if in.Name != "Omar" {
		t.Fatalf("Name = %q, want %q", in.Name, "Omar")
	}
	if in.Amount != 3.33 {
		t.Fatalf("Amount = %v, want 3.33", in.Amount)
	}

	in = NewSupporterInput("Omar", 1, " thanks ")
	if in.Message == nil || *in.Message != "thanks" {
		t.Fatalf("Message = %v, want %q", in.Message, "thanks")
	}
}

func TestSortByAmountDescKeepsTies(t *testing.T) {
	items := []Supporter{
		{ID: "a", Amount: 10},
		{ID: "b", Amount: 50},
		{ID: "c", Amount: 30},
		{ID: "d", Amount: 30},
	}
	SortByAmountDesc(items)

	wantIDs := []string{"b", "c", "d", "a"}
	for i, id := range wantIDs {
		if items[i].ID != id {
			t.Fatalf("items[%d].ID = %q, want %q (got %+v)", i, items[i].ID, id, items)
		}
	}
}
