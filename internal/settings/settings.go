package settings

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Template selects the overlay color scheme.
type Template string

const (
	TemplateClassic Template = "classic"
	TemplatePurple  Template = "purple"
	TemplateGold    Template = "gold"
)

// CurrencyUSD is the only supported display currency.
const CurrencyUSD = "USD"

var (
	ErrInvalidTemplate     = errors.New("settings: unknown template")
	ErrUnsupportedCurrency = errors.New("settings: unsupported currency")
)

// Templates lists the selectable templates in display order.
func Templates() []Template {
	return []Template{TemplateClassic, TemplatePurple, TemplateGold}
}

// Valid reports whether t is one of Templates.
func (t Template) Valid() bool {
	switch t {
	case TemplateClassic, TemplatePurple, TemplateGold:
		return true
	}
	return false
}

// Settings is the device-local overlay preference record.
type Settings struct {
	BannerTitle string   `json:"bannerTitle"`
	Currency    string   `json:"currency"`
	Template    Template `json:"template"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		BannerTitle: "داعمي القناة شهر 11",
		Currency:    CurrencyUSD,
		Template:    TemplateClassic,
	}
}

// Patch is a partial Settings; nil fields are left unchanged.
type Patch struct {
	BannerTitle *string   `json:"bannerTitle,omitempty"`
	Currency    *string   `json:"currency,omitempty"`
	Template    *Template `json:"template,omitempty"`
}

// Validate reports the first field that Apply would ignore.
func (p Patch) Validate() error {
	if p.Template != nil && !p.Template.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTemplate, *p.Template)
	}
	if p.Currency != nil && *p.Currency != CurrencyUSD {
		return fmt.Errorf("%w: %q", ErrUnsupportedCurrency, *p.Currency)
	}
	return nil
}

// Apply returns s with every valid field of p copied over. Invalid fields are skipped one by one.
func (s Settings) Apply(p Patch) Settings {
	if p.BannerTitle != nil {
		s.BannerTitle = *p.BannerTitle
	}
	if p.Currency != nil && *p.Currency == CurrencyUSD {
		s.Currency = *p.Currency
	}
	if p.Template != nil && p.Template.Valid() {
		s.Template = *p.Template
	}
	return s
}

// Decode merges a stored record over Defaults. Each known field is type-checked
// on its own; a field that fails keeps its default and is named in rejected.
// err is set only when raw is not a JSON object at all.
func Decode(raw []byte) (s Settings, rejected []string, err error) {
	s = Defaults()
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return s, nil, fmt.Errorf("settings: decode record: %w", err)
	}
	if fields == nil {
		return s, nil, errors.New("settings: record is null")
	}

	var patch Patch
	if v, ok := fields["bannerTitle"]; ok {
		var title string
		if json.Unmarshal(v, &title) == nil {
			patch.BannerTitle = &title
		} else {
			rejected = append(rejected, "bannerTitle")
		}
	}
	if v, ok := fields["currency"]; ok {
		var currency string
		if json.Unmarshal(v, &currency) == nil && currency == CurrencyUSD {
			patch.Currency = &currency
		} else {
			rejected = append(rejected, "currency")
		}
	}
	if v, ok := fields["template"]; ok {
		var tpl Template
		if json.Unmarshal(v, &tpl) == nil && tpl.Valid() {
			patch.Template = &tpl
		} else {
			rejected = append(rejected, "template")
		}
	}
	return s.Apply(patch), rejected, nil
}
