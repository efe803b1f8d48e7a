package view

import (
	"context"

	"github.com/rs/zerolog"

	"supporterboard/internal/domain"
	"supporterboard/internal/settings"
)

// TopTierSize is how many leading supporters get a medal.
const TopTierSize = 3

var medals = [TopTierSize]string{"🥇", "🥈", "🥉"}

var templateClasses = map[settings.Template]string{
	settings.TemplateClassic: "bg-gradient-main",
	settings.TemplatePurple:  "bg-gradient-purple",
	settings.TemplateGold:    "bg-gradient-gold",
}

// TemplateClass maps a template to the overlay background class.
func TemplateClass(t settings.Template) string {
	if c, ok := templateClasses[t]; ok {
		return c
	}
	return templateClasses[settings.TemplateClassic]
}

// OverlayItem is one rendered supporter row.
type OverlayItem struct {
	Rank    int     `json:"rank"`
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
	Display string  `json:"display"`
	Message string  `json:"message,omitempty"`
	TopTier bool    `json:"topTier"`
	Medal   string  `json:"medal,omitempty"`
}

// OverlayView is everything the overlay page needs to draw one frame.
type OverlayView struct {
	State         string            `json:"state"`
	Title         string            `json:"title"`
	Template      settings.Template `json:"template"`
	TemplateClass string            `json:"templateClass"`
	Items         []OverlayItem     `json:"items"`
	Empty         bool              `json:"empty"`
}

// SettingsSource supplies the current display settings.
type SettingsSource interface {
	Current() settings.Settings
}

// BuildOverlay turns a list, already sorted by amount, into a frame.
func BuildOverlay(state LoadState, items []domain.Supporter, s settings.Settings) OverlayView {
	out := OverlayView{
		State:         state.String(),
		Title:         s.BannerTitle,
		Template:      s.Template,
		TemplateClass: TemplateClass(s.Template),
		Items:         make([]OverlayItem, 0, len(items)),
		Empty:         state == StateLoaded && len(items) == 0,
	}
	for i, sup := range items {
		item := OverlayItem{
			Rank:    i + 1,
			ID:      sup.ID,
			Name:    sup.Name,
			Amount:  sup.Amount,
			Display: settings.FormatCurrency(sup.Amount),
			Message: sup.MessageText(),
			TopTier: i < TopTierSize,
		}
		if item.TopTier {
			item.Medal = medals[i]
		}
		out.Items = append(out.Items, item)
	}
	return out
}

// OverlayController backs one open overlay. It is read-only.
type OverlayController struct {
	list     listView
	settings SettingsSource
	onRender func(OverlayView)
}

// NewOverlayController creates a controller; onRender, when set, receives a
// fresh frame after every re-fetch.
func NewOverlayController(repo domain.SupporterRepository, changes Subscriber, src SettingsSource, logger zerolog.Logger, onRender func(OverlayView)) *OverlayController {
	o := &OverlayController{
		list:     newListView(repo, changes, logger.With().Str("view", "overlay").Logger()),
		settings: src,
		onRender: onRender,
	}
	o.list.onChange = o.render
	return o
}

func (o *OverlayController) Mount(ctx context.Context) error { return o.list.mount(ctx) }

func (o *OverlayController) Unmount() { o.list.unmount() }

// View builds the current frame.
func (o *OverlayController) View() OverlayView {
	state, items, _ := o.list.snapshot()
	return BuildOverlay(state, items, o.settings.Current())
}

func (o *OverlayController) render() {
	if o.onRender == nil || !o.list.isMounted() {
		return
	}
	o.onRender(o.View())
}
