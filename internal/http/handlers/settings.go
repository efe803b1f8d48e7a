package handlers

import (
	"net/http"
	"strings"

	"supporterboard/internal/domain"
	"supporterboard/internal/i18n"
	"supporterboard/internal/settings"
)

// settingsTable tags the change event sent after a settings save.
const settingsTable = "settings"

type settingsDTO struct {
	settings.Settings
	Templates []settings.Template `json:"templates"`
}

func (a *App) SettingsGet(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, settingsDTO{Settings: a.Settings.Current(), Templates: settings.Templates()})
}

func (a *App) SettingsPatch(w http.ResponseWriter, r *http.Request) {
	var patch settings.Patch
	if err := a.decode(w, r, &patch); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := patch.Validate(); err != nil {
		a.fail(w, r, err, i18n.NoticeSaveFailed)
		return
	}
	next := a.applySettings(r, patch)
	a.json(w, http.StatusOK, settingsDTO{Settings: next, Templates: settings.Templates()})
}

// applySettings saves patch and tells open overlays to redraw.
func (a *App) applySettings(r *http.Request, patch settings.Patch) settings.Settings {
	if patch.BannerTitle != nil {
		title := strings.TrimSpace(*patch.BannerTitle)
		patch.BannerTitle = &title
	}
	next := a.Settings.Update(r.Context(), patch)
	if a.Hub != nil {
		a.Hub.Publish(domain.ChangeEvent{Kind: domain.ChangeUpdate, Table: settingsTable})
	}
	return next
}
