package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"supporterboard/internal/settings"
)

func TestSettingsPatch(t *testing.T) {
	env := newTestEnv(t)
	h := env.router()

	rec := doJSON(t, h, http.MethodGet, "/v1/settings", "")
	var got settingsDTO
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Settings != settings.Defaults() || len(got.Templates) != 3 {
		t.Fatalf("GET settings = %+v", got)
	}

	if rec := doJSON(t, h, http.MethodPatch, "/v1/settings", `{"template":"neon"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("PATCH invalid template = %d, want 400", rec.Code)
	}
	if env.store.Current() != settings.Defaults() {
		t.Fatal("rejected patch changed settings")
	}

	before := env.hub.Published()
	rec = doJSON(t, h, http.MethodPatch, "/v1/settings", `{"bannerTitle":"  Top fans  ","template":"gold"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PATCH = %d: %s", rec.Code, rec.Body.String())
	}
	cur := env.store.Current()
	if cur.BannerTitle != "Top fans" || cur.Template != settings.TemplateGold || cur.Currency != settings.CurrencyUSD {
		t.Fatalf("settings after patch = %+v", cur)
	}
	if env.hub.Published() != before+1 {
		t.Fatalf("published = %d, want one event for the settings change", env.hub.Published())
	}
}

func settingsPatchTitle(title string) settings.Patch {
	return settings.Patch{BannerTitle: &title}
}
