package handlers

import (
	"context"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"supporterboard/internal/adapter/repo"
	"supporterboard/internal/infra"
	"supporterboard/internal/realtime"
	"supporterboard/internal/settings"
	"supporterboard/internal/storage"
	"supporterboard/internal/view"
)

type testEnv struct {
	app   *App
	repo  *repo.SupporterRepositoryMemory
	hub   *realtime.Hub
	store *settings.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	hub := realtime.NewHub(logger)
	t.Cleanup(hub.Close)

	fs, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	store := settings.NewStore(fs, logger)
	store.Load(context.Background())

	supporters := repo.NewSupporterRepositoryMemory(hub)
	admin := view.NewAdminController(supporters, hub, logger)
	if err := admin.Mount(context.Background()); err != nil {
		t.Fatalf("admin Mount() error: %v", err)
	}
	t.Cleanup(admin.Unmount)

	cfg := &infra.Config{AppEnv: "test", StoreDriver: infra.StoreDriverMemory, DefaultLocale: "ar"}
	app, err := NewApp(cfg, logger, supporters, hub, store, admin)
	if err != nil {
		t.Fatalf("NewApp() error: %v", err)
	}
	return &testEnv{app: app, repo: supporters, hub: hub, store: store}
}

// router mounts the handlers under test without auth or CSRF.
func (e *testEnv) router() chi.Router {
	a := e.app
	r := chi.NewRouter()
	r.Get("/v1/healthz", a.Health)
	r.Get("/v1/supporters", a.SupportersList)
	r.Post("/v1/supporters", a.SupportersCreate)
	r.Put("/v1/supporters/{id}", a.SupportersUpdate)
	r.Delete("/v1/supporters/{id}", a.SupportersDelete)
	r.Get("/v1/settings", a.SettingsGet)
	r.Patch("/v1/settings", a.SettingsPatch)
	r.Get("/v1/overlay", a.OverlayJSON)
	r.Get("/v1/overlay/stream", a.OverlayStream)
	r.Get("/", a.Landing)
	r.Get("/overlay", a.OverlayPage)
	r.Get("/admin", a.AdminPage)
	r.Post("/admin/supporters", a.AdminSave)
	r.Post("/admin/supporters/{id}/edit", a.AdminEdit)
	r.Post("/admin/supporters/{id}/delete", a.AdminDelete)
	r.Post("/admin/cancel", a.AdminCancel)
	r.Post("/admin/settings", a.AdminSettings)
	return r
}
