package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"supporterboard/internal/domain"
	"supporterboard/internal/i18n"
	"supporterboard/internal/infra"
	"supporterboard/internal/middleware"
	"supporterboard/internal/realtime"
	"supporterboard/internal/settings"
	"supporterboard/internal/view"
)

// Pinger reports whether the supporter store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Config     *infra.Config
	Logger     zerolog.Logger
	Supporters domain.SupporterRepository
	Hub        *realtime.Hub
	Settings   *settings.Store
	Admin      *view.AdminController
	DB         Pinger

	pages     *template.Template
	landing   template.HTML
	streams   chan struct{}
	closeOnce sync.Once
}

// NewApp wires the handlers and parses the page templates.
func NewApp(cfg *infra.Config, logger zerolog.Logger, supporters domain.SupporterRepository, hub *realtime.Hub, store *settings.Store, admin *view.AdminController) (*App, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	landing, err := renderLanding()
	if err != nil {
		return nil, err
	}
	return &App{
		Config:     cfg,
		Logger:     logger,
		Supporters: supporters,
		Hub:        hub,
		Settings:   store,
		Admin:      admin,
		pages:      pages,
		landing:    landing,
		streams:    make(chan struct{}),
	}, nil
}

// CloseStreams ends every open overlay stream.
func (a *App) CloseStreams() {
	a.closeOnce.Do(func() { close(a.streams) })
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

// fail maps domain errors onto HTTP responses. Unknown errors are logged and
// reported as a generic localized failure.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error, fallback i18n.Key) {
	locale := middleware.LocaleFromContext(r.Context())
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", i18n.T(locale, i18n.NoticeNotFound))
	case errors.Is(err, domain.ErrInvalidAmount):
		a.error(w, http.StatusBadRequest, "validation", i18n.T(locale, i18n.ValidationAmount))
	case errors.Is(err, domain.ErrInvalidSupporter):
		a.error(w, http.StatusBadRequest, "validation", i18n.T(locale, i18n.ValidationRequired))
	case errors.Is(err, domain.ErrConfirmationRequired):
		a.error(w, http.StatusBadRequest, "confirmation_required", i18n.T(locale, i18n.NoticeConfirm))
	case errors.Is(err, settings.ErrInvalidTemplate), errors.Is(err, settings.ErrUnsupportedCurrency):
		a.error(w, http.StatusBadRequest, "validation", i18n.T(locale, i18n.SettingsInvalid))
	default:
		a.Logger.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", i18n.T(locale, fallback))
	}
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
