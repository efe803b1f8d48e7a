package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"supporterboard/internal/i18n"
	"supporterboard/internal/middleware"
	"supporterboard/internal/settings"
	"supporterboard/internal/view"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed content/landing.md
var landingMarkdown []byte

// adminTokenTTL bounds cookies set by the login form.
const adminTokenTTL = 30 * 24 * time.Hour

func parsePages() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.html")
}

func renderLanding() (template.HTML, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert(landingMarkdown, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

type page struct {
	Locale   string
	Dir      string
	Title    string
	CSRF     template.HTML
	SignedIn bool
}

// T renders a catalog message in the page locale.
func (p page) T(key string, args ...any) string {
	return i18n.T(p.Locale, i18n.Key(key), args...)
}

type noticeView struct {
	Level string
	Text  string
}

type templateOption struct {
	Value    settings.Template
	Label    string
	Selected bool
}

type landingPage struct {
	page
	Body template.HTML
}

type loginPage struct {
	page
	Notice *noticeView
}

type adminPage struct {
	page
	Loading   bool
	Rows      []view.OverlayItem
	Count     int
	Form      view.Draft
	Notice    *noticeView
	Settings  settings.Settings
	Templates []templateOption
}

type overlayPage struct {
	Frame     view.OverlayView
	EmptyText string
}

var templateLabels = map[settings.Template]i18n.Key{
	settings.TemplateClassic: i18n.TemplateClassic,
	settings.TemplatePurple:  i18n.TemplatePurple,
	settings.TemplateGold:    i18n.TemplateGold,
}

func (a *App) newPage(r *http.Request, title i18n.Key) page {
	locale := middleware.LocaleFromContext(r.Context())
	return page{
		Locale:   locale,
		Dir:      i18n.Dir(locale),
		Title:    i18n.T(locale, title),
		CSRF:     csrf.TemplateField(r),
		SignedIn: middleware.AdminFromContext(r.Context()) != "",
	}
}

func (a *App) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := a.pages.ExecuteTemplate(&buf, name, data); err != nil {
		a.Logger.Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (a *App) Landing(w http.ResponseWriter, r *http.Request) {
	a.render(w, http.StatusOK, "landing", landingPage{page: a.newPage(r, i18n.AdminTitle), Body: a.landing})
}

func (a *App) AdminPage(w http.ResponseWriter, r *http.Request) {
	a.renderAdmin(w, r, http.StatusOK, nil)
}

// renderAdmin draws the admin page. A non-nil form keeps what was typed after
// a rejected submission.
func (a *App) renderAdmin(w http.ResponseWriter, r *http.Request, status int, form *view.Draft) {
	p := a.newPage(r, i18n.AdminTitle)
	snap := a.Admin.Snapshot()
	current := a.Settings.Current()

	data := adminPage{
		page:     p,
		Loading:  snap.State == view.StateLoading,
		Rows:     view.BuildOverlay(snap.State, snap.Supporters, current).Items,
		Count:    len(snap.Supporters),
		Settings: current,
	}
	switch {
	case form != nil:
		data.Form = *form
	case snap.Editing != nil:
		data.Form = *snap.Editing
	}
	if n := a.Admin.TakeNotice(); n != nil {
		data.Notice = &noticeView{Level: string(n.Level), Text: i18n.T(p.Locale, n.Key)}
	}
	for _, tpl := range settings.Templates() {
		data.Templates = append(data.Templates, templateOption{
			Value:    tpl,
			Label:    i18n.T(p.Locale, templateLabels[tpl]),
			Selected: tpl == current.Template,
		})
	}
	a.render(w, status, "admin", data)
}

func (a *App) redirectAdmin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (a *App) AdminSave(w http.ResponseWriter, r *http.Request) {
	draft := view.Draft{
		ID:      strings.TrimSpace(r.FormValue("id")),
		Name:    r.FormValue("name"),
		Amount:  r.FormValue("amount"),
		Message: r.FormValue("message"),
	}
	if _, err := a.Admin.Save(r.Context(), draft); err != nil {
		a.renderAdmin(w, r, http.StatusUnprocessableEntity, &draft)
		return
	}
	a.redirectAdmin(w, r)
}

func (a *App) AdminEdit(w http.ResponseWriter, r *http.Request) {
	_ = a.Admin.StartEdit(chi.URLParam(r, "id"))
	a.redirectAdmin(w, r)
}

func (a *App) AdminCancel(w http.ResponseWriter, r *http.Request) {
	a.Admin.Cancel()
	a.redirectAdmin(w, r)
}

func (a *App) AdminDelete(w http.ResponseWriter, r *http.Request) {
	confirmed := r.FormValue("confirm") != ""
	_ = a.Admin.Delete(r.Context(), chi.URLParam(r, "id"), confirmed)
	a.redirectAdmin(w, r)
}

func (a *App) AdminSettings(w http.ResponseWriter, r *http.Request) {
	title := r.FormValue("bannerTitle")
	tpl := settings.Template(r.FormValue("template"))
	patch := settings.Patch{BannerTitle: &title, Template: &tpl}
	if err := patch.Validate(); err != nil {
		a.Admin.Notify(view.NoticeError, i18n.SettingsInvalid)
		a.renderAdmin(w, r, http.StatusUnprocessableEntity, nil)
		return
	}
	a.applySettings(r, patch)
	a.Admin.Notify(view.NoticeSuccess, i18n.NoticeSettings)
	a.redirectAdmin(w, r)
}

func (a *App) AdminLocale(w http.ResponseWriter, r *http.Request) {
	locale := i18n.Normalize(r.FormValue("locale"), middleware.LocaleFromContext(r.Context()))
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.LocaleCookie,
		Value:    locale,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   a.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
	a.redirectAdmin(w, r)
}

func (a *App) LoginPage(w http.ResponseWriter, r *http.Request) {
	a.render(w, http.StatusOK, "login", loginPage{page: a.newPage(r, i18n.LoginTitle)})
}

// LoginSubmit accepts an admin token, such as one minted by supporterctl, and
// stores it in a cookie.
func (a *App) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.FormValue("token"))
	claims, err := middleware.VerifyJWT(a.jwtSecret(), token)
	if err != nil || a.jwtSecret() == "" {
		if err == nil {
			err = errors.New("admin auth disabled")
		}
		a.Logger.Warn().Err(err).Str("ip", middleware.ClientIP(r)).Msg("admin login rejected")
		p := a.newPage(r, i18n.LoginTitle)
		a.render(w, http.StatusUnauthorized, "login", loginPage{
			page:   p,
			Notice: &noticeView{Level: string(view.NoticeError), Text: i18n.T(p.Locale, i18n.LoginFailed)},
		})
		return
	}
	cookie := &http.Cookie{
		Name:     middleware.AdminCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	}
	if claims.Exp != 0 {
		cookie.Expires = time.Unix(claims.Exp, 0)
	} else {
		cookie.MaxAge = int(adminTokenTTL.Seconds())
	}
	http.SetCookie(w, cookie)
	a.Logger.Info().Str("admin", claims.Sub).Msg("admin signed in")
	a.redirectAdmin(w, r)
}

func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// LoginRedirect sends unauthenticated page requests to the login form.
func (a *App) LoginRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// Unauthorized is the JSON rejection for the admin API.
func (a *App) Unauthorized(w http.ResponseWriter, r *http.Request) {
	a.error(w, http.StatusUnauthorized, "unauthorized", "admin token required")
}

func (a *App) OverlayPage(w http.ResponseWriter, r *http.Request) {
	frame, err := a.overlaySnapshot(r)
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to load supporters for overlay")
		frame = view.BuildOverlay(view.StateLoaded, nil, a.Settings.Current())
	}
	a.render(w, http.StatusOK, "overlay", overlayPage{
		Frame:     frame,
		EmptyText: i18n.T(i18n.Arabic, i18n.OverlayEmpty),
	})
}

func (a *App) jwtSecret() string {
	if a.Config == nil {
		return ""
	}
	return a.Config.JWTSecret
}

func (a *App) secureCookies() bool {
	return a.Config != nil && a.Config.SecureCookies
}
