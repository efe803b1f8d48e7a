package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"supporterboard/internal/domain"
	"supporterboard/internal/i18n"
	"supporterboard/internal/middleware"
	"supporterboard/internal/settings"
)

type supporterRequest struct {
	Name    string   `json:"name"`
	Amount  *float64 `json:"amount"`
	Message *string  `json:"message"`
}

func (req supporterRequest) input() (domain.SupporterInput, error) {
	if req.Amount == nil {
		return domain.SupporterInput{}, domain.ErrAmountRequired
	}
	msg := ""
	if req.Message != nil {
		msg = *req.Message
	}
	in := domain.NewSupporterInput(req.Name, *req.Amount, msg)
	return in, in.Validate()
}

type supporterDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Display   string    `json:"display"`
	Message   *string   `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func toSupporterDTO(s domain.Supporter) supporterDTO {
	return supporterDTO{
		ID:        s.ID,
		Name:      s.Name,
		Amount:    s.Amount,
		Display:   settings.FormatCurrency(s.Amount),
		Message:   s.Message,
		CreatedAt: s.CreatedAt,
	}
}

func (a *App) SupportersList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Supporters.List(r.Context())
	if err != nil {
		a.fail(w, r, err, i18n.NoticeLoadFailed)
		return
	}
	out := make([]supporterDTO, 0, len(items))
	var total float64
	for _, s := range items {
		out = append(out, toSupporterDTO(s))
		total += s.Amount
	}
	a.json(w, http.StatusOK, map[string]any{
		"items": out,
		"count": len(out),
		"total": domain.RoundAmount(total),
	})
}

func (a *App) SupportersCreate(w http.ResponseWriter, r *http.Request) {
	var req supporterRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	in, err := req.input()
	if err != nil {
		a.fail(w, r, err, i18n.NoticeSaveFailed)
		return
	}
	created, err := a.Supporters.Insert(r.Context(), in)
	if err != nil {
		a.fail(w, r, err, i18n.NoticeSaveFailed)
		return
	}
	a.logMutation(r, "insert", created.ID)
	a.json(w, http.StatusCreated, toSupporterDTO(*created))
}

func (a *App) SupportersUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req supporterRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	in, err := req.input()
	if err != nil {
		a.fail(w, r, err, i18n.NoticeSaveFailed)
		return
	}
	updated, err := a.Supporters.Update(r.Context(), id, in)
	if err != nil {
		a.fail(w, r, err, i18n.NoticeSaveFailed)
		return
	}
	a.logMutation(r, "update", id)
	a.json(w, http.StatusOK, toSupporterDTO(*updated))
}

// SupportersDelete requires ?confirm=true; deletes cannot be undone.
func (a *App) SupportersDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if !confirmed {
		a.fail(w, r, domain.ErrConfirmationRequired, i18n.NoticeDeleteFailed)
		return
	}
	if err := a.Supporters.Delete(r.Context(), id); err != nil {
		a.fail(w, r, err, i18n.NoticeDeleteFailed)
		return
	}
	a.logMutation(r, "delete", id)
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) logMutation(r *http.Request, op, id string) {
	a.Logger.Info().
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("admin", middleware.AdminFromContext(r.Context())).
		Str("op", op).
		Str("supporter_id", id).
		Msg("supporter changed")
}
