package view

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"supporterboard/internal/domain"
	"supporterboard/internal/i18n"
)

// NoticeLevel distinguishes success and failure notifications.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a one-shot notification shown after an admin action.
type Notice struct {
	Level NoticeLevel
	Key   i18n.Key
}

// Draft is the admin form as typed. ID is empty when creating.
type Draft struct {
	ID      string
	Name    string
	Amount  string
	Message string
}

// Editing reports whether the draft targets an existing supporter.
func (d Draft) Editing() bool { return d.ID != "" }

// AdminState is a copy of everything the admin page renders.
type AdminState struct {
	State      LoadState
	Supporters []domain.Supporter
	Editing    *Draft
	Notice     *Notice
}

// AdminController backs the admin page: the supporter list, the form and the
// last notification.
type AdminController struct {
	list listView

	mu      sync.Mutex
	editing *Draft
	notice  *Notice
}

func NewAdminController(repo domain.SupporterRepository, changes Subscriber, logger zerolog.Logger) *AdminController {
	return &AdminController{
		list: newListView(repo, changes, logger.With().Str("view", "admin").Logger()),
	}
}

// Mount loads the list and starts following change events.
func (a *AdminController) Mount(ctx context.Context) error {
	err := a.list.mount(ctx)
	if err != nil && !errors.Is(err, ErrAlreadyMounted) {
		a.setNotice(NoticeError, i18n.NoticeLoadFailed)
	}
	return err
}

func (a *AdminController) Unmount() {
	a.list.unmount()
	a.mu.Lock()
	a.editing = nil
	a.mu.Unlock()
}

// Refresh re-fetches the list on demand.
func (a *AdminController) Refresh() error {
	err := a.list.refresh()
	if err != nil && !errors.Is(err, ErrNotMounted) {
		a.setNotice(NoticeError, i18n.NoticeLoadFailed)
	}
	return err
}

// Snapshot returns the current state without consuming the notice.
func (a *AdminController) Snapshot() AdminState {
	state, items, _ := a.list.snapshot()
	out := AdminState{State: state, Supporters: items}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.editing != nil {
		d := *a.editing
		out.Editing = &d
	}
	if a.notice != nil {
		n := *a.notice
		out.Notice = &n
	}
	return out
}

// TakeNotice returns the pending notice and clears it.
func (a *AdminController) TakeNotice() *Notice {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := a.notice
	a.notice = nil
	return n
}

// StartEdit fills the form with a supporter from the current snapshot.
func (a *AdminController) StartEdit(id string) error {
	s, ok := a.list.find(id)
	if !ok {
		a.setNotice(NoticeError, i18n.NoticeNotFound)
		return domain.ErrNotFound
	}
	a.mu.Lock()
	a.editing = &Draft{
		ID:      s.ID,
		Name:    s.Name,
		Amount:  formatAmountInput(s.Amount),
		Message: s.MessageText(),
	}
	a.mu.Unlock()
	return nil
}

// Cancel discards the draft.
func (a *AdminController) Cancel() {
	a.mu.Lock()
	a.editing = nil
	a.mu.Unlock()
}

// Save validates the draft, then inserts it or updates the supporter it
// targets. The list is re-fetched right after a successful write.
func (a *AdminController) Save(ctx context.Context, d Draft) (*domain.Supporter, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" || strings.TrimSpace(d.Amount) == "" {
		a.setNotice(NoticeError, i18n.ValidationRequired)
		if name == "" {
			return nil, domain.ErrNameRequired
		}
		return nil, domain.ErrAmountRequired
	}
	amount, err := domain.ParseAmount(d.Amount)
	if err != nil {
		a.setNotice(NoticeError, i18n.ValidationAmount)
		return nil, err
	}
	in := domain.NewSupporterInput(name, amount, d.Message)

	var (
		saved *domain.Supporter
		ok    i18n.Key
	)
	if d.Editing() {
		saved, err = a.list.repo.Update(ctx, d.ID, in)
		ok = i18n.NoticeUpdated
	} else {
		saved, err = a.list.repo.Insert(ctx, in)
		ok = i18n.NoticeCreated
	}
	if err != nil {
		a.list.logger.Error().Err(err).Str("id", d.ID).Msg("failed to save supporter")
		if errors.Is(err, domain.ErrNotFound) {
			a.setNotice(NoticeError, i18n.NoticeNotFound)
		} else {
			a.setNotice(NoticeError, i18n.NoticeSaveFailed)
		}
		return nil, err
	}

	a.mu.Lock()
	a.editing = nil
	a.notice = &Notice{Level: NoticeSuccess, Key: ok}
	a.mu.Unlock()
	_ = a.list.refresh()
	return saved, nil
}

// Delete removes a supporter. Nothing is sent to the store unless confirmed.
func (a *AdminController) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		a.setNotice(NoticeError, i18n.NoticeConfirm)
		return domain.ErrConfirmationRequired
	}
	if err := a.list.repo.Delete(ctx, id); err != nil {
		a.list.logger.Error().Err(err).Str("id", id).Msg("failed to delete supporter")
		if errors.Is(err, domain.ErrNotFound) {
			a.setNotice(NoticeError, i18n.NoticeNotFound)
		} else {
			a.setNotice(NoticeError, i18n.NoticeDeleteFailed)
		}
		return err
	}

	a.mu.Lock()
	if a.editing != nil && a.editing.ID == id {
		a.editing = nil
	}
	a.notice = &Notice{Level: NoticeSuccess, Key: i18n.NoticeDeleted}
	a.mu.Unlock()
	_ = a.list.refresh()
	return nil
}

// Notify records a notice raised outside the controller, such as a settings save.
func (a *AdminController) Notify(level NoticeLevel, key i18n.Key) {
	a.setNotice(level, key)
}

func (a *AdminController) setNotice(level NoticeLevel, key i18n.Key) {
	a.mu.Lock()
	a.notice = &Notice{Level: level, Key: key}
	a.mu.Unlock()
}
