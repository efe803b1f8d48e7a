// Package view holds the per-view state behind the admin and overlay pages.
//
// Every controller owns its own copy of the supporter list. The copy changes
// only through List calls, made on mount, after the admin's own mutations, and
// whenever a change event arrives. Controllers never share their slices.
package view

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"supporterboard/internal/domain"
	"supporterboard/internal/realtime"
)

var (
	ErrAlreadyMounted = errors.New("view: already mounted")
	ErrNotMounted     = errors.New("view: not mounted")
)

// LoadState is the initial fetch state of a view.
type LoadState int

const (
	StateLoading LoadState = iota
	StateLoaded
)

func (s LoadState) String() string {
	if s == StateLoaded {
		return "loaded"
	}
	return "loading"
}

// Subscriber opens change subscriptions; *realtime.Hub satisfies it.
type Subscriber interface {
	Subscribe(onChange func()) (*realtime.Subscription, error)
}

// listView is the supporter snapshot owned by one view.
type listView struct {
	repo     domain.SupporterRepository
	changes  Subscriber
	logger   zerolog.Logger
	onChange func()

	mu      sync.Mutex
	state   LoadState
	items   []domain.Supporter
	lastErr error
	mounted bool
	ctx     context.Context
	cancel  context.CancelFunc
	sub     *realtime.Subscription
	issued  uint64
	applied uint64
}

func newListView(repo domain.SupporterRepository, changes Subscriber, logger zerolog.Logger) listView {
	return listView{repo: repo, changes: changes, logger: logger}
}

// mount fetches the list, then subscribes to change events. A failed fetch
// still leaves the view mounted and loaded with an empty list.
func (v *listView) mount(ctx context.Context) error {
	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return ErrAlreadyMounted
	}
	v.ctx, v.cancel = context.WithCancel(ctx)
	v.mounted = true
	v.state = StateLoading
	v.items = nil
	v.lastErr = nil
	v.mu.Unlock()

	err := v.refresh()

	sub, subErr := v.changes.Subscribe(func() { _ = v.refresh() })
	if subErr != nil {
		v.logger.Error().Err(subErr).Msg("failed to subscribe to supporter changes")
		return errors.Join(err, subErr)
	}
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		sub.Unsubscribe()
		return err
	}
	v.sub = sub
	v.mu.Unlock()
	return err
}

// unmount drops the subscription and discards results of calls still in flight.
func (v *listView) unmount() {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return
	}
	v.mounted = false
	v.cancel()
	sub := v.sub
	v.sub = nil
	v.mu.Unlock()

	sub.Unsubscribe()
}

// refresh re-fetches the full list. Results older than the last applied one
// are dropped, so overlapping refreshes never roll the snapshot back.
func (v *listView) refresh() error {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return ErrNotMounted
	}
	ctx := v.ctx
	v.issued++
	seq := v.issued
	v.mu.Unlock()

	items, err := v.repo.List(ctx)

	v.mu.Lock()
	if !v.mounted || seq < v.applied {
		v.mu.Unlock()
		return err
	}
	v.applied = seq
	v.state = StateLoaded
	v.lastErr = err
	if err == nil {
		v.items = items
	}
	v.mu.Unlock()

	if err != nil {
		v.logger.Error().Err(err).Msg("failed to load supporters")
	}
	if v.onChange != nil {
		v.onChange()
	}
	return err
}

func (v *listView) snapshot() (LoadState, []domain.Supporter, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	items := make([]domain.Supporter, len(v.items))
	copy(items, v.items)
	return v.state, items, v.lastErr
}

func (v *listView) find(id string) (domain.Supporter, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, s := range v.items {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Supporter{}, false
}

func (v *listView) isMounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}
