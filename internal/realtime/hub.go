package realtime

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"supporterboard/internal/domain"
)

var (
	ErrHubClosed     = errors.New("realtime: hub closed")
	ErrNilCallback   = errors.New("realtime: nil callback")
	ErrNotSubscribed = errors.New("realtime: subscription not found")
)

// Hub fans change events out to subscriptions.
type Hub struct {
	mu        sync.RWMutex
	subs      map[string]*Subscription
	closed    bool
	logger    zerolog.Logger
	published uint64
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]*Subscription),
		logger: logger.With().Str("component", "realtime").Logger(),
	}
}

// Subscribe registers onChange to run after every published event. Callbacks for
// one subscription never run concurrently with each other.
func (h *Hub) Subscribe(onChange func()) (*Subscription, error) {
	if onChange == nil {
		return nil, ErrNilCallback
	}
	sub := &Subscription{
		id:       uuid.NewString(),
		hub:      h,
		onChange: onChange,
		pending:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	h.subs[sub.id] = sub
	h.mu.Unlock()

	go sub.loop(h.logger)
	return sub, nil
}

// Publish hands evt to every subscription without blocking.
func (h *Hub) Publish(evt domain.ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	atomic.AddUint64(&h.published, 1)
	h.logger.Debug().
		Str("kind", string(evt.Kind)).
		Str("id", evt.ID).
		Int("subscribers", len(h.subs)).
		Msg("change event")

	for _, sub := range h.subs {
		sub.signal()
	}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Published returns how many events were published.
func (h *Hub) Published() uint64 {
	return atomic.LoadUint64(&h.published)
}

// Close stops every subscription. Publish becomes a no-op and Subscribe fails.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := h.subs
	h.subs = map[string]*Subscription{}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
}

func (h *Hub) remove(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[id]; !ok {
		return ErrNotSubscribed
	}
	delete(h.subs, id)
	return nil
}

// Subscription is one registered callback.
type Subscription struct {
	id       string
	hub      *Hub
	onChange func()
	pending  chan struct{}
	done     chan struct{}
	once     sync.Once

	delivered uint64
	coalesced uint64
}

// ID returns the subscription id.
func (s *Subscription) ID() string { return s.id }

// Delivered returns how many times the callback ran.
func (s *Subscription) Delivered() uint64 { return atomic.LoadUint64(&s.delivered) }

// Coalesced returns how many events were folded into an already pending run.
func (s *Subscription) Coalesced() uint64 { return atomic.LoadUint64(&s.coalesced) }

// Unsubscribe detaches the callback. Only the first call has an effect.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	_ = s.hub.remove(s.id)
	s.stop()
}

// Done is closed once the subscription is stopped.
func (s *Subscription) Done() <-chan struct{} { return s.done }

func (s *Subscription) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *Subscription) signal() {
	select {
	case s.pending <- struct{}{}:
	default:
		atomic.AddUint64(&s.coalesced, 1)
	}
}

func (s *Subscription) loop(logger zerolog.Logger) {
	for {
		select {
		case <-s.done:
			return
		case <-s.pending:
		}
		select {
		case <-s.done:
			return
		default:
		}
		s.run(logger)
	}
}

func (s *Subscription) run(logger zerolog.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Str("subscription", s.id).Msg("change callback panicked")
		}
	}()
	s.onChange()
	atomic.AddUint64(&s.delivered, 1)
}
