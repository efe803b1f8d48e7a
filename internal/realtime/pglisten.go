package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"supporterboard/internal/domain"
)

// Publisher receives decoded change events.
type Publisher interface {
	Publish(evt domain.ChangeEvent)
}

// Listener holds the LISTEN connection for the supporters notify channel.
type Listener struct {
	dsn          string
	channel      string
	pub          Publisher
	logger       zerolog.Logger
	minReconnect time.Duration
	maxReconnect time.Duration
	pingEvery    time.Duration
}

// NewListener creates a listener for channel that publishes into pub.
func NewListener(dsn, channel string, pub Publisher, logger zerolog.Logger) *Listener {
	return &Listener{
		dsn:          dsn,
		channel:      channel,
		pub:          pub,
		logger:       logger.With().Str("component", "pglisten").Str("channel", channel).Logger(),
		minReconnect: 2 * time.Second,
		maxReconnect: time.Minute,
		pingEvery:    90 * time.Second,
	}
}

// Run listens until ctx is cancelled. Notifications missed while the connection
// was down are not replayed; a resync event is published after each reconnect.
func (l *Listener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.dsn, l.minReconnect, l.maxReconnect, l.onEvent)
	defer listener.Close()

	if err := listener.Listen(l.channel); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}
	l.logger.Info().Msg("listening for supporter changes")

	ping := time.NewTicker(l.pingEvery)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-listener.Notify:
			if n == nil {
				l.pub.Publish(domain.ChangeEvent{Kind: domain.ChangeResync, Table: "supporters"})
				continue
			}
			l.pub.Publish(decodeNotification(n.Extra))
		case <-ping.C:
			go func() {
				if err := listener.Ping(); err != nil {
					l.logger.Warn().Err(err).Msg("listener ping failed")
				}
			}()
		}
	}
}

func (l *Listener) onEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		l.logger.Debug().Msg("listener connected")
	case pq.ListenerEventDisconnected:
		l.logger.Warn().Err(err).Msg("listener disconnected")
	case pq.ListenerEventReconnected:
		l.logger.Info().Msg("listener reconnected")
	case pq.ListenerEventConnectionAttemptFailed:
		l.logger.Warn().Err(err).Msg("listener reconnect attempt failed")
	}
}

type notifyPayload struct {
	Op    string `json:"op"`
	Table string `json:"table"`
	ID    string `json:"id"`
}

// decodeNotification never fails: a payload it cannot read still means the table changed.
func decodeNotification(payload string) domain.ChangeEvent {
	var p notifyPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return domain.ChangeEvent{Kind: domain.ChangeResync, Table: "supporters"}
	}
	evt := domain.ChangeEvent{Table: p.Table, ID: p.ID}
	switch domain.ChangeKind(strings.ToUpper(p.Op)) {
	case domain.ChangeInsert:
		evt.Kind = domain.ChangeInsert
	case domain.ChangeUpdate:
		evt.Kind = domain.ChangeUpdate
	case domain.ChangeDelete:
		evt.Kind = domain.ChangeDelete
	default:
		evt.Kind = domain.ChangeResync
	}
	if evt.Table == "" {
		evt.Table = "supporters"
	}
	return evt
}
