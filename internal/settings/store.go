package settings

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"supporterboard/internal/storage"
)

// StorageKey is the fixed key of the settings record.
const StorageKey = "bbp:local-settings"

// Backend is the durable key/value store the record lives in.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// Store holds the current settings in memory and mirrors them to a Backend.
// None of its methods fail: storage problems are logged and the in-memory
// value stays authoritative.
type Store struct {
	backend Backend
	logger  zerolog.Logger

	mu      sync.RWMutex
	current Settings
}

// NewStore returns a store holding Defaults until Load is called.
func NewStore(backend Backend, logger zerolog.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger.With().Str("component", "settings").Logger(),
		current: Defaults(),
	}
}

// Load reads the stored record and merges it over Defaults.
func (s *Store) Load(ctx context.Context) Settings {
	loaded := Defaults()
	raw, err := s.backend.Read(ctx, StorageKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		s.logger.Warn().Err(err).Msg("failed to read local settings, using defaults")
	default:
		merged, rejected, decodeErr := Decode(raw)
		if decodeErr != nil {
			s.logger.Warn().Err(decodeErr).Msg("failed to parse local settings, using defaults")
		} else if len(rejected) > 0 {
			s.logger.Warn().Strs("fields", rejected).Msg("ignored invalid local settings fields")
		}
		loaded = merged
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return loaded
}

// Current returns the in-memory settings.
func (s *Store) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies patch and persists the whole merged record.
func (s *Store) Update(ctx context.Context, patch Patch) Settings {
	s.mu.Lock()
	next := s.current.Apply(patch)
	s.current = next
	s.mu.Unlock()

	raw, err := json.Marshal(next)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode local settings")
		return next
	}
	if _, err := s.backend.Write(ctx, StorageKey, raw); err != nil {
		s.logger.Warn().Err(err).Msg("failed to save local settings")
	}
	return next
}
