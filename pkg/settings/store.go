package settings

import (
	"sync"

	"go.uber.org/zap"
)

// Store hands out settings snapshots to the pipelines. Pipelines take one
// snapshot per invocation: a concurrent settings change is picked up by the
// next invocation, never by calls already in flight.
type Store struct {
	mu      sync.RWMutex
	current Settings

	cfger  *Configer
	logger *zap.Logger
}

// NewStore loads the persisted settings and returns a store over them.
func NewStore(cfger *Configer, logger *zap.Logger) (*Store, error) {
	s, err := cfger.Load()
	if err != nil {
		return nil, err
	}

	return &Store{
		current: *s,
		cfger:   cfger,
		logger:  logger,
	}, nil
}

// Snapshot returns a copy of the current settings.
func (st *Store) Snapshot() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current
}

// Update applies mutate to a copy of the current settings, persists the
// result, and swaps it in. The settings UI path funnels through here.
func (st *Store) Update(mutate func(*Settings)) (Settings, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	next := st.current
	mutate(&next)

	if err := st.cfger.Save(&next); err != nil {
		return st.current, err
	}

	st.current = next
	st.logger.Info("settings updated")

	return next, nil
}

// Reload re-reads the persisted file, replacing the in-memory settings.
// Called by the config watcher when settings.toml changes on disk.
func (st *Store) Reload() error {
	s, err := st.cfger.Load()
	if err != nil {
		return err
	}

	st.mu.Lock()
	st.current = *s
	st.mu.Unlock()

	st.logger.Info("settings reloaded from disk")
	return nil
}
