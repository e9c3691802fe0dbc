package drafts

import (
	"context"
	"sync"
	"time"

	"github.com/debemdeboas/folio/internal/editor"
	"github.com/debemdeboas/folio/internal/sse"
)

// Notifier is told about every snapshot the autosaver writes.
type Notifier interface {
	Notify(draftID editor.SessionID, event string, payload any)
}

type AutosaveEvent struct {
	Version uint64    `json:"version"`
	SavedAt time.Time `json:"savedAt"`
}

// Autosaver periodically writes the sessions that changed since their last
// save and drops the ones left idle.
type Autosaver struct {
	registry   *Registry
	store      *Store
	notifier   Notifier
	interval   time.Duration
	sessionTTL time.Duration

	mu    sync.Mutex
	saved map[editor.SessionID]uint64
}

func NewAutosaver(registry *Registry, store *Store, notifier Notifier, interval, sessionTTL time.Duration) *Autosaver {
	return &Autosaver{
		registry:   registry,
		store:      store,
		notifier:   notifier,
		interval:   interval,
		sessionTTL: sessionTTL,
		saved:      make(map[editor.SessionID]uint64),
	}
}

// Run saves on every tick until ctx is done, then saves once more.
func (a *Autosaver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	draftsLogger.Info().Dur("interval", a.interval).Msg("Autosaver started")
	for {
		select {
		case <-ticker.C:
			a.SaveAll()
			if a.sessionTTL > 0 {
				a.registry.Sweep(a.sessionTTL)
			}
		case <-ctx.Done():
			a.SaveAll()
			draftsLogger.Info().Msg("Autosaver stopped")
			return
		}
	}
}

// SaveAll writes every dirty session whose version moved since the last
// save and returns how many were written.
func (a *Autosaver) SaveAll() int {
	written := 0
	a.registry.Range(func(e editor.Editor) bool {
		if a.Save(e) {
			written++
		}
		return true
	})
	a.forgetClosed()
	return written
}

// Save writes one session if it has unsaved changes. The snapshot is tied
// to the session generation it was taken under and dropped when a submit,
// reset, restore or close replaced the draft before the write.
func (a *Autosaver) Save(e editor.Editor) bool {
	if e.Closed() {
		return false
	}
	generation := e.Generation()
	version := e.Version()

	a.mu.Lock()
	last, seen := a.saved[e.ID()]
	a.mu.Unlock()
	if seen && last == version {
		return false
	}

	state := e.State()
	if !state.Dirty {
		a.mark(e.ID(), version)
		return false
	}

	data, err := e.Export()
	if err != nil {
		draftsLogger.Error().Err(err).Str("session", string(e.ID())).Msg("Failed to export draft")
		return false
	}
	written, err := a.store.SaveIf(KeyOf(e), data, func() bool {
		return !e.Closed() && e.Generation() == generation
	})
	if err != nil {
		draftsLogger.Error().Err(err).Str("session", string(e.ID())).Msg("Failed to autosave draft")
		return false
	}
	if !written {
		draftsLogger.Debug().Str("session", string(e.ID())).Msg("Draft replaced before autosave, snapshot dropped")
		return false
	}
	a.mark(e.ID(), version)

	draftsLogger.Debug().
		Str("session", string(e.ID())).
		Uint64("version", version).
		Msg("Draft autosaved")

	if a.notifier != nil {
		a.notifier.Notify(e.ID(), sse.EventAutosave, AutosaveEvent{Version: version, SavedAt: time.Now().UTC()})
	}
	return true
}

func (a *Autosaver) mark(id editor.SessionID, version uint64) {
	a.mu.Lock()
	a.saved[id] = version
	a.mu.Unlock()
}

func (a *Autosaver) forgetClosed() {
	open := make(map[editor.SessionID]bool)
	a.registry.Range(func(e editor.Editor) bool {
		open[e.ID()] = true
		return true
	})

	a.mu.Lock()
	defer a.mu.Unlock()
	for id := range a.saved {
		if !open[id] {
			delete(a.saved, id)
		}
	}
}
