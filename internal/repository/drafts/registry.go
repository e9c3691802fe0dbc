// Package drafts keeps the editor sessions that are open in the dashboard
// and the autosaved snapshots that outlive them.
package drafts

import (
	"errors"
	"sync"
	"time"

	"github.com/debemdeboas/folio/internal/editor"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/rs/zerolog"
)

var draftsLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	draftsLogger = l
}

var (
	ErrSessionNotFound = errors.New("editor session not found")
	ErrNotOwner        = errors.New("editor session belongs to another user")
)

type entry struct {
	editor   editor.Editor
	mu       sync.Mutex
	lastSeen time.Time
}

func (e *entry) touch(now time.Time) {
	e.mu.Lock()
	e.lastSeen = now
	e.mu.Unlock()
}

func (e *entry) idleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSeen
}

// Registry holds the open editor sessions in memory.
type Registry struct {
	sessions sync.Map // editor.SessionID -> *entry
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{now: time.Now}
}

func (r *Registry) Add(e editor.Editor) {
	r.sessions.Store(e.ID(), &entry{editor: e, lastSeen: r.now()})
}

// Get returns the session with id if it belongs to owner.
func (r *Registry) Get(id editor.SessionID, owner model.UserID) (editor.Editor, error) {
	v, ok := r.sessions.Load(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	e := v.(*entry)
	if e.editor.Owner() != owner {
		return nil, ErrNotOwner
	}
	e.touch(r.now())
	return e.editor, nil
}

// Close removes the session and closes it so late uploads are discarded.
func (r *Registry) Close(id editor.SessionID) {
	if v, ok := r.sessions.LoadAndDelete(id); ok {
		v.(*entry).editor.Close()
	}
}

// Range calls fn for every open session until fn returns false.
func (r *Registry) Range(fn func(editor.Editor) bool) {
	r.sessions.Range(func(_, v any) bool {
		return fn(v.(*entry).editor)
	})
}

func (r *Registry) Len() int {
	n := 0
	r.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Sweep closes sessions nobody touched for longer than ttl and returns how
// many were dropped.
func (r *Registry) Sweep(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)
	dropped := 0
	r.sessions.Range(func(k, v any) bool {
		e := v.(*entry)
		if e.idleSince().Before(cutoff) || e.editor.Closed() {
			r.Close(k.(editor.SessionID))
			dropped++
		}
		return true
	})
	if dropped > 0 {
		draftsLogger.Info().Int("dropped", dropped).Msg("Swept idle editor sessions")
	}
	return dropped
}
