package drafts

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/debemdeboas/folio/internal/db"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/util/compression"
)

var ErrNoAutosave = errors.New("no autosave")

// Key identifies an autosave: one per user, draft kind and record. New
// drafts use an empty record id.
type Key struct {
	Owner    model.UserID
	Kind     model.Kind
	RecordID string
}

func KeyOf(e interface {
	Owner() model.UserID
	Kind() model.Kind
	RecordID() string
}) Key {
	return Key{Owner: e.Owner(), Kind: e.Kind(), RecordID: e.RecordID()}
}

type Autosave struct {
	Key
	Content []byte
	SavedAt time.Time
}

// Store persists editor snapshots, compressed, in the local database.
// Writes and deletes are serialized so a conditional save cannot land
// after the delete that superseded it.
type Store struct {
	db         db.DB
	compressor compression.Compressor

	mu sync.Mutex
}

func NewStore(database db.DB, compressor compression.Compressor) *Store {
	return &Store{db: database, compressor: compressor}
}

func (s *Store) Save(key Key, content []byte) error {
	_, err := s.SaveIf(key, content, nil)
	return err
}

// SaveIf writes content when current reports the snapshot is still
// current. current runs under the store lock; nil always writes.
func (s *Store) SaveIf(key Key, content []byte, current func() bool) (bool, error) {
	packed, err := s.compressor.Compress(content)
	if err != nil {
		return false, fmt.Errorf("compress autosave: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if current != nil && !current() {
		return false, nil
	}
	if err := s.write(key, packed); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) write(key Key, packed []byte) error {
	_, err := s.db.Exec(`
INSERT INTO autosaves (owner_id, kind, record_id, content, saved_at)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (owner_id, kind, record_id)
DO UPDATE SET content = excluded.content, saved_at = excluded.saved_at`,
		string(key.Owner), string(key.Kind), key.RecordID, packed)
	if err != nil {
		return fmt.Errorf("save autosave: %w", err)
	}
	return nil
}

func (s *Store) Load(key Key) (*Autosave, error) {
	var packed []byte
	var savedAt time.Time
	err := s.db.QueryRow(
		`SELECT content, saved_at FROM autosaves WHERE owner_id = ? AND kind = ? AND record_id = ?`,
		string(key.Owner), string(key.Kind), key.RecordID,
	).Scan(&packed, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoAutosave
	}
	if err != nil {
		return nil, fmt.Errorf("load autosave: %w", err)
	}

	content, err := compression.Decompress(packed)
	if err != nil {
		return nil, fmt.Errorf("decompress autosave: %w", err)
	}
	return &Autosave{Key: key, Content: content, SavedAt: savedAt}, nil
}

func (s *Store) Delete(key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`DELETE FROM autosaves WHERE owner_id = ? AND kind = ? AND record_id = ?`,
		string(key.Owner), string(key.Kind), key.RecordID,
	)
	if err != nil {
		return fmt.Errorf("delete autosave: %w", err)
	}
	return nil
}
